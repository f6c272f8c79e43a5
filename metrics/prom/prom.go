// Package prom exports memocache metrics as Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/memocache"
)

// Adapter implements memocache.Metrics. Safe for concurrent use; all
// Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	stores  prometheus.Counter
	bypass  *prometheus.CounterVec
	deletes prometheus.Counter
	cleared prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Calls served from the cache",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Calls that computed a fresh value",
			ConstLabels: constLabels,
		}),
		stores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "stores_total",
			Help:        "Fresh values written to the backend",
			ConstLabels: constLabels,
		}),
		bypass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "bypass_total",
				Help:        "Calls that bypassed the cache, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "deletes_total",
			Help:        "Single-entry invalidations",
			ConstLabels: constLabels,
		}),
		cleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cleared_total",
			Help:        "Entries removed by prefix clears",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.stores, a.bypass, a.deletes, a.cleared)
	return a
}

func (a *Adapter) Hit()   { a.hits.Inc() }
func (a *Adapter) Miss()  { a.misses.Inc() }
func (a *Adapter) Store() { a.stores.Inc() }

// Bypass increments the bypass counter with a reason label.
func (a *Adapter) Bypass(r memocache.SkipReason) {
	a.bypass.WithLabelValues(reason(r)).Inc()
}

func (a *Adapter) Delete() { a.deletes.Inc() }

func (a *Adapter) Cleared(removed int) { a.cleared.Add(float64(removed)) }

// reason maps SkipReason to a stable label value.
func reason(r memocache.SkipReason) string {
	switch r {
	case memocache.SkipKey:
		return "key"
	case memocache.SkipResult:
		return "result"
	case memocache.SkipScope:
		return "scope"
	default:
		return "other"
	}
}

// Compile-time check: ensure Adapter implements memocache.Metrics.
var _ memocache.Metrics = (*Adapter)(nil)
