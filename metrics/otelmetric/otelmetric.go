// Package otelmetric exports memocache metrics through an OpenTelemetry
// Meter.
package otelmetric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/memocache"
)

// Adapter implements memocache.Metrics on OpenTelemetry counters. All otel
// instruments are safe for concurrent use.
type Adapter struct {
	hits    metric.Int64Counter
	misses  metric.Int64Counter
	stores  metric.Int64Counter
	bypass  metric.Int64Counter
	deletes metric.Int64Counter
	cleared metric.Int64Counter
}

// New registers the memocache instruments on meter.
func New(meter metric.Meter) (*Adapter, error) {
	hits, err := meter.Int64Counter(
		"memocache.hits",
		metric.WithDescription("Calls served from the cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter(
		"memocache.misses",
		metric.WithDescription("Calls that computed a fresh value"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	stores, err := meter.Int64Counter(
		"memocache.stores",
		metric.WithDescription("Fresh values written to the backend"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	bypass, err := meter.Int64Counter(
		"memocache.bypass",
		metric.WithDescription("Calls that bypassed the cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	deletes, err := meter.Int64Counter(
		"memocache.deletes",
		metric.WithDescription("Single-entry invalidations"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	cleared, err := meter.Int64Counter(
		"memocache.cleared",
		metric.WithDescription("Entries removed by prefix clears"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		hits:    hits,
		misses:  misses,
		stores:  stores,
		bypass:  bypass,
		deletes: deletes,
		cleared: cleared,
	}, nil
}

// The Metrics interface carries no context; instruments record against the
// background context.

func (a *Adapter) Hit()   { a.hits.Add(context.Background(), 1) }
func (a *Adapter) Miss()  { a.misses.Add(context.Background(), 1) }
func (a *Adapter) Store() { a.stores.Add(context.Background(), 1) }

func (a *Adapter) Bypass(r memocache.SkipReason) {
	a.bypass.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("reason", reason(r))))
}

func (a *Adapter) Delete() { a.deletes.Add(context.Background(), 1) }

func (a *Adapter) Cleared(removed int) {
	a.cleared.Add(context.Background(), int64(removed))
}

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

var _ memocache.Metrics = (*Adapter)(nil)
