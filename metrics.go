package memocache

// SkipReason explains why a call bypassed the cache.
type SkipReason int

const (
	// SkipKey - the key function returned DoNotCache.
	SkipKey SkipReason = iota
	// SkipResult - the computation returned DoNotCache.
	SkipResult
	// SkipScope - no usable scope object was supplied.
	SkipScope
)

// Metrics exposes wrapper-level observability hooks. Implementations must
// be safe for concurrent use and cheap; they run on the hot path.
// A NopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Store()
	Bypass(reason SkipReason)
	Delete()
	Cleared(removed int)
}

// NopMetrics is a drop-in Metrics implementation that does nothing.
type NopMetrics struct{}

func (NopMetrics) Hit()                {}
func (NopMetrics) Miss()               {}
func (NopMetrics) Store()              {}
func (NopMetrics) Bypass(SkipReason)   {}
func (NopMetrics) Delete()             {}
func (NopMetrics) Cleared(removed int) {}

var _ Metrics = NopMetrics{}
