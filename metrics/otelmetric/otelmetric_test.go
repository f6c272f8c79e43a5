package otelmetric

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/unkn0wn-root/memocache"
)

func TestAdapterCounts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	a, err := New(mp.Meter("memocache/test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a.Hit()
	a.Hit()
	a.Miss()
	a.Store()
	a.Bypass(memocache.SkipKey)
	a.Delete()
	a.Cleared(3)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"memocache.hits":    2,
		"memocache.misses":  1,
		"memocache.stores":  1,
		"memocache.bypass":  1,
		"memocache.deletes": 1,
		"memocache.cleared": 3,
	}
	for name, n := range want {
		if totals[name] != n {
			t.Fatalf("%s = %d, want %d (all: %v)", name, totals[name], n, totals)
		}
	}
}
