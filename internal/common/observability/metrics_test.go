package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObservability_RecordsJobMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	obs := newWithReader("test", reader)
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "search-products", "completed")
	obs.RecordJobDuration(ctx, "search-products", 25*time.Millisecond, "completed")
	obs.RecordStage(ctx, "aggregate", 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["jobs.processed"])
	assert.True(t, names["jobs.duration"])
	assert.True(t, names["pipeline.stage.duration"])
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "x", "failed")
		obs.RecordStage(context.Background(), "x", time.Second)
		obs.Shutdown()
	})
}
