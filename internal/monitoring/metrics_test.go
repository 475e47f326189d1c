//nolint:testpackage // requires internal access to unexported types and functions
package monitoring

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("create disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)
		assert.NotNil(t, collector)
		assert.False(t, collector.IsEnabled())
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("nil collector runs the step", func(t *testing.T) {
		var collector *MetricsCollector

		calls := 0
		err := collector.RecordStep("FillMissing", false, func() (int, int, error) {
			calls++
			return 10, 3, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.False(t, collector.IsEnabled())
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record step with disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)

		calls := 0
		err := collector.RecordStep("FillMissing", false, func() (int, int, error) {
			calls++
			return 10, 3, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record step with enabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(true)

		err := collector.RecordStep("ImputeOutliers", true, func() (int, int, error) {
			time.Sleep(10 * time.Millisecond)
			return 700, 12, nil
		})
		require.NoError(t, err)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)

		metric := metrics[0]
		assert.Equal(t, "ImputeOutliers", metric.Step)
		assert.Greater(t, metric.Duration, 5*time.Millisecond)
		assert.Equal(t, int64(700), metric.Rows)
		assert.Equal(t, 12, metric.Columns)
		assert.GreaterOrEqual(t, metric.MemoryUsed, int64(0))
		assert.True(t, metric.Parallel)
		assert.False(t, metric.Failed)
	})

	t.Run("record failing step", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		boom := errors.New("boom")

		err := collector.RecordStep("CoerceTypes", false, func() (int, int, error) {
			return 0, 0, boom
		})

		require.ErrorIs(t, err, boom)
		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.True(t, metrics[0].Failed)
	})

	t.Run("clear and toggle", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		_ = collector.RecordStep("a", false, func() (int, int, error) { return 1, 1, nil })
		require.Len(t, collector.GetMetrics(), 1)

		collector.Clear()
		assert.Empty(t, collector.GetMetrics())

		collector.SetEnabled(false)
		_ = collector.RecordStep("b", false, func() (int, int, error) { return 1, 1, nil })
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("concurrent recording", func(t *testing.T) {
		collector := NewMetricsCollector(true)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = collector.RecordStep("parallel", true, func() (int, int, error) { return 1, 1, nil })
			}()
		}
		wg.Wait()

		assert.Len(t, collector.GetMetrics(), 10)
	})
}

func TestMetricsSummary(t *testing.T) {
	t.Run("empty collector", func(t *testing.T) {
		summary := NewMetricsCollector(true).GetSummary()
		assert.Equal(t, 0, summary.TotalSteps)
		assert.Empty(t, summary.StepNames())
	})

	t.Run("aggregates steps", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		collector.metrics = []StepMetrics{
			{Step: "ReadData", Duration: 30 * time.Millisecond, MemoryUsed: 100},
			{Step: "FillMissing", Duration: 10 * time.Millisecond, MemoryUsed: 50},
			{Step: "FillMissing", Duration: 20 * time.Millisecond, MemoryUsed: 50, Failed: true},
		}

		summary := collector.GetSummary()
		assert.Equal(t, 3, summary.TotalSteps)
		assert.Equal(t, 1, summary.FailedSteps)
		assert.Equal(t, 60*time.Millisecond, summary.TotalDuration)
		assert.Equal(t, 20*time.Millisecond, summary.AverageDuration)
		assert.Equal(t, int64(200), summary.TotalMemory)
		assert.Equal(t, "ReadData", summary.SlowestStep)
		assert.Equal(t, map[string]int{"ReadData": 1, "FillMissing": 2}, summary.StepCounts)
		assert.Equal(t, []string{"FillMissing", "ReadData"}, summary.StepNames())
	})
}

func TestWriteReport(t *testing.T) {
	collector := NewMetricsCollector(true)
	collector.metrics = []StepMetrics{
		{Step: "ReadData", Duration: time.Millisecond, Rows: 12345, Columns: 20, MemoryUsed: 2048},
		{Step: "ImputeOutliers", Duration: time.Millisecond, Rows: 12345, Columns: 18, Parallel: true},
	}

	var buf bytes.Buffer
	require.NoError(t, collector.WriteReport(&buf))

	out := buf.String()
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "ImputeOutliers (parallel)")
	assert.Contains(t, out, "total")
}
