// Package monitoring records per-step performance metrics for preparation runs.
package monitoring

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// StepMetrics represents performance metrics for a single preparation step.
type StepMetrics struct {
	Step       string        `json:"step"`
	Duration   time.Duration `json:"duration"`
	Rows       int64         `json:"rows"`
	Columns    int           `json:"columns"`
	MemoryUsed int64         `json:"memory_used"`
	Parallel   bool          `json:"parallel"`
	Failed     bool          `json:"failed"`
}

// MetricsCollector collects and stores step metrics. A nil collector is
// valid and records nothing.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []StepMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]StepMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	if mc == nil {
		return false
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordStep executes fn and records its duration, memory growth and the
// shape of the frame it produced.
func (mc *MetricsCollector) RecordStep(step string, parallel bool, fn func() (rows, columns int, err error)) error {
	if !mc.IsEnabled() {
		_, _, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()

	rows, columns, err := fn()

	duration := time.Since(start)
	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	// a collection in between can make the difference negative
	memoryUsed := int64(memAfter.TotalAlloc) - int64(memBefore.TotalAlloc) //nolint:gosec // bounded by process memory
	if memoryUsed < 0 {
		memoryUsed = 0
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, StepMetrics{
		Step:       step,
		Duration:   duration,
		Rows:       int64(rows),
		Columns:    columns,
		MemoryUsed: memoryUsed,
		Parallel:   parallel,
		Failed:     err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []StepMetrics {
	if mc == nil {
		return []StepMetrics{}
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]StepMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	metrics := mc.GetMetrics()
	if len(metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	var totalMemory int64
	var slowest StepMetrics
	stepCounts := make(map[string]int)
	failed := 0

	for _, metric := range metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		stepCounts[metric.Step]++
		if metric.Failed {
			failed++
		}
		if metric.Duration >= slowest.Duration {
			slowest = metric
		}
	}

	return MetricsSummary{
		TotalSteps:      len(metrics),
		FailedSteps:     failed,
		TotalDuration:   totalDuration,
		TotalMemory:     totalMemory,
		StepCounts:      stepCounts,
		AverageDuration: totalDuration / time.Duration(len(metrics)),
		SlowestStep:     slowest.Step,
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalSteps      int            `json:"total_steps"`
	FailedSteps     int            `json:"failed_steps"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalMemory     int64          `json:"total_memory"`
	StepCounts      map[string]int `json:"step_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
	SlowestStep     string         `json:"slowest_step"`
}

// WriteReport writes one line per recorded step followed by the totals.
func (mc *MetricsCollector) WriteReport(w io.Writer) error {
	metrics := mc.GetMetrics()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "STEP\tDURATION\tROWS\tCOLUMNS\tMEMORY")
	for _, m := range metrics {
		step := m.Step
		if m.Parallel {
			step += " (parallel)"
		}
		if m.Failed {
			step += " (failed)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			step,
			m.Duration.Round(time.Microsecond),
			humanize.Comma(m.Rows),
			m.Columns,
			humanize.Bytes(uint64(m.MemoryUsed)), //nolint:gosec // never negative
		)
	}

	summary := mc.GetSummary()
	fmt.Fprintf(tw, "total\t%s\t\t\t%s\n",
		summary.TotalDuration.Round(time.Microsecond),
		humanize.Bytes(uint64(summary.TotalMemory)), //nolint:gosec // never negative
	)
	return tw.Flush()
}

// StepNames returns the distinct recorded step names in sorted order.
func (s MetricsSummary) StepNames() []string {
	names := make([]string, 0, len(s.StepCounts))
	for name := range s.StepCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
