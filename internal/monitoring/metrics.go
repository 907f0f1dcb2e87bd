// Package monitoring provides per-phase timing and row counts for expansion runs.
package monitoring

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"
)

// OperationMetrics represents performance metrics for a single expansion phase.
type OperationMetrics struct {
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Operation     string        `json:"operation"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector collects and stores performance metrics. A nil collector
// is valid and records nothing.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
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

// RecordOperation executes fn and records its duration, the number of rows
// it processed and the approximate heap growth.
func (mc *MetricsCollector) RecordOperation(operation string, rows int, fn func() error) error {
	if !mc.IsEnabled() {
		return fn()
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	metrics := OperationMetrics{
		Duration:      duration,
		RowsProcessed: int64(rows),
		MemoryUsed:    int64(memAfter.TotalAlloc - memBefore.TotalAlloc), //nolint:gosec // bounded by process memory
		Operation:     operation,
		Failed:        err != nil,
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, metrics)
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	if mc == nil {
		return nil
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	if mc == nil {
		return MetricsSummary{}
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	var totalMemory int64
	var totalRows int64
	operationCounts := make(map[string]int)
	operationDurations := make(map[string]time.Duration)

	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		totalRows += metric.RowsProcessed
		operationCounts[metric.Operation]++
		operationDurations[metric.Operation] += metric.Duration
	}

	return MetricsSummary{
		TotalOperations:    len(mc.metrics),
		TotalDuration:      totalDuration,
		TotalMemory:        totalMemory,
		TotalRows:          totalRows,
		OperationCounts:    operationCounts,
		OperationDurations: operationDurations,
		AverageDuration:    totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations    int                      `json:"total_operations"`
	TotalDuration      time.Duration            `json:"total_duration"`
	TotalMemory        int64                    `json:"total_memory"`
	TotalRows          int64                    `json:"total_rows"`
	OperationCounts    map[string]int           `json:"operation_counts"`
	OperationDurations map[string]time.Duration `json:"operation_durations"`
	AverageDuration    time.Duration            `json:"average_duration"`
}

// WriteTo prints the summary as one line per operation, sorted by name.
func (s MetricsSummary) WriteTo(w io.Writer) (int64, error) {
	var written int64
	n, err := fmt.Fprintf(w, "operations=%d total=%s rows=%d alloc=%dB\n",
		s.TotalOperations, s.TotalDuration, s.TotalRows, s.TotalMemory)
	written += int64(n)
	if err != nil {
		return written, err
	}

	names := make([]string, 0, len(s.OperationCounts))
	for name := range s.OperationCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n, err = fmt.Fprintf(w, "  %-10s count=%d time=%s\n", name, s.OperationCounts[name], s.OperationDurations[name])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
