package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	filesStartedTotal    atomic.Uint64
	filesSucceededTotal  atomic.Uint64
	filesFailedTotal     atomic.Uint64
	historySavedTotal    atomic.Uint64
	persistFallbackTotal atomic.Uint64

	fileDuration = newHistogram([]float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000})
)

// IncFileStarted counts a resume entering the analyzing state.
func IncFileStarted() { filesStartedTotal.Add(1) }

// IncFileSucceeded counts a resume that produced a validated result.
func IncFileSucceeded() { filesSucceededTotal.Add(1) }

// IncFileFailed counts a resume that ended in the error state.
func IncFileFailed() { filesFailedTotal.Add(1) }

// IncHistorySaved counts history records written after a batch.
func IncHistorySaved() { historySavedTotal.Add(1) }

// IncPersistFallback counts remote writes that degraded to the local tier.
func IncPersistFallback() { persistFallbackTotal.Add(1) }

// ObserveFileDurationMs records a per-file pipeline duration in milliseconds.
func ObserveFileDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	fileDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "screening_files_started_total", "Resumes submitted for analysis", filesStartedTotal.Load())
	writeCounter(&buf, "screening_files_succeeded_total", "Resumes analyzed successfully", filesSucceededTotal.Load())
	writeCounter(&buf, "screening_files_failed_total", "Resumes that ended in error", filesFailedTotal.Load())
	writeCounter(&buf, "screening_history_saved_total", "History records saved", historySavedTotal.Load())
	writeCounter(&buf, "persistence_fallback_total", "Remote writes kept only in the local tier", persistFallbackTotal.Load())
	writeHistogram(&buf, "screening_file_duration_ms", "Per-file analysis duration in milliseconds", fileDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound is not below it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
