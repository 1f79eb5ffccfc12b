package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	diagnosisTotal           atomic.Uint64
	diagnosisFailedTotal     atomic.Uint64
	enrichmentSucceededTotal atomic.Uint64
	enrichmentFailedTotal    atomic.Uint64
	enrichmentSkippedTotal   atomic.Uint64

	enrichmentDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncDiagnosis counts a completed diagnosis.
func IncDiagnosis() {
	diagnosisTotal.Add(1)
}

// IncDiagnosisFailed counts a diagnosis that could not be produced.
func IncDiagnosisFailed() {
	diagnosisFailedTotal.Add(1)
}

// IncEnrichmentSucceeded counts a narrative that came back from the provider.
func IncEnrichmentSucceeded() {
	enrichmentSucceededTotal.Add(1)
}

// IncEnrichmentFailed counts a provider call that fell back.
func IncEnrichmentFailed() {
	enrichmentFailedTotal.Add(1)
}

// IncEnrichmentSkipped counts a diagnosis served without a provider.
func IncEnrichmentSkipped() {
	enrichmentSkippedTotal.Add(1)
}

// ObserveEnrichmentDurationMs records a provider round trip in milliseconds.
func ObserveEnrichmentDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	enrichmentDuration.Observe(value)
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
	writeCounter(&buf, "diagnosis_total", "Total diagnoses served", diagnosisTotal.Load())
	writeCounter(&buf, "diagnosis_failed_total", "Total diagnoses that failed", diagnosisFailedTotal.Load())
	writeCounter(&buf, "enrichment_succeeded_total", "Total narrative enrichments that succeeded", enrichmentSucceededTotal.Load())
	writeCounter(&buf, "enrichment_failed_total", "Total narrative enrichments that fell back", enrichmentFailedTotal.Load())
	writeCounter(&buf, "enrichment_skipped_total", "Total diagnoses served without a narrative provider", enrichmentSkippedTotal.Load())
	writeHistogram(&buf, "enrichment_duration_ms", "Narrative provider round trip in milliseconds", enrichmentDuration.Snapshot())
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
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
