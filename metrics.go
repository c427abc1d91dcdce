package qexp

import (
	"sort"
	"sync"
	"time"
)

/*
Metrics tracks job outcomes and latency for a Runner. Latencies are kept in a
sliding window of the last windowSize jobs for the percentile figures.
*/
type Metrics struct {
	mu                   sync.RWMutex
	JobCount             int64
	FailedJobs           int64
	Retries              int64
	BreakerRejections    int64
	TotalJobTime         time.Duration
	AverageJobLatency    time.Duration
	P95JobLatency        time.Duration
	P99JobLatency        time.Duration
	JobSuccessRate       float64
	CircuitBreakerStates map[string]CircuitState

	latencies  []time.Duration
	windowSize int
}

func NewMetrics() *Metrics {
	return &Metrics{
		CircuitBreakerStates: make(map[string]CircuitState),
		latencies:            make([]time.Duration, 0, 1000),
		windowSize:           1000,
	}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) recordRetry() {
	m.mu.Lock()
	m.Retries++
	m.mu.Unlock()
}

func (m *Metrics) recordRejection() {
	m.mu.Lock()
	m.BreakerRejections++
	m.mu.Unlock()
}

func (m *Metrics) recordBreakerState(backend string, state CircuitState) {
	m.mu.Lock()
	m.CircuitBreakerStates[backend] = state
	m.mu.Unlock()
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := append([]time.Duration(nil), m.latencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	m.P95JobLatency = sorted[p95Index]
	m.P99JobLatency = sorted[p99Index]
}

// ExportMetrics returns a snapshot suitable for logging.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"job_count":          m.JobCount,
		"failed_jobs":        m.FailedJobs,
		"retries":            m.Retries,
		"breaker_rejections": m.BreakerRejections,
		"success_rate":       m.JobSuccessRate,
		"avg_latency":        m.AverageJobLatency.Milliseconds(),
		"p95_latency":        m.P95JobLatency.Milliseconds(),
		"p99_latency":        m.P99JobLatency.Milliseconds(),
	}
}
