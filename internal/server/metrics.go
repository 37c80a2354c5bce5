package server

import (
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/staticd/internal/response"
)

// Metrics holds server runtime metrics
type Metrics struct {
	ConnectionsTotal  atomic.Int64
	ActiveConnections atomic.Int64
	RequestsTotal     atomic.Int64
	Abandoned         atomic.Int64
	AcceptErrors      atomic.Int64
	WriteErrors       atomic.Int64
	ErrorsTotal       atomic.Int64
	Errors4xx         atomic.Int64
	Errors5xx         atomic.Int64

	TotalLatencyNs atomic.Int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records a request that produced a response
func (m *Metrics) RecordRequest(status response.StatusCode, duration time.Duration) {
	m.RequestsTotal.Add(1)
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	switch {
	case status.IsClientError():
		m.Errors4xx.Add(1)
	case status.IsServerError():
		m.Errors5xx.Add(1)
		m.ErrorsTotal.Add(1)
	}
}

// AverageLatency returns average request latency
func (m *Metrics) AverageLatency() time.Duration {
	totalReqs := m.RequestsTotal.Load()
	if totalReqs == 0 {
		return 0
	}

	avgNs := m.TotalLatencyNs.Load() / totalReqs
	return time.Duration(avgNs)
}

// MetricsSnapshot is a point in time copy of Metrics
type MetricsSnapshot struct {
	ConnectionsTotal  int64
	ActiveConnections int64
	RequestsTotal     int64
	Abandoned         int64
	AcceptErrors      int64
	WriteErrors       int64
	ErrorsTotal       int64
	Errors4xx         int64
	Errors5xx         int64
	AverageLatency    time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		ActiveConnections: m.ActiveConnections.Load(),
		RequestsTotal:     m.RequestsTotal.Load(),
		Abandoned:         m.Abandoned.Load(),
		AcceptErrors:      m.AcceptErrors.Load(),
		WriteErrors:       m.WriteErrors.Load(),
		ErrorsTotal:       m.ErrorsTotal.Load(),
		Errors4xx:         m.Errors4xx.Load(),
		Errors5xx:         m.Errors5xx.Load(),
		AverageLatency:    m.AverageLatency(),
	}
}

// Fields renders the snapshot for the structured logger.
func (s MetricsSnapshot) Fields() []Field {
	return []Field{
		{"connections_total", s.ConnectionsTotal},
		{"requests_total", s.RequestsTotal},
		{"abandoned", s.Abandoned},
		{"accept_errors", s.AcceptErrors},
		{"write_errors", s.WriteErrors},
		{"errors_4xx", s.Errors4xx},
		{"errors_5xx", s.Errors5xx},
		{"avg_latency", s.AverageLatency.String()},
	}
}
