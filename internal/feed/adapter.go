// Package feed turns inbound payloads into history samples and trend
// updates, and provides the live feed sources (websocket bridge, Linux IIO
// sensors) that produce those payloads.
package feed

import (
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/reading"
	"github.com/luki/climadash/internal/trend"
)

// Handler receives everything a feed source produces.
type Handler interface {
	OnPayload(p *reading.Payload)
	OnConnectivity(connected bool)
	OnError(err error)
}

// Update is what the rendering side gets for every accepted sample.
type Update struct {
	Sample      reading.Sample `json:"sample"`
	Temperature trend.Trend    `json:"temperatureTrend"`
	Humidity    trend.Trend    `json:"humidityTrend"`
	HasTrend    bool           `json:"hasTrend"`
	Stored      bool           `json:"stored"` // false when the buffer dropped it as a duplicate
}

// Adapter forwards accepted samples into a history buffer and keeps the
// trend state current.
type Adapter struct {
	buffer *history.Buffer
	trend  *trend.State
}

// NewAdapter creates an adapter writing into buf and st.
func NewAdapter(buf *history.Buffer, st *trend.State) *Adapter {
	return &Adapter{buffer: buf, trend: st}
}

// OnSample ingests a raw payload. Absent or malformed payloads are ignored
// and reported as not accepted.
func (a *Adapter) OnSample(raw *reading.Payload) (Update, bool) {
	if raw == nil {
		return Update{}, false
	}
	s, err := raw.Sample()
	if err != nil {
		return Update{}, false
	}

	u := Update{Sample: s}
	u.Temperature, u.Humidity, u.HasTrend = a.trend.Observe(s.Temperature, s.Humidity)
	u.Stored = a.buffer.Append(s)
	return u, true
}

// Buffer returns the buffer the adapter writes into.
func (a *Adapter) Buffer() *history.Buffer {
	return a.buffer
}

// ComputeTrend classifies the change of one metric between two readings.
func ComputeTrend(previous, current float64, m trend.Metric) trend.Trend {
	return trend.Compute(previous, current, m)
}
