// Package dashboard holds the Hub, the single owner of the history buffer,
// trend state and connection status. Feed sources, HTTP handlers, demo
// timers and the terminal UI all go through it.
package dashboard

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/luki/climadash/internal/feed"
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
	"github.com/luki/climadash/internal/trend"
)

// ErrNoData is returned by Latest before any sample was accepted.
var ErrNoData = errors.New("no readings yet")

// State is the coarse connection state shown in the status line.
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
	StateDemo         State = "demo"
)

// Status is the connection indicator: a state plus the text shown to users.
type Status struct {
	State State  `json:"state"`
	Text  string `json:"text"`
}

// Sink receives hub events. Calls happen outside the hub lock, on whichever
// goroutine produced the event.
type Sink interface {
	OnUpdate(u feed.Update)
	OnStatus(s Status)
}

// Hub serializes every callback that touches the buffer so each one runs to
// completion before the next starts.
type Hub struct {
	mu        sync.Mutex
	adapter   *feed.Adapter
	trend     *trend.State
	maxPoints int
	demo      bool
	latest    *feed.Update
	status    Status
	sinks     []Sink
	now       func() time.Time
	log       *logrus.Entry
}

// NewHub creates a hub with an empty buffer of maxPoints.
func NewHub(maxPoints int) *Hub {
	st := trend.NewState()
	return &Hub{
		adapter:   feed.NewAdapter(history.NewBuffer(maxPoints), st),
		trend:     st,
		maxPoints: maxPoints,
		status:    Status{State: StateConnecting, Text: "Connecting to sensors..."},
		now:       time.Now,
		log:       logger.Component("dashboard"),
	}
}

// Subscribe registers a sink for future events.
func (h *Hub) Subscribe(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Ingest runs a live payload (feed or HTTP push) through the adapter.
// Absent or malformed payloads are dropped and reported as not accepted.
// An accepted payload marks the hub connected; in demo mode it also
// replaces the simulated buffer with an empty live one first.
func (h *Hub) Ingest(p *reading.Payload) (feed.Update, bool) {
	if p == nil {
		return feed.Update{}, false
	}
	if _, err := p.Sample(); err != nil {
		h.log.WithError(err).Debug("dropping malformed payload")
		return feed.Update{}, false
	}

	h.mu.Lock()
	if h.demo {
		h.leaveDemo()
	}
	u, ok := h.adapter.OnSample(p)
	if ok {
		h.latest = &u
	}
	changed := false
	if ok && h.status.State != StateConnected {
		h.status = Status{State: StateConnected, Text: "Connected to sensors"}
		changed = true
	}
	status := h.status
	sinks := h.snapshotSinks()
	h.mu.Unlock()

	if !ok {
		return u, false
	}
	for _, s := range sinks {
		if changed {
			s.OnStatus(status)
		}
		s.OnUpdate(u)
	}
	return u, true
}

// DemoPayload ingests a simulated sample. It reports false, dropping the
// sample, once a live feed has ended demo mode.
func (h *Hub) DemoPayload(p *reading.Payload) bool {
	h.mu.Lock()
	if !h.demo {
		h.mu.Unlock()
		return false
	}
	u, ok := h.adapter.OnSample(p)
	if ok {
		h.latest = &u
	}
	sinks := h.snapshotSinks()
	h.mu.Unlock()

	if ok {
		for _, s := range sinks {
			s.OnUpdate(u)
		}
	}
	return true
}

// leaveDemo must be called with mu held.
func (h *Hub) leaveDemo() {
	h.trend = trend.NewState()
	h.adapter = feed.NewAdapter(history.NewBuffer(h.maxPoints), h.trend)
	h.latest = nil
	h.demo = false
	h.log.Info("live feed took over, leaving demo mode")
}

// OnPayload implements feed.Handler.
func (h *Hub) OnPayload(p *reading.Payload) {
	h.Ingest(p)
}

// OnConnectivity implements feed.Handler.
func (h *Hub) OnConnectivity(connected bool) {
	if connected {
		h.setStatus(Status{State: StateConnected, Text: "Connected to sensors"})
		return
	}
	h.setStatus(Status{State: StateDisconnected, Text: "Disconnected from sensors"})
}

// OnError implements feed.Handler. The buffer is left as is.
func (h *Hub) OnError(err error) {
	if err == nil {
		return
	}
	h.log.WithError(err).Warn("feed error")
	h.setStatus(Status{State: StateError, Text: "Error: " + err.Error()})
}

// EnterDemo swaps in a fresh buffer of the given capacity loaded with
// backfill. The newest backfill sample goes through the adapter so current
// values and trends update like a live push. It refuses, returning false,
// while a live feed is connected.
func (h *Hub) EnterDemo(backfill []reading.Sample, capacity int) bool {
	h.mu.Lock()
	if h.status.State == StateConnected {
		h.mu.Unlock()
		return false
	}
	h.demo = true
	buf := history.NewBuffer(capacity)
	h.adapter = feed.NewAdapter(buf, h.trend)

	var u feed.Update
	var ok bool
	if n := len(backfill); n > 0 {
		for _, s := range backfill[:n-1] {
			buf.Append(s)
		}
		u, ok = h.adapter.OnSample(reading.NewPayload(backfill[n-1]))
		if ok {
			h.latest = &u
		}
	}
	h.status = Status{State: StateDemo, Text: "Demo Mode: Using simulated data"}
	status := h.status
	sinks := h.snapshotSinks()
	h.mu.Unlock()

	h.log.WithField("points", len(backfill)).Info("entered demo mode")
	for _, s := range sinks {
		if ok {
			s.OnUpdate(u)
		}
		s.OnStatus(status)
	}
	return true
}

// Demo reports whether simulated data is being shown.
func (h *Hub) Demo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.demo
}

// Query returns the samples inside r, relative to the hub clock.
func (h *Hub) Query(r history.Range) history.Series {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapter.Buffer().Query(r, h.now())
}

// Latest returns the last accepted update.
func (h *Hub) Latest() (feed.Update, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return feed.Update{}, ErrNoData
	}
	return *h.latest, nil
}

// Len is the number of buffered samples.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapter.Buffer().Len()
}

// Capacity is the current buffer capacity (larger in demo mode).
func (h *Hub) Capacity() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapter.Buffer().Cap()
}

func (h *Hub) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Connected reports whether the indicator is green: a live feed is up or
// demo mode is running.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status.State == StateConnected || h.status.State == StateDemo
}

// setStatus notifies sinks only when the status changes.
func (h *Hub) setStatus(s Status) {
	h.mu.Lock()
	if h.status == s {
		h.mu.Unlock()
		return
	}
	h.status = s
	sinks := h.snapshotSinks()
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.OnStatus(s)
	}
}

// snapshotSinks must be called with mu held.
func (h *Hub) snapshotSinks() []Sink {
	out := make([]Sink, len(h.sinks))
	copy(out, h.sinks)
	return out
}
