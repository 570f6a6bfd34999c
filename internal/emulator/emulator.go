// Package emulator pushes simulated sensor readings to a running climadash
// server, standing in for a real sensor during development.
package emulator

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/luki/climadash/internal/demo"
	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
)

const readingsPath = "/api/v1/readings"

var (
	errServer      = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Ack is the server's reply to a pushed reading.
type Ack struct {
	Accepted bool `json:"accepted"`
	Stored   bool `json:"stored"`
}

// Stats summarizes a Run.
type Stats struct {
	Sent     int
	Accepted int
	Stored   int
	Failed   int
}

// Emulator posts generator samples to a server.
type Emulator struct {
	client   *resty.Client
	cb       *gobreaker.CircuitBreaker
	gen      *demo.Generator
	interval time.Duration
	log      *logrus.Entry
}

// New creates an emulator posting to baseURL every interval. Simulated
// time advances with the interval so timestamps track the wall clock.
func New(baseURL string, interval time.Duration) *Emulator {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	gen := demo.NewGenerator(nil, interval)
	gen.Seed(reading.Sample{Time: time.Now().Add(-interval), Temperature: 23, Humidity: 50})
	return NewWithGenerator(baseURL, interval, gen)
}

// NewWithGenerator is New with a caller-supplied generator.
func NewWithGenerator(baseURL string, interval time.Duration, gen *demo.Generator) *Emulator {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "climadash-emulator")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "emulator",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	return &Emulator{
		client:   client,
		cb:       cb,
		gen:      gen,
		interval: interval,
		log:      logger.Component("emulator"),
	}
}

// Push sends one sample. Each request carries a fresh X-Request-ID.
func (e *Emulator) Push(ctx context.Context, s reading.Sample) (Ack, error) {
	id := uuid.NewString()
	result, err := e.cb.Execute(func() (interface{}, error) {
		var ack Ack
		resp, err := e.client.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", id).
			SetBody(reading.NewPayload(s)).
			SetResult(&ack).
			Post(readingsPath)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return nil, errors.Wrapf(errServer, "status %d", resp.StatusCode())
		}
		if !resp.IsSuccess() {
			return nil, errors.Wrapf(errUnexpected, "status %d", resp.StatusCode())
		}
		return ack, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Ack{}, errors.Wrap(ErrCircuitOpen, err.Error())
		}
		return Ack{}, errors.Wrapf(err, "push reading %s", id)
	}
	return result.(Ack), nil
}

// Run pushes a sample immediately and then every interval until duration
// elapses (forever when duration <= 0) or ctx is cancelled. Failed pushes
// are counted and skipped.
func (e *Emulator) Run(ctx context.Context, duration time.Duration) Stats {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	var st Stats
	push := func() {
		s := e.gen.Next()
		st.Sent++
		ack, err := e.Push(ctx, s)
		if err != nil {
			st.Failed++
			if ctx.Err() == nil {
				e.log.WithError(err).Warn("push failed")
			}
			return
		}
		if ack.Accepted {
			st.Accepted++
		}
		if ack.Stored {
			st.Stored++
		}
		e.log.WithFields(logrus.Fields{
			"temperature": s.Temperature,
			"humidity":    s.Humidity,
			"stored":      ack.Stored,
		}).Debug("pushed reading")
	}

	push()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return st
		case <-ticker.C:
			push()
		}
	}
}

// ParseDuration accepts a Go duration ("90s", "5m") or a bare number of
// seconds. Anything else, or a value under a second, yields def.
func ParseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		d = time.Duration(secs) * time.Second
	}
	if d < time.Second {
		return def
	}
	return d
}
