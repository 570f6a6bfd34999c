package demo

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
)

// Target is where demo data goes. dashboard.Hub implements it.
//
// EnterDemo may refuse when a live feed is already up. DemoPayload returns
// false once a live feed has taken over.
type Target interface {
	EnterDemo(backfill []reading.Sample, capacity int) bool
	DemoPayload(p *reading.Payload) bool
	Connected() bool
}

// Runner switches a target into demo mode and keeps feeding it.
type Runner struct {
	mu        sync.Mutex
	gen       *Generator
	target    Target
	interval  time.Duration
	capacity  int
	scheduler *gocron.Scheduler
	timer     *time.Timer
	running   bool
	stopped   bool
	now       func() time.Time
	log       *logrus.Entry
}

// NewRunner creates a runner ticking every interval (10s when <= 0).
func NewRunner(target Target, gen *Generator, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Runner{
		gen:      gen,
		target:   target,
		interval: interval,
		capacity: Capacity,
		now:      time.Now,
		log:      logger.Component("demo"),
	}
}

// SetCapacity overrides the demo buffer size. Values <= 0 are ignored.
func (r *Runner) SetCapacity(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > 0 {
		r.capacity = n
	}
}

// StartIfIdle arms a one-shot timer. When it fires and the target still
// reports no connection, demo mode starts.
func (r *Runner) StartIfIdle(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(timeout, func() {
		if r.target.Connected() {
			r.log.Debug("feed connected, demo mode not needed")
			return
		}
		if err := r.Start(r.now()); err != nil {
			r.log.WithError(err).Error("start demo mode")
		}
	})
}

// Start loads the backfill into the target and schedules ticks. Calling it
// again while running, or after Stop, is a no-op.
func (r *Runner) Start(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.stopped {
		return nil
	}

	if !r.target.EnterDemo(r.gen.Backfill(now), r.capacity) {
		r.log.Info("live feed connected, demo mode not started")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(r.interval).WaitForSchedule().Do(r.Tick); err != nil {
		return errors.Wrap(err, "schedule demo ticks")
	}
	s.StartAsync()

	r.scheduler = s
	r.running = true
	r.log.WithField("interval", r.interval).Info("demo mode started")
	return nil
}

// Tick pushes the next simulated sample into the target. When the target
// has gone live the runner stops itself.
func (r *Runner) Tick() {
	r.mu.Lock()
	s := r.gen.Next()
	r.mu.Unlock()

	if !r.target.DemoPayload(reading.NewPayload(s)) {
		// the scheduler waits for this job, so stop from outside it
		go r.Stop()
	}
}

// Running reports whether demo ticks are scheduled.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop cancels the idle timer and any scheduled ticks. A stopped runner
// never starts again.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	s := r.scheduler
	r.scheduler = nil
	r.running = false
	r.mu.Unlock()

	// a tick in flight needs mu to finish
	if s != nil {
		s.Stop()
	}
}
