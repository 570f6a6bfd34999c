// Package demo produces simulated readings when no live feed shows up.
package demo

import (
	"math"
	"math/rand"
	"time"

	"github.com/luki/climadash/internal/reading"
)

const (
	// Capacity is the buffer size used in demo mode: a week of
	// 15-minute samples.
	Capacity = 7 * 24 * 4

	// Spacing between backfilled samples.
	Spacing = 15 * time.Minute

	// DefaultStep is how far simulated time advances per tick.
	DefaultStep = time.Minute
)

// Value limits for simulated readings.
const (
	MinTemperature = 10.0
	MaxTemperature = 40.0
	MinHumidity    = 20.0
	MaxHumidity    = 95.0
)

// Generator produces a diurnal backfill and a random walk from its last
// sample. It is not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	step time.Duration
	last reading.Sample
	init bool
}

// NewGenerator returns a generator drawing from rng. A nil rng is seeded
// from the clock; step <= 0 means DefaultStep.
func NewGenerator(rng *rand.Rand, step time.Duration) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Generator{rng: rng, step: step}
}

// Backfill returns Capacity samples, oldest first, spaced by Spacing and
// ending at now. Temperature peaks around 18:00 and humidity moves
// inversely.
func (g *Generator) Backfill(now time.Time) []reading.Sample {
	out := make([]reading.Sample, 0, Capacity)
	for i := Capacity - 1; i >= 0; i-- {
		ts := now.Add(-time.Duration(i) * Spacing)
		f := dayFactor(ts)

		temp := 23 + 5*f + g.noise(1)
		hum := clamp(50-20*f+g.noise(5), MinHumidity, MaxHumidity)
		out = append(out, reading.Sample{Time: ts, Temperature: temp, Humidity: hum})
	}
	g.Seed(out[len(out)-1])
	return out
}

// Seed sets the sample the random walk continues from.
func (g *Generator) Seed(s reading.Sample) {
	g.last = s
	g.init = true
}

// Last returns the most recent generated or seeded sample.
func (g *Generator) Last() reading.Sample {
	return g.last
}

// Next advances simulated time by one step and perturbs the last values.
func (g *Generator) Next() reading.Sample {
	if !g.init {
		g.Seed(reading.Sample{Time: time.Now(), Temperature: 23, Humidity: 50})
	}
	s := reading.Sample{
		Time:        g.last.Time.Add(g.step),
		Temperature: clamp(g.last.Temperature+g.noise(0.25), MinTemperature, MaxTemperature),
		Humidity:    clamp(g.last.Humidity+g.noise(1), MinHumidity, MaxHumidity),
	}
	g.last = s
	return s
}

// noise returns a uniform value in [-amp, amp).
func (g *Generator) noise(amp float64) float64 {
	return (g.rng.Float64() - 0.5) * 2 * amp
}

// dayFactor is -1 at 06:00, 0 at noon and midnight, +1 at 18:00.
func dayFactor(t time.Time) float64 {
	return math.Sin(float64(t.Hour()-12) / 24 * 2 * math.Pi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
