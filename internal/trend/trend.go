// Package trend classifies the change between consecutive readings.
package trend

import (
	"math"

	"github.com/shopspring/decimal"
)

// Metric identifies which reading a trend belongs to.
type Metric int

const (
	Temperature Metric = iota
	Humidity
)

// Threshold is the smallest absolute change reported as a movement.
// Anything below it is sensor jitter.
func (m Metric) Threshold() float64 {
	if m == Humidity {
		return 1
	}
	return 0.1
}

// Places is the number of decimals the magnitude is rounded to.
func (m Metric) Places() int32 {
	if m == Humidity {
		return 0
	}
	return 1
}

// Unit returns the display unit.
func (m Metric) Unit() string {
	if m == Humidity {
		return "%"
	}
	return "°C"
}

func (m Metric) String() string {
	if m == Humidity {
		return "humidity"
	}
	return "temperature"
}

// Direction is the classification of a delta.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// Arrow returns the indicator glyph.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "↑"
	case Down:
		return "↓"
	default:
		return "⟷"
	}
}

// Trend is the signed change between two readings of one metric.
type Trend struct {
	Metric    Metric    `json:"-"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
	Magnitude string    `json:"magnitude"`
}

// Compute classifies current against previous.
func Compute(previous, current float64, m Metric) Trend {
	delta := current - previous
	t := Trend{
		Metric:    m,
		Delta:     delta,
		Direction: Neutral,
		Magnitude: decimal.NewFromFloat(math.Abs(delta)).StringFixed(m.Places()),
	}
	switch {
	case math.Abs(delta) < m.Threshold():
	case delta > 0:
		t.Direction = Up
	case delta < 0:
		t.Direction = Down
	}
	return t
}

// Label renders the trend as shown next to the current value.
func (t Trend) Label() string {
	switch t.Direction {
	case Up:
		return "+" + t.Magnitude + t.Metric.Unit()
	case Down:
		return t.Magnitude + t.Metric.Unit()
	default:
		return "No change"
	}
}

// State remembers the last observed values so the next reading can be
// compared against them.
type State struct {
	temperature float64
	humidity    float64
	set         bool
}

// NewState returns an unset state.
func NewState() *State {
	return &State{}
}

// Observe records a reading and returns the trends against the previous
// one. ok is false for the first observation.
func (s *State) Observe(temperature, humidity float64) (temp, hum Trend, ok bool) {
	if s.set {
		temp = Compute(s.temperature, temperature, Temperature)
		hum = Compute(s.humidity, humidity, Humidity)
		ok = true
	}
	s.temperature = temperature
	s.humidity = humidity
	s.set = true
	return temp, hum, ok
}

// Last returns the last observed values.
func (s *State) Last() (temperature, humidity float64, ok bool) {
	return s.temperature, s.humidity, s.set
}
