package history

import (
	"math"
	"time"
)

// Series is the result of a range query: three parallel sequences in
// chronological order.
type Series struct {
	Timestamps  []time.Time `json:"timestamps"`
	Temperature []float64   `json:"temperature"`
	Humidity    []float64   `json:"humidity"`
}

// Point is a single value on a plotted series.
type Point struct {
	Value float64
	Time  time.Time
}

// Stats summarizes one metric of a series.
type Stats struct {
	Min float64
	Max float64
	Avg float64
}

// Len returns the number of samples in the series.
func (s Series) Len() int {
	return len(s.Timestamps)
}

// TemperaturePoints returns the temperature values with their timestamps.
func (s Series) TemperaturePoints() []Point {
	return points(s.Timestamps, s.Temperature)
}

// HumidityPoints returns the humidity values with their timestamps.
func (s Series) HumidityPoints() []Point {
	return points(s.Timestamps, s.Humidity)
}

// TemperatureStats returns min/max/avg temperature, or false when empty.
func (s Series) TemperatureStats() (Stats, bool) {
	return stats(s.Temperature)
}

// HumidityStats returns min/max/avg humidity, or false when empty.
func (s Series) HumidityStats() (Stats, bool) {
	return stats(s.Humidity)
}

func points(ts []time.Time, vals []float64) []Point {
	out := make([]Point, len(ts))
	for i := range ts {
		out[i] = Point{Value: vals[i], Time: ts[i]}
	}
	return out
}

func stats(vals []float64) (Stats, bool) {
	if len(vals) == 0 {
		return Stats{}, false
	}
	st := Stats{Min: math.MaxFloat64, Max: -math.MaxFloat64}
	sum := 0.0
	for _, v := range vals {
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		sum += v
	}
	st.Avg = sum / float64(len(vals))
	return st, true
}
