// Package history provides the bounded temperature/humidity history buffer
// and its time-range queries.
package history

import (
	"sort"
	"time"

	"github.com/luki/climadash/internal/reading"
)

// Buffer stores samples as three parallel sequences ordered by strictly
// increasing timestamp. Its length never exceeds the capacity; the oldest
// sample is evicted first.
//
// A Buffer is not safe for concurrent use; it belongs to a single owner.
type Buffer struct {
	timestamps   []time.Time
	temperatures []float64
	humidities   []float64
	max          int
}

// NewBuffer creates an empty buffer holding at most maxPoints samples.
func NewBuffer(maxPoints int) *Buffer {
	if maxPoints < 1 {
		maxPoints = 1
	}
	return &Buffer{
		timestamps:   make([]time.Time, 0, maxPoints),
		temperatures: make([]float64, 0, maxPoints),
		humidities:   make([]float64, 0, maxPoints),
		max:          maxPoints,
	}
}

// Append adds a sample and reports whether it was stored. A sample whose
// timestamp equals the last stored one is a duplicate push and is dropped,
// as is one older than the last stored sample.
func (b *Buffer) Append(s reading.Sample) bool {
	if n := len(b.timestamps); n > 0 {
		last := b.timestamps[n-1]
		if !s.Time.After(last) {
			return false
		}
	}

	b.timestamps = append(b.timestamps, s.Time)
	b.temperatures = append(b.temperatures, s.Temperature)
	b.humidities = append(b.humidities, s.Humidity)

	if len(b.timestamps) > b.max {
		b.timestamps = b.timestamps[1:]
		b.temperatures = b.temperatures[1:]
		b.humidities = b.humidities[1:]
	}
	return true
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	return len(b.timestamps)
}

// Cap returns the configured capacity.
func (b *Buffer) Cap() int {
	return b.max
}

// Last returns the most recent sample.
func (b *Buffer) Last() (reading.Sample, bool) {
	n := len(b.timestamps)
	if n == 0 {
		return reading.Sample{}, false
	}
	return b.at(n - 1), true
}

// Samples returns a copy of every stored sample, oldest first.
func (b *Buffer) Samples() []reading.Sample {
	out := make([]reading.Sample, len(b.timestamps))
	for i := range b.timestamps {
		out[i] = b.at(i)
	}
	return out
}

// Query returns the samples whose timestamp is not before now minus the
// range window. The result never aliases the buffer's storage.
func (b *Buffer) Query(r Range, now time.Time) Series {
	cutoff := now.Add(-r.Window())
	start := sort.Search(len(b.timestamps), func(i int) bool {
		return !b.timestamps[i].Before(cutoff)
	})

	n := len(b.timestamps) - start
	s := Series{
		Timestamps:  make([]time.Time, n),
		Temperature: make([]float64, n),
		Humidity:    make([]float64, n),
	}
	copy(s.Timestamps, b.timestamps[start:])
	copy(s.Temperature, b.temperatures[start:])
	copy(s.Humidity, b.humidities[start:])
	return s
}

func (b *Buffer) at(i int) reading.Sample {
	return reading.Sample{
		Time:        b.timestamps[i],
		Temperature: b.temperatures[i],
		Humidity:    b.humidities[i],
	}
}
