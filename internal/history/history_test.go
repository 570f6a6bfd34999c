package history

import (
	"testing"
	"time"

	"github.com/luki/climadash/internal/reading"
)

var base = time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

func sampleAt(minutes int) reading.Sample {
	return reading.Sample{
		Time:        base.Add(time.Duration(minutes) * time.Minute),
		Temperature: 20 + float64(minutes)/10,
		Humidity:    50 + float64(minutes)/100,
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(2)
	for _, m := range []int{0, 15, 30} {
		if !b.Append(sampleAt(m)) {
			t.Fatalf("Append(t=%d) rejected", m)
		}
	}

	if b.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", b.Len())
	}
	got := b.Samples()
	if !got[0].Time.Equal(sampleAt(15).Time) || !got[1].Time.Equal(sampleAt(30).Time) {
		t.Errorf("expected t=15,t=30; got %v, %v", got[0].Time, got[1].Time)
	}
}

func TestBufferDuplicateTimestamp(t *testing.T) {
	b := NewBuffer(10)
	b.Append(sampleAt(0))

	dup := sampleAt(0)
	dup.Temperature = 99
	if b.Append(dup) {
		t.Error("duplicate timestamp should be rejected")
	}
	if b.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", b.Len())
	}
	last, _ := b.Last()
	if last.Temperature == 99 {
		t.Error("duplicate overwrote the stored sample")
	}
}

func TestBufferRejectsOlderSample(t *testing.T) {
	b := NewBuffer(10)
	b.Append(sampleAt(30))
	if b.Append(sampleAt(15)) {
		t.Error("sample older than the last one should be rejected")
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 sample, got %d", b.Len())
	}
}

func TestBufferNeverExceedsCapacity(t *testing.T) {
	b := NewBuffer(100)
	for i := 0; i < 1000; i++ {
		b.Append(sampleAt(i))
		if b.Len() > 100 {
			t.Fatalf("length %d exceeds capacity after %d appends", b.Len(), i+1)
		}
	}

	got := b.Samples()
	if !got[0].Time.Equal(sampleAt(900).Time) {
		t.Errorf("oldest sample: got %v, want %v", got[0].Time, sampleAt(900).Time)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Time.After(got[i-1].Time) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}

func TestNewBufferMinimumCapacity(t *testing.T) {
	b := NewBuffer(0)
	if b.Cap() != 1 {
		t.Errorf("Cap(): got %d, want 1", b.Cap())
	}
	b.Append(sampleAt(0))
	b.Append(sampleAt(1))
	if b.Len() != 1 {
		t.Errorf("Len(): got %d, want 1", b.Len())
	}
}

func TestQueryEmpty(t *testing.T) {
	b := NewBuffer(10)
	s := b.Query(RangeWeek, base)
	if s.Timestamps == nil || s.Temperature == nil || s.Humidity == nil {
		t.Fatal("expected empty, non-nil sequences")
	}
	if s.Len() != 0 || len(s.Temperature) != 0 || len(s.Humidity) != 0 {
		t.Errorf("expected empty series, got %d", s.Len())
	}
}

func TestQueryRanges(t *testing.T) {
	b := NewBuffer(1000)
	now := base.Add(8 * 24 * time.Hour)
	// one sample every 30 minutes across 8 days, the last one at now
	for m := 0; m <= 8*24*60; m += 30 {
		b.Append(sampleAt(m))
	}

	tests := []struct {
		r    Range
		want int
	}{
		{RangeHour, 3},        // now-60m, now-30m, now
		{RangeDay, 49},        // 24h / 30m + 1
		{RangeWeek, 7*48 + 1}, // 7d / 30m + 1
		{Range("month"), 3},   // unknown falls back to hour
	}
	for _, tt := range tests {
		s := b.Query(tt.r, now)
		if s.Len() != tt.want {
			t.Errorf("Query(%s): got %d samples, want %d", tt.r, s.Len(), tt.want)
			continue
		}
		if !s.Timestamps[s.Len()-1].Equal(now) {
			t.Errorf("Query(%s): last sample %v, want %v", tt.r, s.Timestamps[s.Len()-1], now)
		}
		cutoff := now.Add(-tt.r.Window())
		if s.Timestamps[0].Before(cutoff) {
			t.Errorf("Query(%s): first sample %v before cutoff %v", tt.r, s.Timestamps[0], cutoff)
		}
	}
}

func TestQueryIsContiguousSuffix(t *testing.T) {
	b := NewBuffer(50)
	for m := 0; m < 120; m += 5 {
		b.Append(sampleAt(m))
	}
	now := base.Add(120 * time.Minute)

	all := b.Samples()
	s := b.Query(RangeHour, now)
	offset := len(all) - s.Len()
	for i := range s.Timestamps {
		want := all[offset+i]
		if !s.Timestamps[i].Equal(want.Time) || s.Temperature[i] != want.Temperature || s.Humidity[i] != want.Humidity {
			t.Fatalf("index %d: got (%v, %f, %f), want %+v", i, s.Timestamps[i], s.Temperature[i], s.Humidity[i], want)
		}
	}
}

func TestQueryDoesNotAlias(t *testing.T) {
	b := NewBuffer(10)
	b.Append(sampleAt(0))
	b.Append(sampleAt(1))

	s := b.Query(RangeHour, base.Add(time.Minute))
	s.Temperature[0] = -100
	s.Timestamps[0] = time.Time{}

	got := b.Samples()
	if got[0].Temperature == -100 || got[0].Time.IsZero() {
		t.Error("mutating the query result changed the buffer")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"hour", RangeHour},
		{"day", RangeDay},
		{"week", RangeWeek},
		{"", RangeHour},
		{"WEEK", RangeHour},
		{"year", RangeHour},
	}
	for _, tt := range tests {
		if got := ParseRange(tt.in); got != tt.want {
			t.Errorf("ParseRange(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeriesStats(t *testing.T) {
	s := Series{
		Timestamps:  []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)},
		Temperature: []float64{20, 22, 24},
		Humidity:    []float64{40, 50, 60},
	}
	st, ok := s.TemperatureStats()
	if !ok {
		t.Fatal("expected stats")
	}
	if st.Min != 20 || st.Max != 24 || st.Avg != 22 {
		t.Errorf("temperature stats: got %+v", st)
	}
	if _, ok := (Series{}).HumidityStats(); ok {
		t.Error("empty series should have no stats")
	}

	pts := s.HumidityPoints()
	if len(pts) != 3 || pts[2].Value != 60 || !pts[2].Time.Equal(base.Add(2*time.Minute)) {
		t.Errorf("HumidityPoints: got %+v", pts)
	}
}
