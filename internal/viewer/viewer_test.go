package viewer

import (
	"strings"
	"testing"
	"time"

	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/theme"
)

var base = time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)

func makeSeries(n int, step time.Duration, from time.Time) history.Series {
	var s history.Series
	for i := 0; i < n; i++ {
		s.Timestamps = append(s.Timestamps, from.Add(time.Duration(i)*step))
		s.Temperature = append(s.Temperature, 20+float64(i)/10)
		s.Humidity = append(s.Humidity, 50-float64(i%10))
	}
	return s
}

func TestPanelFollowsNewest(t *testing.T) {
	p := New(history.RangeHour)
	if p.Cursor() != -1 {
		t.Fatalf("empty panel cursor = %d", p.Cursor())
	}

	p.SetSeries(makeSeries(10, time.Minute, base))
	if p.Cursor() != 9 || !p.Following() {
		t.Fatalf("cursor = %d following = %v", p.Cursor(), p.Following())
	}

	p.SetSeries(makeSeries(11, time.Minute, base))
	if p.Cursor() != 10 {
		t.Errorf("pinned cursor should move to newest, got %d", p.Cursor())
	}
}

func TestPanelScrubKeepsTime(t *testing.T) {
	p := New(history.RangeHour)
	p.SetSeries(makeSeries(10, time.Minute, base))

	p.Scrub(-3)
	if p.Cursor() != 6 || p.Following() {
		t.Fatalf("after scrub: cursor = %d following = %v", p.Cursor(), p.Following())
	}
	want, _ := p.CursorTime()

	// oldest sample evicted, one appended
	p.SetSeries(makeSeries(10, time.Minute, base.Add(time.Minute)))
	got, _ := p.CursorTime()
	if !got.Equal(want) {
		t.Errorf("cursor moved from %v to %v", want, got)
	}
	if p.Cursor() != 5 {
		t.Errorf("cursor index = %d, want 5", p.Cursor())
	}

	p.Scrub(100)
	if p.Cursor() != 9 || !p.Following() {
		t.Errorf("scrubbing to the end should pin the cursor")
	}
}

func TestPanelHomeEnd(t *testing.T) {
	p := New(history.RangeDay)
	p.SetSeries(makeSeries(5, time.Hour, base))

	p.Home()
	if p.Cursor() != 0 {
		t.Errorf("Home cursor = %d", p.Cursor())
	}
	p.End()
	if p.Cursor() != 4 {
		t.Errorf("End cursor = %d", p.Cursor())
	}

	p.SetSeries(history.Series{})
	p.Scrub(1)
	if p.Cursor() != -1 {
		t.Errorf("cursor on empty series = %d", p.Cursor())
	}
}

func TestSetRangeRepins(t *testing.T) {
	p := New(history.Range("bogus"))
	if p.Range() != history.RangeHour {
		t.Fatalf("unknown range should fall back to hour, got %s", p.Range())
	}
	p.SetSeries(makeSeries(5, time.Minute, base))
	p.Home()
	p.SetRange(history.RangeWeek)
	if !p.Following() || p.Range() != history.RangeWeek {
		t.Error("SetRange should select the range and pin the cursor")
	}
}

func TestNearestIndex(t *testing.T) {
	ts := []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)}
	tests := []struct {
		at   time.Duration
		want int
	}{
		{-time.Hour, 0},
		{0, 0},
		{4 * time.Minute, 0},
		{6 * time.Minute, 1},
		{19 * time.Minute, 2},
		{time.Hour, 2},
	}
	for _, tt := range tests {
		if got := NearestIndex(ts, base.Add(tt.at)); got != tt.want {
			t.Errorf("NearestIndex(+%v) = %d, want %d", tt.at, got, tt.want)
		}
	}
	if NearestIndex(nil, base) != -1 {
		t.Error("empty slice should give -1")
	}
}

func TestWindow(t *testing.T) {
	pts := makeSeries(10, time.Minute, base).TemperaturePoints()

	w := Window(pts, 5, 3)
	if len(w) != 3 || !w[2].Time.Equal(pts[5].Time) {
		t.Errorf("window should end at the cursor, got %d points", len(w))
	}
	if w := Window(pts, 1, 5); len(w) != 2 {
		t.Errorf("window near the start = %d points, want 2", len(w))
	}
	if Window(pts, -1, 5) != nil {
		t.Error("no cursor should give no window")
	}
}

func TestView(t *testing.T) {
	pal := theme.For(theme.Light)

	p := New(history.RangeHour)
	if out := p.View(80, pal); !strings.Contains(out, "No data for this range.") {
		t.Errorf("empty view:\n%s", out)
	}

	p.SetSeries(makeSeries(30, time.Minute, base))
	out := p.View(120, pal)
	for _, want := range []string{"Temperature", "Humidity", "30/30", "1 hour", "◆"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestPlotCoversWholeRangeWhileFollowing(t *testing.T) {
	week := makeSeries(672, 15*time.Minute, base)
	pts := week.TemperaturePoints()

	p := New(history.RangeWeek)
	p.SetSeries(week)

	got := p.Plot(pts, 60)
	if len(got) != 60 {
		t.Fatalf("plotted %d points, want 60", len(got))
	}
	if got[0].Time.After(pts[len(pts)/60].Time) {
		t.Errorf("first column starts at %v, want within the first bucket", got[0].Time)
	}
	if !got[59].Time.Equal(pts[671].Time) {
		t.Errorf("last column at %v, want the newest sample", got[59].Time)
	}

	p.Scrub(-100)
	got = p.Plot(pts, 60)
	if len(got) != 60 || !got[59].Time.Equal(pts[571].Time) {
		t.Errorf("scrubbed plot should be the raw window ending at the cursor")
	}
}

func TestViewWeekLabelsOldestDay(t *testing.T) {
	p := New(history.RangeWeek)
	p.SetSeries(makeSeries(672, 15*time.Minute, base))

	out := p.View(160, theme.For(theme.Dark))
	for _, want := range []string{"Feb 22", "Feb 27", "672/672"} {
		if !strings.Contains(out, want) {
			t.Errorf("week view missing %q:\n%s", want, out)
		}
	}
}
