package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/climadash/internal/dashboard"
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/reading"
	"github.com/luki/climadash/internal/store"
	"github.com/luki/climadash/internal/theme"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, samples int) (Model, *dashboard.Hub, *store.PrefStore) {
	t.Helper()
	hub := dashboard.NewHub(100)
	start := time.Now().Add(-time.Duration(samples) * time.Minute)
	for i := 0; i < samples; i++ {
		hub.Ingest(reading.NewPayload(reading.Sample{
			Time:        start.Add(time.Duration(i) * time.Minute),
			Temperature: 21 + float64(i)/10,
			Humidity:    50,
		}))
	}

	prefs, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := prefs.Save(store.Prefs{Theme: "light"}); err != nil {
		t.Fatal(err)
	}

	m := New(hub, prefs)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return next.(Model), hub, prefs
}

func TestNewUsesStoredPrefs(t *testing.T) {
	m, _, _ := newModel(t, 5)
	if m.Mode() != theme.Light {
		t.Errorf("mode = %s, want light", m.Mode())
	}
	if m.panel.Range() != history.RangeHour {
		t.Errorf("range = %s, want hour", m.panel.Range())
	}
	if !m.hasLatest || m.panel.Series().Len() != 5 {
		t.Errorf("model should start from hub state")
	}
}

func TestThemeTogglePersists(t *testing.T) {
	m, _, prefs := newModel(t, 1)

	next, cmd := m.Update(runeKey("t"))
	m = next.(Model)
	if m.Mode() != theme.Dark || !m.themeFlash || cmd == nil {
		t.Fatalf("toggle: mode=%s flash=%v", m.Mode(), m.themeFlash)
	}
	p, _ := prefs.Load()
	if p.Theme != "dark" {
		t.Errorf("stored theme = %q", p.Theme)
	}

	next, _ = m.Update(themeFlashDoneMsg{})
	if next.(Model).themeFlash {
		t.Error("flash should clear")
	}
}

func TestRangeKeys(t *testing.T) {
	m, _, prefs := newModel(t, 3)

	for _, tc := range []struct {
		key  string
		want history.Range
	}{
		{"2", history.RangeDay},
		{"w", history.RangeWeek},
		{"h", history.RangeHour},
	} {
		next, _ := m.Update(runeKey(tc.key))
		m = next.(Model)
		if m.panel.Range() != tc.want {
			t.Errorf("key %q: range = %s, want %s", tc.key, m.panel.Range(), tc.want)
		}
	}
	p, _ := prefs.Load()
	if p.Range != "hour" {
		t.Errorf("stored range = %q", p.Range)
	}
}

func TestScrubKeys(t *testing.T) {
	m, _, _ := newModel(t, 10)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(Model)
	if m.panel.Cursor() != 8 {
		t.Errorf("cursor after left = %d", m.panel.Cursor())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyHome})
	m = next.(Model)
	if m.panel.Cursor() != 0 {
		t.Errorf("cursor after home = %d", m.panel.Cursor())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	end := next.(Model)
	if end.panel.Cursor() != 9 {
		t.Errorf("cursor after end = %d", end.panel.Cursor())
	}
}

func TestUpdateHighlight(t *testing.T) {
	m, hub, _ := newModel(t, 2)

	u, ok := hub.Ingest(reading.NewPayload(reading.Sample{Time: time.Now(), Temperature: 25, Humidity: 40}))
	if !ok {
		t.Fatal("ingest failed")
	}

	next, cmd := m.Update(updateMsg(u))
	m = next.(Model)
	if !m.flashing || cmd == nil {
		t.Fatal("update should start the highlight")
	}
	if m.latest.Sample.Temperature != 25 || m.panel.Series().Len() != 3 {
		t.Errorf("latest=%v series=%d", m.latest.Sample.Temperature, m.panel.Series().Len())
	}

	next, _ = m.Update(flashDoneMsg{seq: m.flashSeq - 1})
	if !next.(Model).flashing {
		t.Error("stale flash timer must not clear a newer highlight")
	}
	next, _ = m.Update(flashDoneMsg{seq: m.flashSeq})
	if next.(Model).flashing {
		t.Error("highlight should clear")
	}
}

func TestViewShowsStatusAndValues(t *testing.T) {
	m, hub, _ := newModel(t, 3)
	hub.OnConnectivity(true)

	next, _ := m.Update(statusMsg(hub.Status()))
	out := next.(Model).View()

	for _, want := range []string{"CLIMADASH", "Connected to sensors", "TEMPERATURE", "HUMIDITY", "21.2°C", "50%", "History"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewWaitingForData(t *testing.T) {
	m, _, _ := newModel(t, 0)
	if !strings.Contains(m.View(), "Waiting for sensor data...") {
		t.Error("empty hub should show the waiting message")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t, 0)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
