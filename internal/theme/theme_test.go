package theme

import "testing"

func TestResolve(t *testing.T) {
	orig := hasDarkBackground
	t.Cleanup(func() { hasDarkBackground = orig })

	tests := []struct {
		stored string
		dark   bool
		want   Mode
	}{
		{"dark", false, Dark},
		{"light", true, Light},
		{"", true, Dark},
		{"", false, Light},
		{"purple", true, Dark},
	}
	for _, tt := range tests {
		dark := tt.dark
		hasDarkBackground = func() bool { return dark }
		if got := Resolve(tt.stored); got != tt.want {
			t.Errorf("Resolve(%q) with dark=%v = %s, want %s", tt.stored, tt.dark, got, tt.want)
		}
	}
}

func TestParseIgnoresCase(t *testing.T) {
	for in, want := range map[string]Mode{"Dark": Dark, " LIGHT ": Light, "dark": Dark} {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Errorf("Parse(%q) = %s, %v, want %s, true", in, got, ok, want)
		}
	}
	if _, ok := Parse("sepia"); ok {
		t.Error("Parse should reject unknown modes")
	}

	orig := hasDarkBackground
	t.Cleanup(func() { hasDarkBackground = orig })
	hasDarkBackground = func() bool { return false }
	if got := Resolve("Dark"); got != Dark {
		t.Errorf("Resolve(%q) = %s, want dark", "Dark", got)
	}
}

func TestToggle(t *testing.T) {
	if Light.Toggle() != Dark || Dark.Toggle() != Light {
		t.Error("Toggle should flip between light and dark")
	}
}

func TestFor(t *testing.T) {
	if For(Dark).Mode != Dark || For(Light).Mode != Light {
		t.Error("For returned the wrong palette")
	}
	if For(Dark).Temperature != "#3B82F6" || For(Light).Humidity != "#14B8A6" {
		t.Error("series colours should be shared by both palettes")
	}
	if For(Dark).Text == For(Light).Text {
		t.Error("text colour should differ between palettes")
	}
}
