package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "climadash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxPoints)
	assert.Equal(t, 672, cfg.DemoMaxPoints)
	assert.Equal(t, 3*time.Second, cfg.DemoTimeout)
	assert.Equal(t, 10*time.Second, cfg.DemoInterval)
	assert.Equal(t, time.Minute, cfg.DemoStep)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Empty(t, cfg.FeedURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
feed_url: ws://bridge.local:9000/readings
max_points: 250
demo_timeout: 5s
theme: dark
log:
  level: debug
  file: /tmp/climadash.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://bridge.local:9000/readings", cfg.FeedURL)
	assert.Equal(t, 250, cfg.MaxPoints)
	assert.Equal(t, 5*time.Second, cfg.DemoTimeout)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/climadash.log", cfg.Log.File)
	// untouched keys keep their defaults
	assert.Equal(t, 672, cfg.DemoMaxPoints)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadFileFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, writeFile(t, "listen: 127.0.0.1:9090\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "max_points: 250\ndemo_interval: 30s\n")
	t.Setenv("CLIMADASH_MAX_POINTS", "50")
	t.Setenv("CLIMADASH_DEMO_INTERVAL", "2s")
	t.Setenv("CLIMADASH_THEME", "light")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxPoints)
	assert.Equal(t, 2*time.Second, cfg.DemoInterval)
	assert.Equal(t, "light", cfg.Theme)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	tests := []struct {
		name string
		path func(t *testing.T) string
		env  map[string]string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }, nil},
		{"bad yaml", func(t *testing.T) string { return writeFile(t, "max_points: [1, 2\n") }, nil},
		{"bad duration", nil, map[string]string{"CLIMADASH_DEMO_TIMEOUT": "soon"}},
		{"zero capacity", nil, map[string]string{"CLIMADASH_MAX_POINTS": "0"}},
		{"bad theme", nil, map[string]string{"CLIMADASH_THEME": "sepia"}},
		{"http feed", nil, map[string]string{"CLIMADASH_FEED_URL": "http://bridge.local"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.path != nil {
				path = tt.path(t)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.DemoStep = 0
	assert.ErrorContains(t, cfg.Validate(), "demo_step")

	// the first invalid duration is always the one reported
	cfg.DemoTimeout = 0
	cfg.IIOInterval = -time.Second
	for i := 0; i < 20; i++ {
		assert.ErrorContains(t, cfg.Validate(), "iio_interval")
	}
}

func TestThemeIsLowerCased(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("CLIMADASH_THEME", " Dark")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
}
