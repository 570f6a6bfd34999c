// Package config loads climadash settings from defaults, an optional YAML
// file, a .env file and CLIMADASH_* environment variables, in that order.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/luki/climadash/internal/logger"
)

// EnvConfigPath names the variable pointing at a YAML config file.
const EnvConfigPath = "CLIMADASH_CONFIG"

type Config struct {
	// FeedURL is a websocket bridge. When empty the IIO sensors are polled.
	FeedURL     string        `yaml:"feed_url"`
	IIODir      string        `yaml:"iio_dir"`
	IIOInterval time.Duration `yaml:"iio_interval"`

	Listen string `yaml:"listen"`

	MaxPoints     int           `yaml:"max_points"`
	DemoMaxPoints int           `yaml:"demo_max_points"`
	DemoTimeout   time.Duration `yaml:"demo_timeout"` // no connection after this -> demo mode
	DemoInterval  time.Duration `yaml:"demo_interval"`
	DemoStep      time.Duration `yaml:"demo_step"` // simulated time per demo tick

	Theme   string `yaml:"theme"`
	DataDir string `yaml:"data_dir"`

	Log logger.Config `yaml:"log"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		IIODir:        "/sys/bus/iio/devices",
		IIOInterval:   10 * time.Second,
		Listen:        ":8080",
		MaxPoints:     100,
		DemoMaxPoints: 672,
		DemoTimeout:   3 * time.Second,
		DemoInterval:  10 * time.Second,
		DemoStep:      time.Minute,
		Log: logger.Config{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// CLIMADASH_CONFIG is consulted; a missing file at an explicit path is an
// error, no file at all is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Component("config").WithError(err).Warn("ignoring unreadable .env")
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	c.FeedURL = getenvDefault("CLIMADASH_FEED_URL", c.FeedURL)
	c.IIODir = getenvDefault("CLIMADASH_IIO_DIR", c.IIODir)
	c.Listen = getenvDefault("CLIMADASH_LISTEN", c.Listen)
	c.Theme = getenvDefault("CLIMADASH_THEME", c.Theme)
	c.DataDir = getenvDefault("CLIMADASH_DATA_DIR", c.DataDir)
	c.Log.Level = getenvDefault("CLIMADASH_LOG_LEVEL", c.Log.Level)
	c.Log.File = getenvDefault("CLIMADASH_LOG_FILE", c.Log.File)

	c.MaxPoints = getenvInt("CLIMADASH_MAX_POINTS", c.MaxPoints)
	c.DemoMaxPoints = getenvInt("CLIMADASH_DEMO_MAX_POINTS", c.DemoMaxPoints)

	if c.IIOInterval, err = getenvDuration("CLIMADASH_IIO_INTERVAL", c.IIOInterval); err != nil {
		return err
	}
	if c.DemoTimeout, err = getenvDuration("CLIMADASH_DEMO_TIMEOUT", c.DemoTimeout); err != nil {
		return err
	}
	if c.DemoInterval, err = getenvDuration("CLIMADASH_DEMO_INTERVAL", c.DemoInterval); err != nil {
		return err
	}
	if c.DemoStep, err = getenvDuration("CLIMADASH_DEMO_STEP", c.DemoStep); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	if c.MaxPoints <= 0 {
		return errors.Errorf("max_points must be positive, got %d", c.MaxPoints)
	}
	if c.DemoMaxPoints <= 0 {
		return errors.Errorf("demo_max_points must be positive, got %d", c.DemoMaxPoints)
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"iio_interval", c.IIOInterval},
		{"demo_timeout", c.DemoTimeout},
		{"demo_interval", c.DemoInterval},
		{"demo_step", c.DemoStep},
	} {
		if d.val <= 0 {
			return errors.Errorf("%s must be positive, got %v", d.name, d.val)
		}
	}
	switch c.Theme {
	case "", "light", "dark":
	default:
		return errors.Errorf("theme must be light or dark, got %q", c.Theme)
	}
	if c.FeedURL != "" && !strings.HasPrefix(c.FeedURL, "ws://") && !strings.HasPrefix(c.FeedURL, "wss://") {
		return errors.Errorf("feed_url must be a ws:// or wss:// URL, got %q", c.FeedURL)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
