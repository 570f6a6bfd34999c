package feed

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
)

// DefaultIIORoot is where the kernel exposes industrial I/O devices.
const DefaultIIORoot = "/sys/bus/iio/devices"

// ErrNoDevice is returned when no IIO device reports both temperature and
// relative humidity.
var ErrNoDevice = errors.New("no iio humidity sensor found")

// modelMap maps IIO driver names to the sensor family they serve.
var modelMap = []struct {
	prefix string
	name   string
}{
	{"dht11", "DHT11/DHT22"},
	{"am2315", "AM2315"},
	{"sht3", "SHT3x"},
	{"sht4", "SHT4x"},
	{"shtc", "SHTC1/SHTC3"},
	{"htu21", "HTU21"},
	{"si70", "Si70xx"},
	{"hdc1", "HDC100x"},
	{"hdc2", "HDC2010"},
	{"hts221", "HTS221"},
	{"bme280", "BME280"},
	{"bme680", "BME680"},
}

// Model returns a human-readable sensor family for an IIO driver name.
func Model(driver string) string {
	lower := strings.ToLower(driver)
	for _, entry := range modelMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.name
		}
	}
	return "IIO sensor"
}

// Device is one IIO device directory with humidity and temperature channels.
type Device struct {
	Dir    string
	Driver string
}

// Model is the friendly sensor family of the device.
func (d Device) Model() string { return Model(d.Driver) }

// Read returns the current temperature (°C) and relative humidity (%).
func (d Device) Read() (temp, hum float64, err error) {
	temp, err = readChannel(d.Dir, "in_temp")
	if err != nil {
		return 0, 0, err
	}
	hum, err = readChannel(d.Dir, "in_humidityrelative")
	if err != nil {
		return 0, 0, err
	}
	return temp, hum, nil
}

// Discover lists devices under root that expose both channels.
func Discover(root string) ([]Device, error) {
	matches, err := filepath.Glob(filepath.Join(root, "iio:device*"))
	if err != nil {
		return nil, errors.Wrap(err, "scan iio devices")
	}

	var devices []Device
	for _, dir := range matches {
		if !hasChannel(dir, "in_temp") || !hasChannel(dir, "in_humidityrelative") {
			continue
		}
		name, _ := readString(filepath.Join(dir, "name"))
		devices = append(devices, Device{Dir: dir, Driver: name})
	}
	return devices, nil
}

func hasChannel(dir, channel string) bool {
	for _, suffix := range []string{"_input", "_raw"} {
		if _, err := os.Stat(filepath.Join(dir, channel+suffix)); err == nil {
			return true
		}
	}
	return false
}

// readChannel returns a processed channel value. The IIO ABI reports
// temperature in milli-°C and relative humidity in milli-percent, either
// directly in _input or as (_raw + _offset) * _scale.
func readChannel(dir, channel string) (float64, error) {
	if v, err := readFloat(filepath.Join(dir, channel+"_input")); err == nil {
		return v / 1000.0, nil
	}

	raw, err := readFloat(filepath.Join(dir, channel+"_raw"))
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", channel)
	}
	scale, err := readFloat(filepath.Join(dir, channel+"_scale"))
	if err != nil {
		scale = 1
	}
	offset, err := readFloat(filepath.Join(dir, channel+"_offset"))
	if err != nil {
		offset = 0
	}
	return (raw + offset) * scale / 1000.0, nil
}

func readFloat(path string) (float64, error) {
	s, err := readString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func readString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// IIOSource polls the first humidity sensor found under a sysfs root.
type IIOSource struct {
	root     string
	interval time.Duration
	now      func() time.Time
}

// NewIIOSource creates a source polling root every interval. An empty root
// means DefaultIIORoot.
func NewIIOSource(root string, interval time.Duration) *IIOSource {
	if root == "" {
		root = DefaultIIORoot
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &IIOSource{root: root, interval: interval, now: time.Now}
}

// Poll reads one sample from the first device found.
func (s *IIOSource) Poll() (reading.Sample, error) {
	devices, err := Discover(s.root)
	if err != nil {
		return reading.Sample{}, err
	}
	if len(devices) == 0 {
		return reading.Sample{}, ErrNoDevice
	}
	temp, hum, err := devices[0].Read()
	if err != nil {
		return reading.Sample{}, errors.Wrapf(err, "read %s", devices[0].Model())
	}
	return reading.Sample{Time: s.now(), Temperature: temp, Humidity: hum}, nil
}

// Run polls until ctx is cancelled. Connectivity is reported on the first
// poll and whenever it flips; errors are reported once per outage.
func (s *IIOSource) Run(ctx context.Context, h Handler) error {
	log := logger.Component("feed.iio").WithField("root", s.root)

	var known, connected bool
	poll := func() {
		sample, err := s.Poll()
		if err != nil {
			if !known || connected {
				log.WithError(err).Warn("sensor unavailable")
				h.OnConnectivity(false)
				h.OnError(err)
			}
			known, connected = true, false
			return
		}
		if !known || !connected {
			log.Info("sensor available")
			h.OnConnectivity(true)
		}
		known, connected = true, true
		h.OnPayload(reading.NewPayload(sample))
	}

	poll()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}
