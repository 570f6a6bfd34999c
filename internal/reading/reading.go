// Package reading defines the temperature/humidity sample and the inbound
// payload shape pushed by the real-time feed.
package reading

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Sample is a single temperature/humidity reading.
type Sample struct {
	Time        time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %RH
}

// Payload is the object pushed by a feed. Only these three fields are read;
// anything else in the JSON document is ignored.
type Payload struct {
	Temperature *float64 `json:"temperature" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	Timestamp   *string  `json:"timestamp" validate:"required"`
}

var validate = validator.New()

// timestamp layouts accepted in Payload.Timestamp, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Decode parses a JSON payload. A JSON null (or empty input) yields a nil
// payload and no error.
func Decode(data []byte) (*Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var p *Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return p, nil
}

// Sample converts the payload into a Sample. It fails when a field is
// missing or the timestamp cannot be parsed.
func (p *Payload) Sample() (Sample, error) {
	if p == nil {
		return Sample{}, errors.New("nil payload")
	}
	if err := validate.Struct(p); err != nil {
		return Sample{}, errors.Wrap(err, "incomplete payload")
	}
	ts, err := ParseTime(*p.Timestamp)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Time:        ts,
		Temperature: *p.Temperature,
		Humidity:    *p.Humidity,
	}, nil
}

// ParseTime parses an ISO-8601 timestamp. Timestamps without a zone are
// read as local time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for i, layout := range layouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid timestamp %q", s)
}

// NewPayload builds the wire form of a sample, as a producer would push it.
func NewPayload(s Sample) *Payload {
	temp, hum := s.Temperature, s.Humidity
	ts := s.Time.Format(time.RFC3339Nano)
	return &Payload{
		Temperature: &temp,
		Humidity:    &hum,
		Timestamp:   &ts,
	}
}
