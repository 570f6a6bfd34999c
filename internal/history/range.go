package history

import "time"

// Range is a symbolic query window.
type Range string

const (
	RangeHour Range = "hour"
	RangeDay  Range = "day"
	RangeWeek Range = "week"
)

// Ranges lists the selectable ranges in display order.
var Ranges = []Range{RangeHour, RangeDay, RangeWeek}

// ParseRange maps an identifier to a Range. Unknown identifiers fall back
// to RangeHour.
func ParseRange(s string) Range {
	switch r := Range(s); r {
	case RangeHour, RangeDay, RangeWeek:
		return r
	default:
		return RangeHour
	}
}

// Window returns how far back the range reaches.
func (r Range) Window() time.Duration {
	switch r {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// TickUnit is the timeline granularity used when plotting the range.
func (r Range) TickUnit() time.Duration {
	switch r {
	case RangeDay:
		return time.Hour
	case RangeWeek:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// Label returns a short human-readable name.
func (r Range) Label() string {
	switch r {
	case RangeDay:
		return "24 hours"
	case RangeWeek:
		return "7 days"
	default:
		return "1 hour"
	}
}
