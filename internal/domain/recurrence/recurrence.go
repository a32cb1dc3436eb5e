// Package recurrence interprets stored recurrence patterns and computes the
// next occurrence of a repeating task. It performs no I/O.
package recurrence

import (
	"encoding/json"
	"math"
	"time"
)

// Frequency is the unit a recurrence repeats in.
type Frequency string

// Supported frequencies.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Interval bounds.
const (
	MinInterval = 1
	MaxInterval = 365
)

// Pattern is a validated recurrence rule: every Interval units of Frequency.
type Pattern struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
}

// Parse decodes a stored JSON pattern. It returns false for anything that is
// not an object with a supported frequency and an integral interval in
// [MinInterval, MaxInterval]. An invalid pattern means "do not generate" and
// is never an error.
func Parse(raw json.RawMessage) (Pattern, bool) {
	if len(raw) == 0 {
		return Pattern{}, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Pattern{}, false
	}
	return ParseValue(v)
}

// ParseValue validates an already decoded pattern value, typically a
// map[string]any produced by encoding/json.
func ParseValue(v any) (Pattern, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Pattern{}, false
	}

	freq, ok := obj["frequency"].(string)
	if !ok {
		return Pattern{}, false
	}
	switch Frequency(freq) {
	case Daily, Weekly, Monthly:
	default:
		return Pattern{}, false
	}

	interval, ok := integral(obj["interval"])
	if !ok || interval < MinInterval || interval > MaxInterval {
		return Pattern{}, false
	}

	return Pattern{Frequency: Frequency(freq), Interval: interval}, true
}

func integral(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return n, true
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Valid reports whether p would be accepted by Parse.
func (p Pattern) Valid() bool {
	switch p.Frequency {
	case Daily, Weekly, Monthly:
	default:
		return false
	}
	return p.Interval >= MinInterval && p.Interval <= MaxInterval
}

// NextDueDate adds exactly one step of p to previous, keeping the time of day
// and location. Month steps follow time.AddDate normalisation, so Jan 31 plus
// one month lands on Mar 3 (Mar 2 in leap years).
func NextDueDate(previous time.Time, p Pattern) time.Time {
	switch p.Frequency {
	case Daily:
		return previous.AddDate(0, 0, p.Interval)
	case Weekly:
		return previous.AddDate(0, 0, 7*p.Interval)
	case Monthly:
		return previous.AddDate(0, p.Interval, 0)
	default:
		return previous
	}
}
