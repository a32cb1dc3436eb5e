package recurrence

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		raw    string
		want   Pattern
		wantOK bool
	}{
		{name: "daily", raw: `{"frequency":"daily","interval":1}`, want: Pattern{Daily, 1}, wantOK: true},
		{name: "weekly", raw: `{"frequency":"weekly","interval":2}`, want: Pattern{Weekly, 2}, wantOK: true},
		{name: "monthly upper bound", raw: `{"frequency":"monthly","interval":365}`, want: Pattern{Monthly, 365}, wantOK: true},
		{name: "integral float", raw: `{"frequency":"daily","interval":3.0}`, want: Pattern{Daily, 3}, wantOK: true},
		{name: "extra fields ignored", raw: `{"frequency":"daily","interval":1,"byDay":["MO"]}`, want: Pattern{Daily, 1}, wantOK: true},
		{name: "missing interval", raw: `{"frequency":"daily"}`},
		{name: "missing frequency", raw: `{"interval":1}`},
		{name: "interval zero", raw: `{"frequency":"daily","interval":0}`},
		{name: "interval above range", raw: `{"frequency":"daily","interval":366}`},
		{name: "negative interval", raw: `{"frequency":"weekly","interval":-1}`},
		{name: "fractional interval", raw: `{"frequency":"daily","interval":1.5}`},
		{name: "string interval", raw: `{"frequency":"daily","interval":"2"}`},
		{name: "yearly unsupported", raw: `{"frequency":"yearly","interval":1}`},
		{name: "frequency wrong type", raw: `{"frequency":7,"interval":1}`},
		{name: "frequency wrong case", raw: `{"frequency":"Daily","interval":1}`},
		{name: "array", raw: `[1,2]`},
		{name: "null", raw: `null`},
		{name: "malformed", raw: `{"frequency":`},
		{name: "empty", raw: ``},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(json.RawMessage(tc.raw))
			if ok != tc.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
			if ok && !got.Valid() {
				t.Errorf("parsed pattern %+v reports invalid", got)
			}
		})
	}
}

func TestParseValueRejectsNonObjects(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, "daily", 1.0, []any{"daily", 1.0}} {
		if _, ok := ParseValue(v); ok {
			t.Errorf("Expected %#v to be rejected", v)
		}
	}
	if p, ok := ParseValue(map[string]any{"frequency": "weekly", "interval": json.Number("4")}); !ok || p.Interval != 4 {
		t.Errorf("Expected json.Number interval to parse, got %+v ok=%v", p, ok)
	}
}

func TestNextDueDate(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.FixedZone("EST", -5*60*60)
	}

	testCases := []struct {
		name     string
		previous time.Time
		pattern  Pattern
		expected time.Time
	}{
		{
			name:     "one week keeps time of day",
			previous: time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC),
			pattern:  Pattern{Weekly, 1},
			expected: time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "three days",
			previous: time.Date(2026, 2, 27, 8, 30, 0, 0, time.UTC),
			pattern:  Pattern{Daily, 3},
			expected: time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "daily across year end",
			previous: time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC),
			pattern:  Pattern{Daily, 1},
			expected: time.Date(2027, 1, 1, 23, 59, 0, 0, time.UTC),
		},
		{
			name:     "monthly mid month",
			previous: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
			pattern:  Pattern{Monthly, 1},
			expected: time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "month overflow in common year",
			previous: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
			pattern:  Pattern{Monthly, 1},
			expected: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "month overflow in leap year",
			previous: time.Date(2028, 1, 31, 9, 0, 0, 0, time.UTC),
			pattern:  Pattern{Monthly, 1},
			expected: time.Date(2028, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "twelve months",
			previous: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
			pattern:  Pattern{Monthly, 12},
			expected: time.Date(2027, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly keeps wall clock across DST",
			previous: time.Date(2026, 3, 2, 9, 0, 0, 0, ny),
			pattern:  Pattern{Weekly, 1},
			expected: time.Date(2026, 3, 9, 9, 0, 0, 0, ny),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NextDueDate(tc.previous, tc.pattern)
			if !got.Equal(tc.expected) {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
