package toon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nanSentinel is what the firmware reports for a register that does not apply.
const nanSentinel = "NaN"

// Reading is a numeric device value. The firmware sends numbers either as JSON
// numbers or as strings, and uses the string "NaN" for "not applicable".
type Reading struct {
	value float64
	nan   bool
}

// NewReading returns a numeric reading.
func NewReading(v float64) Reading { return Reading{value: v} }

// NaNReading returns the not-applicable sentinel.
func NaNReading() Reading { return Reading{nan: true} }

// IsNaN reports whether the reading is the sentinel.
func (r Reading) IsNaN() bool { return r.nan }

// Float64 returns the numeric value, or math.NaN for the sentinel.
func (r Reading) Float64() float64 {
	if r.nan {
		return math.NaN()
	}
	return r.value
}

func (r *Reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("empty reading")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, nanSentinel) {
			*r = NaNReading()
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("reading %q is not numeric", s)
		}
		*r = NewReading(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("reading %s is not numeric", string(b))
	}
	*r = NewReading(f)
	return nil
}

// stateCode is the thermostat activeState. It parses like a lenient integer
// prefix parse, so "1", 1 and "2 " all decode, and garbage decodes to unknown.
type stateCode struct {
	code  int
	known bool
}

func (c *stateCode) UnmarshalJSON(b []byte) error {
	*c = stateCode{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = s
	}
	if n, ok := parseIntPrefix(raw); ok {
		*c = stateCode{code: n, known: true}
	}
	return nil
}

// parseIntPrefix reads an optional sign followed by decimal digits, ignoring
// leading whitespace and anything after the digits.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
