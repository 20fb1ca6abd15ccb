// Package timeutil normalizes the heterogeneous time representations the
// EduMaster API is known to send into whole seconds, and renders seconds
// for display. The magnitude-based guessing in ParseServerTime is a
// best-effort compatibility shim for legacy responses, not a precise
// contract; callers should prefer the explicit remaining-time shapes first.
package timeutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when a string value does not look like a
// colon-delimited duration.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseServerTime converts a server-supplied time value into whole seconds.
// Accepted forms:
//   - "HH:MM:SS" or "MM:SS" duration strings
//   - ISO-like date strings, interpreted as an absolute deadline (seconds
//     until then, relative to now — may be negative)
//   - numeric strings
//   - raw numbers, disambiguated by magnitude: > 86400000 is milliseconds,
//     <= 86400 is seconds, anything between is minutes
//
// Absent or unparseable input falls back to defaultMinutes * 60.
func ParseServerTime(value interface{}, defaultMinutes int) int {
	return parseServerTimeAt(value, defaultMinutes, time.Now())
}

func parseServerTimeAt(value interface{}, defaultMinutes int, now time.Time) int {
	fallback := defaultMinutes * 60

	switch v := value.(type) {
	case nil:
		return fallback

	case string:
		if v == "" {
			return fallback
		}
		if strings.Contains(v, ":") {
			if secs, ok := parseClockString(v); ok {
				return secs
			}
			// Colon-bearing but not a plain duration — may be an ISO instant.
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return int(math.Floor(t.Sub(now).Seconds()))
			}
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f)
		}
		return fallback

	case json.Number:
		if f, err := v.Float64(); err == nil {
			return parseNumeric(f, fallback)
		}
		return fallback

	case float64:
		return parseNumeric(v, fallback)
	case float32:
		return parseNumeric(float64(v), fallback)
	case int:
		return parseNumeric(float64(v), fallback)
	case int64:
		return parseNumeric(float64(v), fallback)

	default:
		return fallback
	}
}

// parseClockString handles "HH:MM:SS" and "MM:SS".
func parseClockString(v string) (int, bool) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, false
		}
		nums[i] = n
	}
	if len(nums) == 3 {
		return nums[0]*3600 + nums[1]*60 + nums[2], true
	}
	return nums[0]*60 + nums[1], true
}

// parseNumeric applies the magnitude heuristic to a bare number.
func parseNumeric(v float64, fallback int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	switch {
	case v > 86400000: // likely milliseconds
		return int(math.Floor(v / 1000))
	case v <= 86400: // plausible as seconds
		return int(v)
	default: // assume minutes
		return int(v * 60)
	}
}

// FormatTimeForDisplay renders seconds as zero-padded "MM:SS".
// Negative or non-numeric input renders as "00:00".
func FormatTimeForDisplay(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// IsValidTime reports whether value is a usable non-negative time number.
func IsValidTime(value float64) bool {
	return !math.IsNaN(value) && value >= 0
}
