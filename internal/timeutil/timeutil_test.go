package timeutil

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParseServerTimeClockStrings(t *testing.T) {
	if got := ParseServerTime("01:02:03", 60); got != 3723 {
		t.Errorf("ParseServerTime(01:02:03) = %d, want 3723", got)
	}
	if got := ParseServerTime("02:30", 60); got != 150 {
		t.Errorf("ParseServerTime(02:30) = %d, want 150", got)
	}
}

func TestParseServerTimeFallback(t *testing.T) {
	if got := ParseServerTime(nil, 45); got != 2700 {
		t.Errorf("ParseServerTime(nil, 45) = %d, want 2700", got)
	}
	if got := ParseServerTime("garbage", 30); got != 1800 {
		t.Errorf("ParseServerTime(garbage, 30) = %d, want 1800", got)
	}
	if got := ParseServerTime("", 10); got != 600 {
		t.Errorf("ParseServerTime(empty, 10) = %d, want 600", got)
	}
	if got := ParseServerTime(math.NaN(), 5); got != 300 {
		t.Errorf("ParseServerTime(NaN, 5) = %d, want 300", got)
	}
}

func TestParseServerTimeDeadlineString(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(90 * time.Second).Format(time.RFC3339)

	if got := parseServerTimeAt(deadline, 60, now); got != 90 {
		t.Errorf("parseServerTimeAt(%s) = %d, want 90", deadline, got)
	}

	past := now.Add(-30 * time.Second).Format(time.RFC3339)
	if got := parseServerTimeAt(past, 60, now); got != -30 {
		t.Errorf("parseServerTimeAt(%s) = %d, want -30", past, got)
	}
}

func TestParseServerTimeNumericHeuristic(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{float64(1800), 1800},           // plain seconds
		{float64(86400), 86400},         // boundary: still seconds
		{float64(90000), 90000 * 60},    // between: treated as minutes
		{float64(90000000), 90000},      // large: milliseconds
		{json.Number("3600"), 3600},     // numeric via json.Number
		{"120", 120},                    // numeric string
		{int(600), 600},                 // plain int
	}
	for _, c := range cases {
		if got := ParseServerTime(c.in, 60); got != c.want {
			t.Errorf("ParseServerTime(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatTimeForDisplay(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{125, "02:05"},
		{-5, "00:00"},
		{math.NaN(), "00:00"},
		{0, "00:00"},
		{59, "00:59"},
		{3600, "60:00"},
	}
	for _, c := range cases {
		if got := FormatTimeForDisplay(c.in); got != c.want {
			t.Errorf("FormatTimeForDisplay(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsValidTime(t *testing.T) {
	if !IsValidTime(0) || !IsValidTime(120) {
		t.Error("expected non-negative numbers to be valid")
	}
	if IsValidTime(-1) || IsValidTime(math.NaN()) {
		t.Error("expected negative and NaN to be invalid")
	}
}
