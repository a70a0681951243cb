package util

import (
	"math"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{0, "00:00:00.000"},
		{20.5, "00:00:20.500"},
		{83.25, "00:01:23.250"},
		{3723.004, "01:02:03.004"},
	}
	for _, tc := range cases {
		if got := FormatSeconds(tc.sec); got != tc.want {
			t.Errorf("FormatSeconds(%.3f) = %q, want %q", tc.sec, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45.5", 45.5},
		{"1:23", 83},
		{"01:02:03.5", 3723.5},
		{"  20.5  ", 20.5},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %.3f, want %.3f", tc.in, got, tc.want)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "1:xx"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q) accepted invalid input", in)
		}
	}
}
