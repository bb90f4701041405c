package ingestion

import (
	"math"
	"testing"
)

func TestParsePriceBand_ValidRanges(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"plain hyphen", "100-110", 9.523809523809524},
		{"symmetric band", "95-105", 10.0},
		{"padded tokens", " 100 - 110 ", 9.523809523809524},
		{"en-dash separator", "100–110", 9.523809523809524},
		{"mis-decoded en-dash", "100â€“110", 9.523809523809524},
		{"decimal limits", "98.5-101.5", 3.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParsePriceBand(c.in)
			if math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("ParsePriceBand(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestParsePriceBand_MalformedReturnsZero(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"100",
		"abc-def",
		"100-",
		"-110",
		"1-2-3",
		"No Band",
		"0-0", // zero midpoint
	}
	for _, in := range cases {
		if got := ParsePriceBand(in); got != 0.0 {
			t.Fatalf("ParsePriceBand(%q) = %v, want 0.0", in, got)
		}
	}
}
