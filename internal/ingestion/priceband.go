package ingestion

import (
	"strconv"
	"strings"
)

// Dash separators accepted in price-range strings. Source files usually
// carry a plain hyphen, but some exports contain an en-dash, or the
// three-byte garble left behind when an en-dash's UTF-8 bytes were decoded
// as Latin-1.
var dashVariants = []string{
	"–",             // en-dash
	"â€“", // en-dash bytes E2 80 93 mis-decoded as Windows-1252
}

// ParsePriceBand converts a raw "lower-upper" price-range string into the
// width of the band relative to its midpoint, as a percentage.
//
// The function is total: empty input, a wrong token count, non-numeric
// limits, or a zero midpoint all yield 0.0. It never returns an error, so
// a malformed range can never abort a batch.
func ParsePriceBand(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0.0
	}

	for _, d := range dashVariants {
		s = strings.ReplaceAll(s, d, "-")
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0.0
	}

	lower, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0.0
	}
	upper, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0.0
	}

	mid := (lower + upper) / 2
	if mid == 0 {
		return 0.0
	}
	return (upper - lower) / mid * 100
}
