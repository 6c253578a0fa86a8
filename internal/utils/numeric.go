package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingDecimalPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	digitRunPattern       = regexp.MustCompile(`\d+`)
)

// ParseLeadingDecimal parses the longest decimal prefix of s after leading
// whitespace ("1450", "1450.50/month", " -3e2"). Anything without a numeric
// prefix yields NaN; no bounds checking is applied.
func ParseLeadingDecimal(s string) float64 {
	trimmed := strings.TrimLeft(s, " \t\n\r\v\f")

	for _, inf := range []struct {
		prefix string
		value  float64
	}{
		{"Infinity", math.Inf(1)},
		{"+Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	} {
		if strings.HasPrefix(trimmed, inf.prefix) {
			return inf.value
		}
	}

	match := leadingDecimalPattern.FindString(trimmed)
	if match == "" {
		return math.NaN()
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// out-of-range exponents come back as ±Inf with ErrRange
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return value
		}
		return math.NaN()
	}
	return value
}

// FirstDigitRun returns the integer value of the first run of ASCII digits
// in s, or 0 when s has no digits or the run does not fit in an int.
func FirstDigitRun(s string) int {
	match := digitRunPattern.FindString(s)
	if match == "" {
		return 0
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return value
}
