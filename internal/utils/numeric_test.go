package utils

import (
	"math"
	"testing"
)

func TestParseLeadingDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "Integer", input: "1450", want: 1450},
		{name: "Decimal", input: "1450.75", want: 1450.75},
		{name: "Leading whitespace", input: "  2100", want: 2100},
		{name: "Trailing text", input: "1800/month", want: 1800},
		{name: "Leading dot", input: ".5", want: 0.5},
		{name: "Negative", input: "-20", want: -20},
		{name: "Exponent", input: "1.2e3", want: 1200},
		{name: "Trailing dot", input: "12.", want: 12},
		{name: "Infinity", input: "Infinity", want: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLeadingDecimal(tt.input)
			if got != tt.want {
				t.Errorf("ParseLeadingDecimal(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLeadingDecimal_NaN(t *testing.T) {
	for _, input := range []string{"abc", "", "   ", "$1450", "e10", "."} {
		if got := ParseLeadingDecimal(input); !math.IsNaN(got) {
			t.Errorf("ParseLeadingDecimal(%q) = %v, want NaN", input, got)
		}
	}
}

func TestFirstDigitRun(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "2 bed", want: 2},
		{input: "5 bed or more", want: 5},
		{input: "3 or more", want: 3},
		{input: "1 bath", want: 1},
		{input: "bed 12 or 3", want: 12},
		{input: "Studio", want: 0},
		{input: "", want: 0},
		{input: "99999999999999999999999", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FirstDigitRun(tt.input); got != tt.want {
				t.Errorf("FirstDigitRun(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
