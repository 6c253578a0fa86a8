package utils

import (
	"strings"
)

// MatchOption resolves a user's choice against a fixed, ordered option set.
// Matching order: exact label, case-insensitive label, then alias table.
// Returns the canonical label and whether a match was found.
func MatchOption(input string, options []string, aliases map[string]string) (string, bool) {
	for _, option := range options {
		if input == option {
			return option, true
		}
	}

	inputLower := normalizeChoice(input)
	if inputLower == "" {
		return "", false
	}

	for _, option := range options {
		if normalizeChoice(option) == inputLower {
			return option, true
		}
	}

	// Alias targets must still be members of the option set
	if target, ok := aliases[inputLower]; ok {
		for _, option := range options {
			if option == target {
				return option, true
			}
		}
	}

	return "", false
}

// normalizeChoice lowercases and collapses inner whitespace
func normalizeChoice(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
