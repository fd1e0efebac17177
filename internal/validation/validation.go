// Package validation holds the field checks applied to candidate answers.
// Every function is pure and safe for concurrent use.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15

	minNameLength = 2

	minExperienceYears = 0
	maxExperienceYears = 50
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-()+.]`)
	namePattern      = regexp.MustCompile(`^[a-zA-Z\s.\-']+$`)
	numberPattern    = regexp.MustCompile(`\d+\.?\d*`)
	unsafeCharacters = regexp.MustCompile(`[<>"']`)
)

// Email reports whether s looks like local@domain.tld once trimmed.
func Email(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

// Phone reports whether s is a 7 to 15 digit number after common separators
// (spaces, hyphens, parentheses, dots and plus signs) are removed.
func Phone(s string) bool {
	if s == "" {
		return false
	}

	cleaned := phoneSeparators.ReplaceAllString(s, "")
	if len(cleaned) < minPhoneDigits || len(cleaned) > maxPhoneDigits {
		return false
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Name reports whether s is at least two characters long after whitespace
// collapsing and contains only letters, spaces, periods, hyphens and
// apostrophes.
func Name(s string) bool {
	cleaned := collapseSpaces(s)
	if len([]rune(cleaned)) < minNameLength {
		return false
	}
	return namePattern.MatchString(cleaned)
}

// Experience reports whether the first number found in s is a plausible
// number of years.
func Experience(s string) bool {
	years, ok := ExperienceYears(s)
	if !ok {
		return false
	}
	return years >= minExperienceYears && years <= maxExperienceYears
}

// ExperienceYears extracts the first decimal number from s.
func ExperienceYears(s string) (float64, bool) {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0, false
	}

	years, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return 0, false
	}
	return years, true
}

// Sanitize drops angle brackets and quotes and normalizes whitespace.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return collapseSpaces(unsafeCharacters.ReplaceAllString(s, ""))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
