package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearOnlyRegex  = regexp.MustCompile(`^\s*(\d{4})\s*$`)
	monthYearRegex = regexp.MustCompile(`^\s*([A-Za-z]+)\s+(\d{4})\s*$`)
	anyYearRegex   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// ParseDateInput understands "1975" (year only), "June 1975" (date and year).
// Any other text is kept as the date with a 19xx/20xx year picked from it when present.
func ParseDateInput(input string) (date *string, year *int) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if m := yearOnlyRegex.FindStringSubmatch(input); m != nil {
		y, _ := strconv.Atoi(m[1])
		return nil, &y
	}
	if m := monthYearRegex.FindStringSubmatch(input); m != nil {
		y, _ := strconv.Atoi(m[2])
		d := m[1] + " " + m[2]
		return &d, &y
	}
	d := input
	if m := anyYearRegex.FindString(input); m != "" {
		y, _ := strconv.Atoi(m)
		return &d, &y
	}
	return &d, nil
}
