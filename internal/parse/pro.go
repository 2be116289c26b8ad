package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var proRe = regexp.MustCompile(`^(\d{3})(\d{7})$`)

// ParsedPro holds the two reporting halves of a PRO number.
type ParsedPro struct {
	Incoming string
	Prefix   string
	Erb      string
}

// ParsePro splits a 10 digit PRO number into its 3 digit prefix and 7 digit
// "Erb" suffix. Any other shape is an error; nothing is truncated.
func ParsePro(raw string) (ParsedPro, error) {
	s := strings.TrimSpace(raw)
	m := proRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedPro{}, fmt.Errorf("unable to parse PRO number: %q", raw)
	}
	return ParsedPro{Incoming: s, Prefix: m[1], Erb: m[2]}, nil
}

// ExtractProPrefix returns the first 3 digits of a valid PRO number, or "" when
// the input is not exactly 10 digits.
func ExtractProPrefix(pro string) string {
	p, err := ParsePro(pro)
	if err != nil {
		return ""
	}
	return p.Prefix
}

// ExtractProErb returns the last 7 digits of a valid PRO number, or "" when the
// input is not exactly 10 digits.
func ExtractProErb(pro string) string {
	p, err := ParsePro(pro)
	if err != nil {
		return ""
	}
	return p.Erb
}
