package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Bounds for numeric fields. Temperatures are Fahrenheit.
const (
	TempMin = -15
	TempMax = 35

	MaxPalletCount  = 999
	MaxPalletHeight = 999
	MaxQuantity     = 9999

	ProLength       = 10
	ProPrefixLength = 3

	MinCustomReasonLength = 3
)

var (
	digitsRe   = regexp.MustCompile(`^\d+$`)
	trailerRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	proRe      = regexp.MustCompile(`^\d{10}$`)
	unitRe     = regexp.MustCompile(`(?i)\s*°?\s*F?\s*$`)
)

// Error messages shown to the operator when a field is rejected.
var (
	TerminalIDMessage   = "Terminal ID must be numeric"
	ReceiverIDMessage   = "Receiver ID must be numeric"
	TrailerMessage      = "Trailer number must be letters and digits only"
	ProNumberMessage    = fmt.Sprintf("PRO number must be exactly %d digits", ProLength)
	TemperatureMessage  = fmt.Sprintf("Temperature must be between %d°F and %d°F", TempMin, TempMax)
	PalletCountMessage  = "Pallet count must be a positive number (1-999)"
	PalletHeightMessage = "Pallet height must be a positive number (1-999 inches)"
	QuantityMessage     = "Quantity must be a positive number (1-9999)"
	CustomReasonMessage = fmt.Sprintf("Reason must be at least %d characters", MinCustomReasonLength)
)

// IsValidTerminalID reports whether input is a non-empty string of digits.
func IsValidTerminalID(input string) bool {
	return digitsRe.MatchString(strings.TrimSpace(input))
}

// IsValidReceiverID reports whether input is a non-empty string of digits.
func IsValidReceiverID(input string) bool {
	return digitsRe.MatchString(strings.TrimSpace(input))
}

// IsValidTrailerNumber reports whether input is non-empty and alphanumeric.
func IsValidTrailerNumber(input string) bool {
	return trailerRe.MatchString(strings.TrimSpace(input))
}

// IsValidProNumber reports whether input is exactly ten digits.
func IsValidProNumber(input string) bool {
	return proRe.MatchString(strings.TrimSpace(input))
}

// IsValidPalletCount accepts integers in 1..999.
func IsValidPalletCount(input string) bool {
	return inRange(input, 1, MaxPalletCount)
}

// IsValidPalletHeight accepts integers in 1..999 (inches).
func IsValidPalletHeight(input string) bool {
	return inRange(input, 1, MaxPalletHeight)
}

// IsValidQuantity accepts integers in 1..9999.
func IsValidQuantity(input string) bool {
	return inRange(input, 1, MaxQuantity)
}

// IsValidTemperature accepts decimal values in [-15, 35] inclusive.
func IsValidTemperature(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= TempMin && v <= TempMax
}

// IsValidCustomReason requires at least three characters after trimming.
func IsValidCustomReason(input string) bool {
	return len([]rune(strings.TrimSpace(input))) >= MinCustomReasonLength
}

func inRange(input string, lo, hi int) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}

// TemperatureRange is the human readable accepted range.
func TemperatureRange() string {
	return fmt.Sprintf("%d°F to %d°F", TempMin, TempMax)
}

// FormatTemperatureForExport renders "35" as "35F". Blank input stays blank.
func FormatTemperatureForExport(temp string) string {
	v := StripTemperatureUnit(temp)
	if v == "" {
		return ""
	}
	return v + "F"
}

// StripTemperatureUnit removes a trailing "°F", "°" or "F" the keypad or an
// earlier format may have appended, leaving the bare number text.
func StripTemperatureUnit(temp string) string {
	s := strings.TrimSpace(temp)
	return strings.TrimSpace(unitRe.ReplaceAllString(s, ""))
}

// ParseIntOr parses input as an int, returning def when it is blank or malformed.
func ParseIntOr(input string, def int) int {
	s := strings.TrimSpace(input)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
