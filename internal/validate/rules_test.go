package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTemperature(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "Lower bound", input: "-15", expected: true},
		{name: "Upper bound", input: "35", expected: true},
		{name: "Decimal inside range", input: "12.5", expected: true},
		{name: "Padded", input: "  0 ", expected: true},
		{name: "Just below lower bound", input: "-15.1", expected: false},
		{name: "Just above upper bound", input: "35.1", expected: false},
		{name: "Non numeric", input: "warm", expected: false},
		{name: "Empty", input: "", expected: false},
		{name: "NaN", input: "NaN", expected: false},
		{name: "Infinity", input: "Inf", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidTemperature(tc.input))
		})
	}
}

func TestFieldRules(t *testing.T) {
	testCases := []struct {
		name     string
		rule     func(string) bool
		input    string
		expected bool
	}{
		{"Terminal digits", IsValidTerminalID, "401", true},
		{"Terminal letters", IsValidTerminalID, "40A", false},
		{"Terminal blank", IsValidTerminalID, "   ", false},
		{"Receiver digits", IsValidReceiverID, " 77 ", true},
		{"Receiver negative", IsValidReceiverID, "-7", false},
		{"Trailer alphanumeric", IsValidTrailerNumber, "TR401252", true},
		{"Trailer with dash", IsValidTrailerNumber, "TR-401", false},
		{"Trailer empty", IsValidTrailerNumber, "", false},
		{"PRO ten digits", IsValidProNumber, "1234567890", true},
		{"PRO nine digits", IsValidProNumber, "123456789", false},
		{"PRO eleven digits", IsValidProNumber, "12345678901", false},
		{"PRO letters", IsValidProNumber, "12345A7890", false},
		{"Pallet count min", IsValidPalletCount, "1", true},
		{"Pallet count max", IsValidPalletCount, "999", true},
		{"Pallet count zero", IsValidPalletCount, "0", false},
		{"Pallet count too large", IsValidPalletCount, "1000", false},
		{"Pallet count decimal", IsValidPalletCount, "2.5", false},
		{"Height max", IsValidPalletHeight, "999", true},
		{"Height negative", IsValidPalletHeight, "-1", false},
		{"Quantity max", IsValidQuantity, "9999", true},
		{"Quantity too large", IsValidQuantity, "10000", false},
		{"Custom reason three chars", IsValidCustomReason, " wet ", true},
		{"Custom reason too short", IsValidCustomReason, "ab ", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.rule(tc.input))
		})
	}
}

func TestStripTemperatureUnit(t *testing.T) {
	testCases := map[string]string{
		"35":     "35",
		"35°F":   "35",
		"-10 °F": "-10",
		"12.5F":  "12.5",
		"4f":     "4",
		" -3° ":  "-3",
		"":       "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, StripTemperatureUnit(in), in)
	}
}

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "35F", FormatTemperatureForExport("35"))
	assert.Equal(t, "-10F", FormatTemperatureForExport("-10°F"))
	assert.Equal(t, "-10F", FormatTemperatureForExport("-10°"))
	assert.Equal(t, "", FormatTemperatureForExport("  "))
	assert.Equal(t, "-15°F to 35°F", TemperatureRange())
	assert.Equal(t, "Temperature must be between -15°F and 35°F", TemperatureMessage)
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, 42, ParseIntOr(" 42 ", 0))
	assert.Equal(t, 7, ParseIntOr("abc", 7))
	assert.Equal(t, 7, ParseIntOr("", 7))
}
