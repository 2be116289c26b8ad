package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pallet-cubing-backend/internal/model"
)

func TestProHeaderInput_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		in        ProHeaderInput
		wantField string
	}{
		{name: "fresh", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Fresh", Temp1: "34"}},
		{name: "dual", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Dual", Temp1: "34", Temp2: "-15"}},
		{name: "unit suffix", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Frozen", Temp1: "-2.5°F"}},
		{name: "short PRO", in: ProHeaderInput{Pro: "123456789", ExpectedPallets: "3", FreightType: "Fresh", Temp1: "34"}, wantField: "pro"},
		{name: "zero pallets", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "0", FreightType: "Fresh", Temp1: "34"}, wantField: "expected_pallets"},
		{name: "unknown freight", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Dry", Temp1: "34"}, wantField: "freight_type"},
		{name: "too warm", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Fresh", Temp1: "35.1"}, wantField: "temp1"},
		{name: "dual without temp2", in: ProHeaderInput{Pro: "1234567890", ExpectedPallets: "3", FreightType: "Dual", Temp1: "20"}, wantField: "temp2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := tc.in.validate()
			if tc.wantField != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, h.expected)
			assert.Equal(t, h.freight == model.FreightDual, h.temp2 != nil)
		})
	}
}

func TestProHeaderInput_FreshIgnoresTemp2(t *testing.T) {
	h, err := ProHeaderInput{Pro: "1234567890", ExpectedPallets: "1", FreightType: "Fresh", Temp1: "1", Temp2: "99"}.validate()
	require.NoError(t, err)
	assert.Nil(t, h.temp2)
	assert.NotContains(t, h.payload(), "temp2")
}

func TestPalletInput_Validate(t *testing.T) {
	testCases := []struct {
		name       string
		in         PalletInput
		wantField  string
		wantReason string
	}{
		{name: "ok pallet", in: PalletInput{Height: "60", Condition: "OK"}},
		{name: "ok ignores osd fields", in: PalletInput{Height: "60", Condition: "OK", Reason: "bogus", Quantity: "x"}},
		{name: "osd damaged", in: PalletInput{Height: "60", Condition: "OS&D", Reason: ReasonDamaged, Quantity: "2", QuantityType: QuantityPallets}, wantReason: "Damaged"},
		{name: "osd other", in: PalletInput{Height: "60", Condition: "OS&D", Reason: ReasonOther, CustomReason: " Crushed ", Quantity: "2", QuantityType: QuantityCases}, wantReason: "Other: Crushed"},
		{name: "height too tall", in: PalletInput{Height: "1000", Condition: "OK"}, wantField: "height"},
		{name: "no condition", in: PalletInput{Height: "60"}, wantField: "condition"},
		{name: "no reason", in: PalletInput{Height: "60", Condition: "OS&D"}, wantField: "reason"},
		{name: "short custom reason", in: PalletInput{Height: "60", Condition: "OS&D", Reason: ReasonOther, CustomReason: "ab"}, wantField: "custom_reason"},
		{name: "zero quantity", in: PalletInput{Height: "60", Condition: "OS&D", Reason: ReasonShort, Quantity: "0", QuantityType: QuantityCases}, wantField: "quantity"},
		{name: "no quantity type", in: PalletInput{Height: "60", Condition: "OS&D", Reason: ReasonOver, Quantity: "1"}, wantField: "quantity_type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := tc.in.validate()
			if tc.wantField != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 60, d.height)
			if tc.wantReason == "" {
				assert.Nil(t, d.reason)
				assert.Nil(t, d.quantity)
				assert.Nil(t, d.quantityType)
				return
			}
			require.NotNil(t, d.reason)
			assert.Equal(t, tc.wantReason, *d.reason)
			assert.Equal(t, 2, *d.quantity)
		})
	}
}

func TestParseScreen(t *testing.T) {
	s, ok := ParseScreen("pallet_detail")
	assert.True(t, ok)
	assert.Equal(t, ScreenPalletDetail, s)

	s, ok = ParseScreen("PalletDetailActivity")
	assert.False(t, ok)
	assert.Equal(t, ScreenTrailer, s)
}
