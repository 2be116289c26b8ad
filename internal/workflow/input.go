package workflow

import (
	"slices"
	"strconv"
	"strings"

	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/validate"
)

// OS&D reasons offered on the pallet screen.
const (
	ReasonDamaged   = "Damaged"
	ReasonShort     = "Short"
	ReasonOver      = "Over"
	ReasonMisloaded = "Misloaded"
	ReasonOther     = "Other"
)

// OS&D quantity units.
const (
	QuantityCases   = "Cases"
	QuantityPallets = "Pallets"
)

// Reasons lists the OS&D reasons in display order.
var Reasons = []string{ReasonDamaged, ReasonShort, ReasonOver, ReasonMisloaded, ReasonOther}

// QuantityTypes lists the OS&D quantity units in display order.
var QuantityTypes = []string{QuantityCases, QuantityPallets}

// ProHeaderInput is the raw PRO header form.
type ProHeaderInput struct {
	Pro             string `json:"pro"`
	ExpectedPallets string `json:"expected_pallets"`
	FreightType     string `json:"freight_type"`
	Temp1           string `json:"temp1"`
	Temp2           string `json:"temp2"`
}

type proHeader struct {
	pro      string
	expected int
	freight  model.FreightType
	temp1    string
	temp2    *string
}

func (h proHeader) payload() map[string]string {
	p := map[string]string{
		"pro":             h.pro,
		"expectedPallets": strconv.Itoa(h.expected),
		"freightType":     string(h.freight),
		"temp1":           h.temp1,
	}
	if h.temp2 != nil {
		p["temp2"] = *h.temp2
	}
	return p
}

func (in ProHeaderInput) validate() (proHeader, error) {
	var h proHeader

	if !validate.IsValidProNumber(in.Pro) {
		return h, &ValidationError{Field: "pro", Message: validate.ProNumberMessage}
	}
	h.pro = strings.TrimSpace(in.Pro)

	if !validate.IsValidPalletCount(in.ExpectedPallets) {
		return h, &ValidationError{Field: "expected_pallets", Message: validate.PalletCountMessage}
	}
	h.expected = validate.ParseIntOr(in.ExpectedPallets, 0)

	h.freight = model.FreightType(strings.TrimSpace(in.FreightType))
	if !h.freight.Valid() {
		return h, &ValidationError{Field: "freight_type", Message: "Select Fresh, Frozen or Dual"}
	}

	h.temp1 = validate.StripTemperatureUnit(in.Temp1)
	if !validate.IsValidTemperature(h.temp1) {
		return h, &ValidationError{Field: "temp1", Message: validate.TemperatureMessage}
	}

	if h.freight == model.FreightDual {
		t2 := validate.StripTemperatureUnit(in.Temp2)
		if !validate.IsValidTemperature(t2) {
			return h, &ValidationError{Field: "temp2", Message: validate.TemperatureMessage}
		}
		h.temp2 = &t2
	}
	return h, nil
}

// PalletInput is the raw pallet detail form. Sequence is the pallet number
// the form was shown for; zero skips the staleness check.
type PalletInput struct {
	Sequence     int    `json:"sequence"`
	Height       string `json:"height"`
	Condition    string `json:"condition"`
	Reason       string `json:"reason"`
	CustomReason string `json:"custom_reason"`
	Quantity     string `json:"quantity"`
	QuantityType string `json:"quantity_type"`
}

type palletDetail struct {
	height       int
	condition    string
	reason       *string
	quantity     *int
	quantityType *string
}

func (in PalletInput) validate() (palletDetail, error) {
	var d palletDetail

	if !validate.IsValidPalletHeight(in.Height) {
		return d, &ValidationError{Field: "height", Message: validate.PalletHeightMessage}
	}
	d.height = validate.ParseIntOr(in.Height, 0)

	switch strings.TrimSpace(in.Condition) {
	case model.ConditionOK:
		d.condition = model.ConditionOK
		return d, nil
	case model.ConditionOSD:
		d.condition = model.ConditionOSD
	default:
		return d, &ValidationError{Field: "condition", Message: "Select OK or OS&D"}
	}

	reason := strings.TrimSpace(in.Reason)
	if !slices.Contains(Reasons, reason) {
		return d, &ValidationError{Field: "reason", Message: "Select an OS&D reason"}
	}
	if reason == ReasonOther {
		if !validate.IsValidCustomReason(in.CustomReason) {
			return d, &ValidationError{Field: "custom_reason", Message: validate.CustomReasonMessage}
		}
		reason = ReasonOther + ": " + strings.TrimSpace(in.CustomReason)
	}
	d.reason = &reason

	if !validate.IsValidQuantity(in.Quantity) {
		return d, &ValidationError{Field: "quantity", Message: validate.QuantityMessage}
	}
	qty := validate.ParseIntOr(in.Quantity, 0)
	d.quantity = &qty

	qtyType := strings.TrimSpace(in.QuantityType)
	if !slices.Contains(QuantityTypes, qtyType) {
		return d, &ValidationError{Field: "quantity_type", Message: "Select Cases or Pallets"}
	}
	d.quantityType = &qtyType
	return d, nil
}
