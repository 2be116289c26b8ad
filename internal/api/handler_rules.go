package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/validate"
	"pallet-cubing-backend/internal/workflow"
)

type bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type rulesResponse struct {
	ProLength       int               `json:"pro_length"`
	Temperature     bounds            `json:"temperature"`
	TemperatureText string            `json:"temperature_range"`
	PalletCount     bounds            `json:"pallet_count"`
	PalletHeight    bounds            `json:"pallet_height"`
	Quantity        bounds            `json:"quantity"`
	MinReasonLength int               `json:"min_custom_reason_length"`
	FreightTypes    []string          `json:"freight_types"`
	Conditions      []string          `json:"conditions"`
	Reasons         []string          `json:"reasons"`
	QuantityTypes   []string          `json:"quantity_types"`
	Messages        map[string]string `json:"messages"`
}

// GetRules returns the input rules so the UI can validate before submitting.
func GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, rulesResponse{
		ProLength:       validate.ProLength,
		Temperature:     bounds{Min: validate.TempMin, Max: validate.TempMax},
		TemperatureText: validate.TemperatureRange(),
		PalletCount:     bounds{Min: 1, Max: validate.MaxPalletCount},
		PalletHeight:    bounds{Min: 1, Max: validate.MaxPalletHeight},
		Quantity:        bounds{Min: 1, Max: validate.MaxQuantity},
		MinReasonLength: validate.MinCustomReasonLength,
		FreightTypes: []string{
			string(model.FreightFresh),
			string(model.FreightFrozen),
			string(model.FreightDual),
		},
		Conditions:    []string{model.ConditionOK, model.ConditionOSD},
		Reasons:       workflow.Reasons,
		QuantityTypes: workflow.QuantityTypes,
		Messages: map[string]string{
			"terminal_id":      validate.TerminalIDMessage,
			"receiver_id":      validate.ReceiverIDMessage,
			"trailer":          validate.TrailerMessage,
			"pro":              validate.ProNumberMessage,
			"temperature":      validate.TemperatureMessage,
			"expected_pallets": validate.PalletCountMessage,
			"height":           validate.PalletHeightMessage,
			"quantity":         validate.QuantityMessage,
			"custom_reason":    validate.CustomReasonMessage,
		},
	})
}
