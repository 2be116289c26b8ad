package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"pallet-cubing-backend/internal/store"
	"pallet-cubing-backend/internal/workflow"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	workflow *workflow.Controller
	subs     store.SubscriptionStore
	webpush  *webpush.Options
}

// NewHandler creates a new API handler. webpushOptions may be nil when push
// is not configured.
func NewHandler(wf *workflow.Controller, subs store.SubscriptionStore, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		workflow: wf,
		subs:     subs,
		webpush:  webpushOptions,
	}
}
