package workflow

import (
	"pallet-cubing-backend/internal/export"
	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/session"
	"pallet-cubing-backend/internal/store"
)

// View tells the UI which screen to show and what to put on it.
type View struct {
	Screen   Screen              `json:"screen"`
	UserInfo string              `json:"user_info,omitempty"`
	Fields   session.WorkContext `json:"fields"`
	Progress *Progress           `json:"progress,omitempty"`
	Summary  *SummaryView        `json:"summary,omitempty"`
	Saved    *model.PalletRecord `json:"saved,omitempty"`
}

// Progress is the "PALLET i of n" banner of the pallet screen.
type Progress struct {
	Pallet int `json:"pallet"`
	Of     int `json:"of"`
}

// SummaryView is the completion screen of a trailer.
type SummaryView struct {
	Trailer      string             `json:"trailer"`
	Pros         []store.ProSummary `json:"pros"`
	TotalPros    int                `json:"total_pros"`
	TotalPallets int                `json:"total_pallets"`
	Truncated    bool               `json:"truncated"`
	HasExported  bool               `json:"has_exported"`
	LastExport   *export.Job        `json:"last_export,omitempty"`
}
