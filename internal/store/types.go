package store

import "errors"

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// HeaderUpdate carries the PRO header fields rewritten on every saved pallet of
// a (trailer, PRO) pair when the operator continues that PRO.
type HeaderUpdate struct {
	Trailer         string
	Pro             string
	ExpectedPallets int
	FreightType     string
	Temp1           string
	Temp2           *string
}

// ProSummary is one line of the trailer summary.
type ProSummary struct {
	ProNumber       string `json:"pro_number"`
	PalletCount     int    `json:"pallet_count"`
	ExpectedPallets int    `json:"expected_pallets"`
	FirstSeen       string `json:"first_seen"`
}
