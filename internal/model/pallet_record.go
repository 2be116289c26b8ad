package model

import "time"

// Values stored in PalletRecord.Condition.
const (
	ConditionOK  = "OK"
	ConditionOSD = "OS&D"
)

// Default PalletRecord.Status for freshly captured rows.
const StatusNew = "NEW"

// TimestampLayout is the layout of PalletRecord.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// FreightType classifies the PRO's freight temperature regime.
type FreightType string

const (
	FreightFresh  FreightType = "Fresh"
	FreightFrozen FreightType = "Frozen"
	FreightDual   FreightType = "Dual"
)

// Valid reports whether f is one of the known freight types.
func (f FreightType) Valid() bool {
	switch f {
	case FreightFresh, FreightFrozen, FreightDual:
		return true
	}
	return false
}

// PalletRecord is one cubed pallet. (TrailerNumber, ProNumberIncoming,
// PalletSequence) is unique.
type PalletRecord struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	Timestamp         string    `gorm:"size:19;not null" json:"timestamp"`
	Terminal          string    `gorm:"size:32;not null" json:"terminal"`
	Receiver          string    `gorm:"size:32;not null" json:"receiver"`
	TrailerNumber     string    `gorm:"size:64;not null;index;uniqueIndex:idx_trailer_pro_seq,priority:1" json:"trailer_number"`
	ProNumberIncoming string    `gorm:"size:10;not null;uniqueIndex:idx_trailer_pro_seq,priority:2" json:"pro_number_incoming"`
	ProPrefix         string    `gorm:"size:3;not null" json:"pro_prefix"`
	ProNumberErb      string    `gorm:"size:7;not null" json:"pro_number_erb"`
	FreightType       string    `gorm:"size:16;not null" json:"freight_type"`
	Temp1             string    `gorm:"size:16;not null" json:"temp1"`
	Temp2             *string   `gorm:"size:16" json:"temp2"`
	ExpectedPallets   int       `gorm:"not null" json:"expected_pallets"`
	PalletSequence    int       `gorm:"not null;uniqueIndex:idx_trailer_pro_seq,priority:3" json:"pallet_sequence"`
	PalletHeight      int       `gorm:"not null" json:"pallet_height"`
	Condition         string    `gorm:"size:8;not null" json:"condition"`
	OsdReason         *string   `gorm:"column:osd_reason;size:256" json:"osd_reason"`
	OsdQuantity       *int      `gorm:"column:osd_quantity" json:"osd_quantity"`
	OsdQuantityType   *string   `gorm:"column:osd_quantity_type;size:16" json:"osd_quantity_type"`
	Status            string    `gorm:"size:16;not null;default:NEW" json:"status"`
	CreatedAt         time.Time `json:"-"`
}

// TableName keeps the historical table name.
func (PalletRecord) TableName() string {
	return "cubing_data"
}
