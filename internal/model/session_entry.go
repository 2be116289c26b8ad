package model

import "time"

// SessionEntry is one durable key of the operator session.
type SessionEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:128"`
	Value     string    `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
