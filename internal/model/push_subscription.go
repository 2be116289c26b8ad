package model

import "time"

// PushSubscription is a browser that wants to hear when a trailer export is ready.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Terminal  string    `gorm:"size:32;index"`
	CreatedAt time.Time `gorm:"not null"`
}
