package model

import "time"

// PushSubscription holds a browser push subscription for deck error alerts.
// Alerts are deck-wide, so there is no per-nest mapping.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
