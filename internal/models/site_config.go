package models

import "time"

// SiteConfig stores site-wide configuration as typed key/value rows:
// withdrawal window, payment receiver wallet, banners, customer-service
// links and free-text content blocks.
type SiteConfig struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Type      string    `gorm:"size:20;default:'string'" json:"type"` // string, bool, int, json
	UpdatedAt time.Time `json:"updated_at"`
}

// PromoCode grants a percentage bonus on recharge approval. RemainingUses
// decrements atomically on each redemption; a code at zero is exhausted.
type PromoCode struct {
	Code          string    `gorm:"primaryKey;size:20" json:"code"`
	BonusPercent  float64   `gorm:"not null" json:"bonus_percent"`
	RemainingUses int       `gorm:"not null;default:0" json:"remaining_uses"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
