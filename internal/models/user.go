package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is keyed by phone number; the invite code is the secondary unique handle
// used by the referral system.
type User struct {
	Phone      string `gorm:"primaryKey;size:20" json:"phone"`
	Password   string `gorm:"not null" json:"-"`
	Email      string `gorm:"size:255" json:"email,omitempty"`
	InviteCode string `gorm:"size:12;not null;uniqueIndex" json:"invite_code"`
	Role       string `gorm:"size:20;default:'user'" json:"role"`

	Balance      float64 `gorm:"not null;default:0" json:"balance"`
	TotalRevenue float64 `gorm:"not null;default:0" json:"total_revenue"`

	// LastLogin anchors income accrual: every accrual pass advances it,
	// whether or not income was earned.
	LastLogin   time.Time  `json:"last_login"`
	LastCheckIn *time.Time `json:"last_check_in,omitempty"`

	Referrer     *string `gorm:"size:20;index" json:"referrer,omitempty"`
	TeamBonusLv1 float64 `gorm:"not null;default:0" json:"team_bonus_lv1"`
	TeamBonusLv2 float64 `gorm:"not null;default:0" json:"team_bonus_lv2"`
	TeamBonusLv3 float64 `gorm:"not null;default:0" json:"team_bonus_lv3"`

	// CommissionRates, when set, overrides the default referral rates for
	// bonuses paid TO this user. Shape: {"lv1":0.35,"lv2":0.02,"lv3":0.01}.
	CommissionRates datatypes.JSON `gorm:"type:jsonb" json:"-"`

	WalletType   string `gorm:"size:30" json:"wallet_type,omitempty"`
	WalletOwner  string `gorm:"size:100" json:"wallet_owner,omitempty"`
	WalletNumber string `gorm:"size:30" json:"wallet_number,omitempty"`

	// SHA-256 hex of the withdrawal password; empty means not set yet.
	WithdrawalPassword string `gorm:"size:64" json:"-"`

	TwoFactorEnabled bool   `gorm:"default:false" json:"two_factor_enabled"`
	TwoFactorSecret  string `gorm:"size:32" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommissionRateOverride decodes the per-user rate override for the given
// level (1..3). Returns false when no override is configured for that level.
func (u *User) CommissionRateOverride(level int) (float64, bool) {
	if len(u.CommissionRates) == 0 {
		return 0, false
	}
	var rates struct {
		Lv1 *float64 `json:"lv1"`
		Lv2 *float64 `json:"lv2"`
		Lv3 *float64 `json:"lv3"`
	}
	if err := json.Unmarshal(u.CommissionRates, &rates); err != nil {
		return 0, false
	}
	var r *float64
	switch level {
	case 1:
		r = rates.Lv1
	case 2:
		r = rates.Lv2
	case 3:
		r = rates.Lv3
	}
	if r == nil {
		return 0, false
	}
	return *r, true
}

// WalletLinked reports whether a withdrawal wallet has been linked.
// Linking is allowed exactly once per user.
func (u *User) WalletLinked() bool {
	return u.WalletNumber != ""
}

// TeamMember is one append-only edge of the referral tree: member_phone sits
// `level` hops below referrer_phone.
type TeamMember struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ReferrerPhone string    `gorm:"size:20;not null;index:idx_team_referrer_level" json:"referrer_phone"`
	MemberPhone   string    `gorm:"size:20;not null" json:"member_phone"`
	Level         int       `gorm:"not null;index:idx_team_referrer_level" json:"level"`
	CreatedAt     time.Time `json:"created_at"`
}
