package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TxReward   = "reward"
	TxRecharge = "recharge"
	TxPurchase = "purchase"
	TxIncome   = "income"
	TxWithdraw = "withdraw"
	TxSell     = "sell"
)

// Transaction statuses. Settled entries (income, purchase, sale, reward)
// carry no status; withdraw and recharge start pending and are resolved by
// an admin review.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusRejected  = "rejected"
	TxStatusFailed    = "failed"
)

// Transaction is a single ledger entry. Rows are immutable once written,
// except Status (pending -> completed/rejected/failed) and a rejection
// annotation appended to Description.
type Transaction struct {
	ID          string  `gorm:"primaryKey;size:32" json:"id"`
	UserPhone   string  `gorm:"size:20;not null;index:idx_tx_user_created" json:"-"`
	Type        string  `gorm:"size:16;not null;index" json:"type"`
	Description string  `gorm:"type:text" json:"description"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Status      string  `gorm:"size:16;index" json:"status,omitempty"`

	// Fee is recorded for display only; the full Amount is always the
	// balance delta.
	Fee       float64 `json:"fee,omitempty"`
	PromoCode string  `gorm:"size:20" json:"promo_code,omitempty"`

	// HoldingID links income entries to the product instance that earned them.
	HoldingID *uuid.UUID `gorm:"type:uuid;index" json:"holding_id,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_tx_user_created" json:"created_at"`
}

// Holding is one owned unit of a catalog product. It is created on purchase
// and deleted on sale; once past the product's validity window it stays in
// place but earns nothing.
type Holding struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserPhone   string    `gorm:"size:20;not null;index" json:"-"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
}
