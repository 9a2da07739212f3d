package models

import "time"

// Product is a catalog entry shared across all users. SoldCount is the one
// piece of globally shared mutable state; it is only ever changed through
// guarded atomic updates so that 0 <= sold_count <= total_quantity holds.
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CategoryID  int64  `gorm:"not null;index" json:"category_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Price       float64 `gorm:"not null" json:"price"`
	DailyIncome float64 `gorm:"not null" json:"daily_income"`
	// Validity is the number of days after purchase during which a holding
	// earns income.
	Validity int `gorm:"not null" json:"validity"`

	TotalQuantity int `gorm:"not null" json:"total_quantity"`
	SoldCount     int `gorm:"not null;default:0" json:"sold_count"`
	// PurchaseLimit caps concurrent holdings per user; 0 means unlimited.
	PurchaseLimit int `gorm:"not null;default:0" json:"purchase_limit"`

	IconURL   string    `gorm:"type:text" json:"icon_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalIncome is the headline figure shown on product cards.
func (p *Product) TotalIncome() float64 {
	return p.DailyIncome * float64(p.Validity)
}

type ProductCategory struct {
	ID      int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	IconURL string `gorm:"type:text" json:"icon_url"`
}
