package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message shown on the notifications screen.
// Read flags flip in bulk when the screen is opened.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserPhone string    `gorm:"size:20;not null;index:idx_notif_user_created" json:"-"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index:idx_notif_user_created" json:"created_at"`
}
