package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is owned by exactly one of a registered user or an anonymous guest
// token; the migration enforces the either-or with a CHECK constraint.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid"`
	GuestToken *string    `gorm:"column:guest_token"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
