package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLog is an append-only audit row written in the same transaction as
// every stock increase. Counter and log must never diverge.
type StockLog struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	StaffID   uuid.UUID `gorm:"column:staff_id;type:uuid;not null"`
	OldStock  int       `gorm:"column:old_stock;not null"`
	AddedQty  int       `gorm:"column:added_qty;not null"`
	NewStock  int       `gorm:"column:new_stock;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Staff     *Staff    `gorm:"foreignKey:StaffID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
