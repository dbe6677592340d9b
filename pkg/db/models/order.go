package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/altezzai/storefront-backend/pkg/enums"
)

// Order is created once per successful checkout. Address and phone are
// denormalized snapshots taken at checkout time so later address edits or
// deletions never corrupt order history.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'PLACED'"`
	TotalCents      int               `gorm:"column:total_cents;not null"`
	AddressID       uuid.UUID         `gorm:"column:address_id;type:uuid;not null"`
	Address         string            `gorm:"column:address;not null"`
	Phone           string            `gorm:"column:phone;not null"`
	DeliveryStaffID *uuid.UUID        `gorm:"column:delivery_staff_id;type:uuid"`
	DeliveryStaff   *Staff            `gorm:"foreignKey:DeliveryStaffID"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
