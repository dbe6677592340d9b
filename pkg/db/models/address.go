package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Address is a live address-book entry. Orders copy its fields into a
// snapshot string at checkout instead of referencing it for display.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	House     string    `gorm:"column:house;not null"`
	Street    string    `gorm:"column:street;not null"`
	City      string    `gorm:"column:city;not null"`
	Pincode   string    `gorm:"column:pincode;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Snapshot renders the human-readable form frozen onto orders.
func (a Address) Snapshot() string {
	return fmt.Sprintf("%s, %s, %s, %s - %s", a.Name, a.House, a.Street, a.City, a.Pincode)
}
