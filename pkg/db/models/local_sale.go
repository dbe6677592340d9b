package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/altezzai/storefront-backend/pkg/enums"
)

// LocalSale records an in-person point-of-sale transaction. Amounts are
// till-entered decimals; the billing engine trusts them as supplied.
type LocalSale struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StaffID     uuid.UUID         `gorm:"column:staff_id;type:uuid;not null"`
	PaymentMode enums.PaymentMode `gorm:"column:payment_mode;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Discount    *decimal.Decimal  `gorm:"column:discount;type:numeric(12,2)"`
	Staff       *Staff            `gorm:"foreignKey:StaffID"`
	Items       []LocalSaleItem   `gorm:"foreignKey:LocalSaleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
