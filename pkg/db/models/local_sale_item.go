package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalSaleItem snapshots one line of an in-person sale. PriceAtSale is
// the price the cashier charged, frozen at sale time.
type LocalSaleItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LocalSaleID uuid.UUID       `gorm:"column:local_sale_id;type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	PriceAtSale decimal.Decimal `gorm:"column:price_at_sale;type:numeric(12,2);not null"`
	Product     *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
