package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/altezzai/storefront-backend/pkg/enums"
)

// Product is the canonical catalog listing. Stock is only ever mutated by
// the inventory ledger inside a transaction, never written directly.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	PriceCents      int             `gorm:"column:price_cents;not null"`
	OfferPriceCents *int            `gorm:"column:offer_price_cents"`
	Stock           int             `gorm:"column:stock;not null;default:0"`
	StockUnit       enums.StockUnit `gorm:"column:stock_unit;not null;default:'PIECE'"`
	Trash           bool            `gorm:"column:trash;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents resolves the sell price: offer price when present,
// list price otherwise.
func (p Product) EffectivePriceCents() int {
	if p.OfferPriceCents != nil {
		return *p.OfferPriceCents
	}
	return p.PriceCents
}
