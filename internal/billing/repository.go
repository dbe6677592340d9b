package billing

import (
	"context"

	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

// Repository persists point-of-sale transactions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateSale inserts the sale header.
func (r *Repository) CreateSale(ctx context.Context, sale *models.LocalSale) (*models.LocalSale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// CreateSaleItems inserts the frozen sale lines.
func (r *Repository) CreateSaleItems(ctx context.Context, items []models.LocalSaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// SalesPage is one admin page of sales.
type SalesPage struct {
	Sales      []models.LocalSale
	NextCursor string
}

// ListSales returns sales newest first with cursor pagination.
func (r *Repository) ListSales(ctx context.Context, params pagination.Params) (*SalesPage, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.LocalSale{}).
		Preload("Items").
		Preload("Items.Product").
		Preload("Staff")
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var sales []models.LocalSale
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&sales).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(sales) > pageSize {
		sales = sales[:pageSize]
		last := sales[len(sales)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &SalesPage{Sales: sales, NextCursor: nextCursor}, nil
}
