package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

// Repository persists stock log rows.
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

// CreateStockLog appends an audit row.
func (r *Repository) CreateStockLog(ctx context.Context, log *models.StockLog) (*models.StockLog, error) {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// StockLogPage is one page of the admin audit feed.
type StockLogPage struct {
	Logs       []models.StockLog
	NextCursor string
}

// ListStockLogs returns stock log rows newest first with cursor pagination.
func (r *Repository) ListStockLogs(ctx context.Context, params pagination.Params) (*StockLogPage, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.StockLog{}).
		Preload("Product").
		Preload("Staff")
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var logs []models.StockLog
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&logs).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(logs) > pageSize {
		logs = logs[:pageSize]
		last := logs[len(logs)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &StockLogPage{Logs: logs, NextCursor: nextCursor}, nil
}
