package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
)

// LowStockThreshold is the stock level below which a product is flagged
// for restocking.
const LowStockThreshold = 10

// Repository exposes catalog reads used by the cart, checkout, billing
// and inventory services.
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

// FindByID loads a non-trashed product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ? AND trash = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAllForInventory lists non-trashed products by name for restock review.
func (r *Repository) FindAllForInventory(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("trash = ?", false).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListLowStock lists non-trashed products below the restock threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("trash = ? AND stock < ?", false, LowStockThreshold).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
