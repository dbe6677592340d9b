package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/altezzai/storefront-backend/internal/products"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

// Service exposes the stock ledger operations.
type Service interface {
	IncreaseStock(ctx context.Context, staffID, productID uuid.UUID, qty int) (*StockAdjustment, error)
	ListProducts(ctx context.Context) ([]ProductStockView, error)
	ListLowStock(ctx context.Context) ([]ProductStockView, error)
	ListStockLogs(ctx context.Context, params pagination.Params) (*StockLogPage, error)
}

// StockAdjustment reports the before/after counters of a restock.
type StockAdjustment struct {
	ProductID uuid.UUID
	OldStock  int
	AddedQty  int
	NewStock  int
}

// ProductStockView is the inventory staff read model.
type ProductStockView struct {
	ID        uuid.UUID
	Name      string
	Stock     int
	StockUnit enums.StockUnit
	LowStock  bool
}

type roleGuard interface {
	RequireActiveRole(ctx context.Context, staffID uuid.UUID, roles ...enums.StaffRole) (*models.Staff, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	products catalogLoader
	guard    roleGuard
	tx       txRunner
}

type catalogLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAllForInventory(ctx context.Context) ([]models.Product, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// NewService constructs the stock ledger service.
func NewService(repo *Repository, products catalogLoader, guard roleGuard, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("staff guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, products: products, guard: guard, tx: tx}, nil
}

// IncreaseStock adds qty units to the product counter and appends the
// audit row in the same transaction.
func (s *service) IncreaseStock(ctx context.Context, staffID, productID uuid.UUID, qty int) (*StockAdjustment, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	actor, err := s.guard.RequireActiveRole(ctx, staffID, enums.StaffRoleInventoryStaff)
	if err != nil {
		return nil, err
	}

	var adjustment *StockAdjustment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// The counter update goes first and holds the row lock; the
		// read-back in the same transaction is what the log records,
		// so the log always agrees with the counter.
		result := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND trash = ?", productID, false).
			Update("stock", gorm.Expr("stock + ?", qty))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
		}

		var product models.Product
		if err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
			return err
		}
		newStock := product.Stock
		oldStock := newStock - qty

		log := &models.StockLog{
			ID:        uuid.New(),
			ProductID: product.ID,
			StaffID:   actor.ID,
			OldStock:  oldStock,
			AddedQty:  qty,
			NewStock:  newStock,
		}
		if _, err := s.repo.WithTx(tx).CreateStockLog(ctx, log); err != nil {
			return err
		}

		adjustment = &StockAdjustment{
			ProductID: product.ID,
			OldStock:  oldStock,
			AddedQty:  qty,
			NewStock:  newStock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustment, nil
}

// ListProducts returns the full catalog with low-stock flags for restock review.
func (s *service) ListProducts(ctx context.Context) ([]ProductStockView, error) {
	products, err := s.products.FindAllForInventory(ctx)
	if err != nil {
		return nil, err
	}
	return toStockViews(products), nil
}

// ListLowStock returns products below the restock threshold.
func (s *service) ListLowStock(ctx context.Context) ([]ProductStockView, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return toStockViews(products), nil
}

// ListStockLogs returns the admin audit feed, newest first.
func (s *service) ListStockLogs(ctx context.Context, params pagination.Params) (*StockLogPage, error) {
	return s.repo.ListStockLogs(ctx, params)
}

func toStockViews(products []models.Product) []ProductStockView {
	views := make([]ProductStockView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductStockView{
			ID:        p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			StockUnit: p.StockUnit,
			LowStock:  p.Stock < product.LowStockThreshold,
		})
	}
	return views
}
