package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/internal/inventory"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/metrics"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

// SaleLineInput is one till line. PriceAtSale is the amount the cashier
// charged; it is recorded as supplied, with no catalog cross-check.
type SaleLineInput struct {
	ProductID   uuid.UUID
	Quantity    int
	PriceAtSale decimal.Decimal
}

// CreateSaleInput is the till payload for one in-person transaction.
type CreateSaleInput struct {
	PaymentMode enums.PaymentMode
	Discount    *decimal.Decimal
	Lines       []SaleLineInput
}

// SaleSummary reports the recorded sale.
type SaleSummary struct {
	SaleID      uuid.UUID
	TotalAmount decimal.Decimal
	LineCount   int
}

// Service exposes the point-of-sale billing operations.
type Service interface {
	CreateSale(ctx context.Context, staffID uuid.UUID, input CreateSaleInput) (*SaleSummary, error)
	ListSales(ctx context.Context, params pagination.Params) (*SalesPage, error)
}

type roleGuard interface {
	RequireActiveRole(ctx context.Context, staffID uuid.UUID, roles ...enums.StaffRole) (*models.Staff, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    *Repository
	guard   roleGuard
	tx      txRunner
	metrics *metrics.TransactionMetrics
}

// NewService constructs the billing engine. metrics may be nil.
func NewService(repo *Repository, guard roleGuard, tx txRunner, txMetrics *metrics.TransactionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("staff guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, guard: guard, tx: tx, metrics: txMetrics}, nil
}

// CreateSale records a till transaction and decrements stock in one
// transaction. Stock failure on any line voids the whole sale.
func (s *service) CreateSale(ctx context.Context, staffID uuid.UUID, input CreateSaleInput) (*SaleSummary, error) {
	summary, err := s.createSale(ctx, staffID, input)
	if err != nil {
		s.metrics.IncLocalSale(saleOutcomeFor(err))
		return nil, err
	}
	s.metrics.IncLocalSale(metrics.OutcomeCompleted)
	return summary, nil
}

func (s *service) createSale(ctx context.Context, staffID uuid.UUID, input CreateSaleInput) (*SaleSummary, error) {
	if !input.PaymentMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment mode %q", input.PaymentMode))
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale must have at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if line.PriceAtSale.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price at sale cannot be negative")
		}
	}

	actor, err := s.guard.RequireActiveRole(ctx, staffID, enums.StaffRoleShopStaff)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, line := range input.Lines {
		subtotal = subtotal.Add(line.PriceAtSale.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total := subtotal
	if input.Discount != nil {
		if input.Discount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
		}
		if input.Discount.GreaterThan(subtotal) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot exceed the subtotal")
		}
		total = subtotal.Sub(*input.Discount)
	}

	summary := &SaleSummary{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		sale := &models.LocalSale{
			ID:          uuid.New(),
			StaffID:     actor.ID,
			PaymentMode: input.PaymentMode,
			TotalAmount: total,
			Discount:    input.Discount,
		}
		if _, err := txRepo.CreateSale(ctx, sale); err != nil {
			return err
		}

		items := make([]models.LocalSaleItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			var product models.Product
			if err := tx.WithContext(ctx).First(&product, "id = ? AND trash = ?", line.ProductID, false).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
				}
				return err
			}

			if err := inventory.DecrementStock(ctx, tx, product.ID, line.Quantity); err != nil {
				return err
			}

			items = append(items, models.LocalSaleItem{
				ID:          uuid.New(),
				LocalSaleID: sale.ID,
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				PriceAtSale: line.PriceAtSale,
			})
		}
		if err := txRepo.CreateSaleItems(ctx, items); err != nil {
			return err
		}

		summary.SaleID = sale.ID
		summary.TotalAmount = total
		summary.LineCount = len(items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListSales returns the admin sales feed, newest first.
func (s *service) ListSales(ctx context.Context, params pagination.Params) (*SalesPage, error) {
	return s.repo.ListSales(ctx, params)
}

func saleOutcomeFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return metrics.OutcomeFailed
	}
	if typed.Code() == pkgerrors.CodeInsufficientStock {
		return metrics.OutcomeInsufficientStock
	}
	return metrics.OutcomeFailed
}
