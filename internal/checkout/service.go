package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/internal/address"
	"github.com/altezzai/storefront-backend/internal/cart"
	"github.com/altezzai/storefront-backend/internal/inventory"
	"github.com/altezzai/storefront-backend/internal/orders"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/metrics"
)

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderID    uuid.UUID
	TotalCents int
	LineCount  int
}

// Service turns a user cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID, addressID uuid.UUID) (*Receipt, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	carts     *cart.Repository
	addresses *address.Repository
	orders    *orders.Repository
	tx        txRunner
	metrics   *metrics.TransactionMetrics
}

// NewService constructs the checkout engine. metrics may be nil.
func NewService(carts *cart.Repository, addresses *address.Repository, orderRepo *orders.Repository, tx txRunner, txMetrics *metrics.TransactionMetrics) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		carts:     carts,
		addresses: addresses,
		orders:    orderRepo,
		tx:        tx,
		metrics:   txMetrics,
	}, nil
}

// PlaceOrder runs the whole checkout in one transaction: cart load, address
// ownership, per-line stock decrement, order + frozen lines, cart clear.
// Any failure rolls everything back, stock included.
func (s *service) PlaceOrder(ctx context.Context, userID, addressID uuid.UUID) (*Receipt, error) {
	receipt := &Receipt{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)

		userCart, err := cartRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if userCart == nil || len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		addr, err := s.addresses.WithTx(tx).FindByIDAndUser(ctx, addressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery address")
			}
			return err
		}

		total := 0
		items := make([]models.OrderItem, 0, len(userCart.Items))
		orderID := uuid.New()
		for _, line := range userCart.Items {
			// Live product read inside the transaction; the cart preload may
			// be stale.
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

			unit := product.EffectivePriceCents()
			total += unit * line.Quantity
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        orderID,
				ProductID:      product.ID,
				Quantity:       line.Quantity,
				UnitPriceCents: unit,
			})
		}

		orderRepo := s.orders.WithTx(tx)
		order := &models.Order{
			ID:         orderID,
			UserID:     userID,
			Status:     enums.OrderStatusPlaced,
			TotalCents: total,
			AddressID:  addr.ID,
			Address:    addr.Snapshot(),
			Phone:      addr.Phone,
		}
		if _, err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := orderRepo.CreateItems(ctx, items); err != nil {
			return err
		}

		if err := cartRepo.DeleteItemsByCart(ctx, userCart.ID); err != nil {
			return err
		}

		receipt.OrderID = order.ID
		receipt.TotalCents = total
		receipt.LineCount = len(items)
		return nil
	})
	if err != nil {
		s.metrics.IncCheckout(outcomeFor(err))
		return nil, err
	}

	s.metrics.IncCheckout(metrics.OutcomeCompleted)
	return receipt, nil
}

func outcomeFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return metrics.OutcomeFailed
	}
	switch typed.Code() {
	case pkgerrors.CodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	case pkgerrors.CodeValidation:
		switch typed.Message() {
		case "cart is empty":
			return metrics.OutcomeEmptyCart
		case "invalid delivery address":
			return metrics.OutcomeInvalidAddress
		}
	}
	return metrics.OutcomeFailed
}
