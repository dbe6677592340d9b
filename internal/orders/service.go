package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

// Service drives the order state machine PLACED → PROCESSING → DELIVERED.
type Service interface {
	AssignDeliveryStaff(ctx context.Context, orderID, staffID uuid.UUID) (*models.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID, actorStaffID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListActiveForStaff(ctx context.Context, staffID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) (*Page, error)
}

type roleGuard interface {
	RequireActiveRole(ctx context.Context, staffID uuid.UUID, roles ...enums.StaffRole) (*models.Staff, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  *Repository
	guard roleGuard
	tx    txRunner
}

// NewService constructs the order lifecycle manager.
func NewService(repo *Repository, guard roleGuard, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("staff guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, guard: guard, tx: tx}, nil
}

// AssignDeliveryStaff hands an unassigned, undelivered order to an active
// delivery staff member and moves it to PROCESSING in the same update.
func (s *service) AssignDeliveryStaff(ctx context.Context, orderID, staffID uuid.UUID) (*models.Order, error) {
	if _, err := s.guard.RequireActiveRole(ctx, staffID, enums.StaffRoleDeliveryStaff); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, txRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already delivered")
		}
		if order.DeliveryStaffID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already assigned")
		}

		if err := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"status":            enums.OrderStatusProcessing,
				"delivery_staff_id": staffID,
			}).Error; err != nil {
			return err
		}

		updated, err = txRepo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateDeliveryStatus lets the assigned delivery staff advance the order.
// Regressions to PLACED and any move off DELIVERED are rejected.
func (s *service) UpdateDeliveryStatus(ctx context.Context, orderID, actorStaffID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, txRepo, orderID)
		if err != nil {
			return err
		}
		if order.DeliveryStaffID == nil || *order.DeliveryStaffID != actorStaffID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this staff member")
		}
		if order.Status == enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already delivered")
		}
		if status == enums.OrderStatusPlaced {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot return to PLACED")
		}

		if err := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", status).Error; err != nil {
			return err
		}

		updated, err = txRepo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus is the admin override: any valid status, no assignment or
// transition checks.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, txRepo, orderID)
		if err != nil {
			return err
		}

		if err := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", status).Error; err != nil {
			return err
		}

		updated, err = txRepo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetForUser loads one order only when it belongs to the user.
func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
	}
	return order, nil
}

// ListForUser returns the user's orders newest first.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListActiveForStaff returns undelivered orders assigned to the staff member.
func (s *service) ListActiveForStaff(ctx context.Context, staffID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListActiveByDeliveryStaff(ctx, staffID)
}

// ListAll returns the admin feed, newest first.
func (s *service) ListAll(ctx context.Context, params pagination.Params) (*Page, error) {
	return s.repo.ListAll(ctx, params)
}

func (s *service) loadOrder(ctx context.Context, repo *Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
		}
		return nil, err
	}
	return order, nil
}
