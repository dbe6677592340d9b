package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/internal/cart"
	"github.com/altezzai/storefront-backend/pkg/logger"
)

const cleanupBatchSize = 200

type tokenChecker interface {
	HasGuestToken(ctx context.Context, token string) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GuestCartCleanupParams configure the guest cart cleanup job.
type GuestCartCleanupParams struct {
	Logger    *logger.Logger
	Carts     *cart.Repository
	Tokens    tokenChecker
	Tx        txRunner
	Retention time.Duration
}

// GuestCartCleanupJob deletes guest carts that outlived their retention
// window and whose token no longer exists in Redis.
type GuestCartCleanupJob struct {
	logg      *logger.Logger
	carts     *cart.Repository
	tokens    tokenChecker
	tx        txRunner
	retention time.Duration
	now       func() time.Time
}

// NewGuestCartCleanupJob builds the cleanup job.
func NewGuestCartCleanupJob(params GuestCartCleanupParams) (*GuestCartCleanupJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Retention <= 0 {
		return nil, fmt.Errorf("retention must be positive")
	}
	return &GuestCartCleanupJob{
		logg:      params.Logger,
		carts:     params.Carts,
		tokens:    params.Tokens,
		tx:        params.Tx,
		retention: params.Retention,
		now:       time.Now,
	}, nil
}

func (j *GuestCartCleanupJob) Name() string {
	return "guest-cart-cleanup"
}

func (j *GuestCartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	carts, err := j.carts.ListAbandonedGuestCarts(ctx, cutoff, cleanupBatchSize)
	if err != nil {
		return fmt.Errorf("list abandoned guest carts: %w", err)
	}
	if len(carts) == 0 {
		j.logg.Info(ctx, "no abandoned guest carts to clean up")
		return nil
	}

	var errs error
	deleted := 0
	for _, c := range carts {
		if c.GuestToken == nil {
			continue
		}
		alive, err := j.tokens.HasGuestToken(ctx, *c.GuestToken)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check token for cart %s: %w", c.ID, err))
			continue
		}
		if alive {
			// Token still valid in Redis; the cart is old but not abandoned.
			continue
		}
		err = j.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return j.carts.WithTx(tx).DeleteCart(ctx, c.ID)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete cart %s: %w", c.ID, err))
			continue
		}
		deleted++
	}

	runCtx := j.logg.WithField(ctx, "candidates", len(carts))
	runCtx = j.logg.WithField(runCtx, "deleted", deleted)
	j.logg.Info(runCtx, "guest cart cleanup finished")
	return errs
}
