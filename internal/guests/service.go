package guests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/altezzai/storefront-backend/pkg/config"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
)

type tokenStore interface {
	RegisterGuestToken(ctx context.Context, token string, ttl time.Duration) error
	TouchGuestToken(ctx context.Context, token string, ttl time.Duration) error
	HasGuestToken(ctx context.Context, token string) (bool, error)
}

// Service issues and validates anonymous guest identities. Tokens are
// opaque uuids living in Redis with a sliding TTL; cart activity refreshes
// them, merge exhausts them.
type Service interface {
	IssueToken(ctx context.Context) (string, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
}

type service struct {
	store tokenStore
	ttl   time.Duration
}

// NewService constructs the guest identity service.
func NewService(store tokenStore, cfg config.GuestCartConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("guest token store required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("guest token ttl must be positive")
	}
	return &service{store: store, ttl: cfg.TokenTTL}, nil
}

// IssueToken mints a fresh guest token and registers it with the TTL.
func (s *service) IssueToken(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := s.store.RegisterGuestToken(ctx, token, s.ttl); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registering guest token")
	}
	return token, nil
}

// ValidateToken reports whether the token is live and refreshes its TTL
// when it is.
func (s *service) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	exists, err := s.store.HasGuestToken(ctx, token)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking guest token")
	}
	if !exists {
		return false, nil
	}
	if err := s.store.TouchGuestToken(ctx, token, s.ttl); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refreshing guest token")
	}
	return true, nil
}
