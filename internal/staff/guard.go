package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
)

type staffReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
}

// Guard is the single role check used by inventory, billing and order
// assignment. ADMIN passes any staff-role requirement.
type Guard struct {
	repo staffReader
}

// NewGuard constructs the shared authorization guard.
func NewGuard(repo staffReader) (*Guard, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	return &Guard{repo: repo}, nil
}

// RequireActiveRole loads the staff row and verifies it is active and holds
// one of the given roles.
func (g *Guard) RequireActiveRole(ctx context.Context, staffID uuid.UUID, roles ...enums.StaffRole) (*models.Staff, error) {
	member, err := g.repo.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading staff account")
	}
	if !member.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff account is inactive")
	}
	if member.Role == enums.StaffRoleAdmin {
		return member, nil
	}
	for _, role := range roles {
		if member.Role == role {
			return member, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("staff role %s not permitted", member.Role))
}
