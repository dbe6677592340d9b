package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
)

// Repository wires staff persistence helpers.
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

// FindByID loads the staff row without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByEmail loads the staff row by unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// Create inserts a staff row.
func (r *Repository) Create(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}
