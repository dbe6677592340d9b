package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
)

// InsufficientStockDetails names the product that could not satisfy a
// decrement so callers can surface it per line.
type InsufficientStockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// DecrementStock atomically takes qty units off the product counter inside
// the caller's transaction. The conditional UPDATE is the only
// serialization point; there are no in-process locks.
func DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND trash = ? AND stock >= ?", productID, false, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var product models.Product
	if err := tx.WithContext(ctx).First(&product, "id = ? AND trash = ?", productID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
		}
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name)).
		WithDetails(InsufficientStockDetails{
			ProductID: productID,
			Requested: qty,
			Available: product.Stock,
		})
}
