package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.StockLog{}, &models.Staff{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Basmati Rice 5kg",
		PriceCents: 4500,
		Stock:      stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestDecrementStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := mustCreateProduct(t, db, 5)

	if err := DecrementStock(ctx, db, product.ID, 3); err != nil {
		t.Fatalf("decrement stock: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", reloaded.Stock)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := mustCreateProduct(t, db, 2)

	err := DecrementStock(ctx, db, product.ID, 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	details, ok := typed.Details().(InsufficientStockDetails)
	if !ok {
		t.Fatalf("expected details, got %T", typed.Details())
	}
	if details.ProductID != product.ID || details.Requested != 3 || details.Available != 2 {
		t.Fatalf("unexpected details: %+v", details)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock must be untouched, got %d", reloaded.Stock)
	}
}

func TestDecrementStockSequentialContention(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := mustCreateProduct(t, db, 1)

	if err := DecrementStock(ctx, db, product.ID, 1); err != nil {
		t.Fatalf("first decrement: %v", err)
	}
	err := DecrementStock(ctx, db, product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected second decrement to fail, got %v", err)
	}
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	err := DecrementStock(context.Background(), db, uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecrementStockTrashedProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := mustCreateProduct(t, db, 10)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("trash", true).Error; err != nil {
		t.Fatalf("trash product: %v", err)
	}

	err := DecrementStock(context.Background(), db, product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for trashed product, got %v", err)
	}
}

func TestDecrementStockInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := mustCreateProduct(t, db, 5)

	err := DecrementStock(context.Background(), db, product.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
