package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, mutate func(*models.Order)) *models.Order {
	t.Helper()

	product := models.Product{
		ID:         uuid.New(),
		Name:       "Basmati Rice 5kg",
		PriceCents: 45000,
		Stock:      100,
		StockUnit:  enums.StockUnitPiece,
	}
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     enums.OrderStatusPlaced,
		TotalCents: 90000,
		AddressID:  uuid.New(),
		Address:    "12 Beach Road, Kochi",
		Phone:      "+911234567890",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if mutate != nil {
		mutate(&order)
	}
	require.NoError(t, db.Create(&order).Error)

	item := models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ProductID:      product.ID,
		Quantity:       2,
		UnitPriceCents: 45000,
	}
	require.NoError(t, db.Create(&item).Error)

	return &order
}

func TestRepositoryFindByIDPreloadsLines(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, uuid.New(), time.Now().UTC(), nil)

	got, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Basmati Rice 5kg", got.Items[0].Product.Name)
	assert.Equal(t, 45000, got.Items[0].UnitPriceCents)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	older := seedOrder(t, db, userID, base, nil)
	newer := seedOrder(t, db, userID, base.Add(30*time.Minute), nil)
	seedOrder(t, db, uuid.New(), base.Add(15*time.Minute), nil)

	got, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestRepositoryListActiveByDeliveryStaff(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	staffID := uuid.New()
	otherStaff := uuid.New()
	now := time.Now().UTC()

	active := seedOrder(t, db, uuid.New(), now, func(o *models.Order) {
		o.Status = enums.OrderStatusProcessing
		o.DeliveryStaffID = &staffID
	})
	seedOrder(t, db, uuid.New(), now, func(o *models.Order) {
		o.Status = enums.OrderStatusDelivered
		o.DeliveryStaffID = &staffID
	})
	seedOrder(t, db, uuid.New(), now, func(o *models.Order) {
		o.Status = enums.OrderStatusProcessing
		o.DeliveryStaffID = &otherStaff
	})

	got, err := repo.ListActiveByDeliveryStaff(ctx, staffID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestRepositoryListAllPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedOrder(t, db, uuid.New(), base.Add(time.Duration(i)*time.Minute), nil)
	}

	first, err := repo.ListAll(ctx, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Orders, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListAll(ctx, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, o := range append(first.Orders, second.Orders...) {
		assert.False(t, seen[o.ID], "order %s returned twice", o.ID)
		seen[o.ID] = true
	}
}
