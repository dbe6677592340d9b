package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/internal/staff"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	guard, err := staff.NewGuard(staff.NewRepository(db))
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	svc, err := NewService(NewRepository(db), guard, gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateStaff(t *testing.T, db *gorm.DB, role enums.StaffRole, active bool) *models.Staff {
	t.Helper()
	member := &models.Staff{
		ID:           uuid.New(),
		Name:         "Lifecycle Tester",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     active,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return member
}

func mustCreateOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     status,
		TotalCents: 50000,
		AddressID:  uuid.New(),
		Address:    "Asha Nair, 14B, Temple Road, Kochi - 682001",
		Phone:      "9400012345",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestAssignDeliveryStaff(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	courier := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	updated, err := svc.AssignDeliveryStaff(ctx, order.ID, courier.ID)
	if err != nil {
		t.Fatalf("assign delivery staff: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", updated.Status)
	}
	if updated.DeliveryStaffID == nil || *updated.DeliveryStaffID != courier.ID {
		t.Fatalf("expected assignee %s, got %v", courier.ID, updated.DeliveryStaffID)
	}
}

func TestAssignDeliveryStaffAlreadyAssigned(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	first := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	second := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	if _, err := svc.AssignDeliveryStaff(ctx, order.ID, first.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	_, err := svc.AssignDeliveryStaff(ctx, order.ID, second.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on reassign, got %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.DeliveryStaffID == nil || *reloaded.DeliveryStaffID != first.ID {
		t.Fatalf("first assignee must stick, got %v", reloaded.DeliveryStaffID)
	}
}

func TestAssignDeliveryStaffGuards(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	shop := mustCreateStaff(t, db, enums.StaffRoleShopStaff, true)
	if _, err := svc.AssignDeliveryStaff(ctx, order.ID, shop.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for shop staff, got %v", err)
	}

	inactive := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, false)
	if _, err := svc.AssignDeliveryStaff(ctx, order.ID, inactive.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for inactive staff, got %v", err)
	}

	courier := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	delivered := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusDelivered)
	if _, err := svc.AssignDeliveryStaff(ctx, delivered.ID, courier.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for delivered order, got %v", err)
	}

	if _, err := svc.AssignDeliveryStaff(ctx, uuid.New(), courier.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}

func TestUpdateDeliveryStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	courier := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	if _, err := svc.AssignDeliveryStaff(ctx, order.ID, courier.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	updated, err := svc.UpdateDeliveryStatus(ctx, order.ID, courier.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update delivery status: %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", updated.Status)
	}

	// Terminal state: no further moves, not even by the assignee.
	_, err = svc.UpdateDeliveryStatus(ctx, order.ID, courier.ID, enums.OrderStatusProcessing)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict off DELIVERED, got %v", err)
	}
}

func TestUpdateDeliveryStatusRules(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	courier := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	stranger := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	if _, err := svc.AssignDeliveryStaff(ctx, order.ID, courier.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := svc.UpdateDeliveryStatus(ctx, order.ID, stranger.ID, enums.OrderStatusDelivered)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-assignee, got %v", err)
	}

	_, err = svc.UpdateDeliveryStatus(ctx, order.ID, courier.ID, enums.OrderStatusPlaced)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on regression to PLACED, got %v", err)
	}

	_, err = svc.UpdateDeliveryStatus(ctx, order.ID, courier.ID, "SHIPPED")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for unknown status, got %v", err)
	}
}

func TestUpdateStatusAdminOverride(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	order := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusDelivered)

	// Admin override skips transition checks entirely.
	updated, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced)
	if err != nil {
		t.Fatalf("admin update status: %v", err)
	}
	if updated.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected PLACED, got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, "SHIPPED"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for unknown status, got %v", err)
	}
}

func TestUserReads(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := uuid.New()
	first := mustCreateOrder(t, db, userID, enums.OrderStatusPlaced)
	second := mustCreateOrder(t, db, userID, enums.OrderStatusPlaced)
	other := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)

	got, err := svc.GetForUser(ctx, first.ID, userID)
	if err != nil {
		t.Fatalf("get for user: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected order %s, got %s", first.ID, got.ID)
	}

	// Other users' orders read as missing, not forbidden.
	if _, err := svc.GetForUser(ctx, other.ID, userID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	list, err := svc.ListForUser(ctx, userID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Fatalf("expected newest order first")
	}
}

func TestDeliveryStaffActiveList(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	courier := mustCreateStaff(t, db, enums.StaffRoleDeliveryStaff, true)

	assigned := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)
	if _, err := svc.AssignDeliveryStaff(ctx, assigned.ID, courier.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	done := mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)
	if _, err := svc.AssignDeliveryStaff(ctx, done.ID, courier.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.UpdateDeliveryStatus(ctx, done.ID, courier.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	active, err := svc.ListActiveForStaff(ctx, courier.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != assigned.ID {
		t.Fatalf("expected only the undelivered order, got %+v", active)
	}
}

func TestListAllPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		mustCreateOrder(t, db, uuid.New(), enums.OrderStatusPlaced)
	}

	page, err := svc.ListAll(ctx, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(page.Orders) != 2 || page.NextCursor == "" {
		t.Fatalf("expected first page of 2 with cursor, got %d %q", len(page.Orders), page.NextCursor)
	}

	rest, err := svc.ListAll(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Orders) != 1 || rest.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d %q", len(rest.Orders), rest.NextCursor)
	}
}
