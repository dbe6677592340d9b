package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	billingsvc "github.com/altezzai/storefront-backend/internal/billing"
	cartsvc "github.com/altezzai/storefront-backend/internal/cart"
	checkoutsvc "github.com/altezzai/storefront-backend/internal/checkout"
	inventorysvc "github.com/altezzai/storefront-backend/internal/inventory"
	ordersvc "github.com/altezzai/storefront-backend/internal/orders"
	pkgauth "github.com/altezzai/storefront-backend/pkg/auth"
	"github.com/altezzai/storefront-backend/pkg/config"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	"github.com/altezzai/storefront-backend/pkg/logger"
	"github.com/altezzai/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubGuestService struct{}

func (stubGuestService) IssueToken(context.Context) (string, error) {
	return "guest-token", nil
}

func (stubGuestService) ValidateToken(_ context.Context, token string) (bool, error) {
	return token == "live-guest-token", nil
}

type stubCartService struct{}

func (stubCartService) AddItem(context.Context, cartsvc.Owner, uuid.UUID, int) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) UpdateItem(context.Context, cartsvc.Owner, uuid.UUID, int) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) RemoveItem(context.Context, cartsvc.Owner, uuid.UUID) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) GetView(context.Context, cartsvc.Owner) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) Merge(context.Context, uuid.UUID, string) (*cartsvc.MergeResult, error) {
	return &cartsvc.MergeResult{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) PlaceOrder(context.Context, uuid.UUID, uuid.UUID) (*checkoutsvc.Receipt, error) {
	return &checkoutsvc.Receipt{OrderID: uuid.New()}, nil
}

type stubBillingService struct{}

func (stubBillingService) CreateSale(context.Context, uuid.UUID, billingsvc.CreateSaleInput) (*billingsvc.SaleSummary, error) {
	return &billingsvc.SaleSummary{SaleID: uuid.New()}, nil
}

func (stubBillingService) ListSales(context.Context, pagination.Params) (*billingsvc.SalesPage, error) {
	return &billingsvc.SalesPage{}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) IncreaseStock(context.Context, uuid.UUID, uuid.UUID, int) (*inventorysvc.StockAdjustment, error) {
	return &inventorysvc.StockAdjustment{}, nil
}

func (stubInventoryService) ListProducts(context.Context) ([]inventorysvc.ProductStockView, error) {
	return nil, nil
}

func (stubInventoryService) ListLowStock(context.Context) ([]inventorysvc.ProductStockView, error) {
	return nil, nil
}

func (stubInventoryService) ListStockLogs(context.Context, pagination.Params) (*inventorysvc.StockLogPage, error) {
	return &inventorysvc.StockLogPage{}, nil
}

type stubOrderService struct{}

func (stubOrderService) AssignDeliveryStaff(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) UpdateDeliveryStatus(context.Context, uuid.UUID, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) ListForUser(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (stubOrderService) ListActiveForStaff(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (stubOrderService) ListAll(context.Context, pagination.Params) (*ordersvc.Page, error) {
	return &ordersvc.Page{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		stubPinger{},
		nil,
		stubGuestService{},
		stubCartService{},
		stubCheckoutService{},
		stubBillingService{},
		stubInventoryService{},
		stubOrderService{},
	)
}

func mintToken(t *testing.T, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Storefront-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestGuestTokenIssueIsPublic(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/guest-token", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var body struct {
		Data struct {
			GuestToken string `json:"guest_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.GuestToken != "guest-token" {
		t.Fatalf("unexpected token %q", body.Data.GuestToken)
	}
}

func TestCartRequiresCredentials(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAcceptsGuestToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Guest-Token", "live-guest-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCheckoutRequiresBearerToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	router := newTestRouter(t)
	body := `{"address_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleCustomer))
	req.Header.Set("Idempotency-Key", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminListOrdersAllowsAdmin(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInventoryRoutesEnforceRole(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/inventory/products", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleDeliveryStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/staff/inventory/products", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleInventoryStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
