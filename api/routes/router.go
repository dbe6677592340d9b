package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/altezzai/storefront-backend/api/controllers"
	"github.com/altezzai/storefront-backend/api/middleware"
	billingsvc "github.com/altezzai/storefront-backend/internal/billing"
	cartsvc "github.com/altezzai/storefront-backend/internal/cart"
	checkoutsvc "github.com/altezzai/storefront-backend/internal/checkout"
	guestsvc "github.com/altezzai/storefront-backend/internal/guests"
	inventorysvc "github.com/altezzai/storefront-backend/internal/inventory"
	ordersvc "github.com/altezzai/storefront-backend/internal/orders"
	"github.com/altezzai/storefront-backend/pkg/config"
	pkgdb "github.com/altezzai/storefront-backend/pkg/db"
	"github.com/altezzai/storefront-backend/pkg/enums"
	"github.com/altezzai/storefront-backend/pkg/logger"
	pkgredis "github.com/altezzai/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pkgdb.Pinger,
	redisP pkgredis.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	guestService guestsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	billingService billingsvc.Service,
	inventoryService inventorysvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cart/guest-token", controllers.GuestTokenIssue(guestService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartAuth(cfg.JWT, guestService, logg))
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Post("/cart/merge", controllers.CartMerge(cartService, logg))
			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.UserListOrders(orderService, logg))
				r.Get("/{orderId}", controllers.UserOrderDetail(orderService, logg))
			})

			r.Route("/staff", func(r chi.Router) {
				r.With(middleware.RequireRole(logg, enums.StaffRoleShopStaff)).
					Post("/billing", controllers.BillingCreateSale(billingService, logg))

				r.Route("/inventory", func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.StaffRoleInventoryStaff))
					r.Post("/stock", controllers.InventoryIncreaseStock(inventoryService, logg))
					r.Get("/products", controllers.InventoryListProducts(inventoryService, logg))
					r.Get("/low-stock", controllers.InventoryListLowStock(inventoryService, logg))
				})

				r.Route("/delivery", func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.StaffRoleDeliveryStaff))
					r.Get("/orders", controllers.DeliveryListOrders(orderService, logg))
					r.Patch("/orders/{orderId}/status", controllers.DeliveryUpdateOrderStatus(orderService, logg))
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg))
				r.Post("/orders/{orderId}/assign", controllers.AdminAssignOrder(orderService, logg))
				r.Patch("/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(orderService, logg))
				r.Get("/orders", controllers.AdminListOrders(orderService, logg))
				r.Get("/stock-logs", controllers.AdminListStockLogs(inventoryService, logg))
				r.Get("/sales", controllers.AdminListSales(billingService, logg))
			})
		})
	})

	return r
}
