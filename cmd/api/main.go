package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/altezzai/storefront-backend/api/routes"
	"github.com/altezzai/storefront-backend/internal/address"
	"github.com/altezzai/storefront-backend/internal/billing"
	"github.com/altezzai/storefront-backend/internal/cart"
	"github.com/altezzai/storefront-backend/internal/checkout"
	"github.com/altezzai/storefront-backend/internal/guests"
	"github.com/altezzai/storefront-backend/internal/inventory"
	"github.com/altezzai/storefront-backend/internal/orders"
	product "github.com/altezzai/storefront-backend/internal/products"
	"github.com/altezzai/storefront-backend/internal/staff"
	"github.com/altezzai/storefront-backend/pkg/config"
	"github.com/altezzai/storefront-backend/pkg/db"
	"github.com/altezzai/storefront-backend/pkg/logger"
	"github.com/altezzai/storefront-backend/pkg/metrics"
	"github.com/altezzai/storefront-backend/pkg/migrate"
	"github.com/altezzai/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	txMetrics := metrics.NewTransactionMetrics(prometheus.DefaultRegisterer)

	guard, err := staff.NewGuard(staff.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create staff guard", err)
		os.Exit(1)
	}

	guestService, err := guests.NewService(redisClient, cfg.GuestCart)
	if err != nil {
		logg.Error(context.Background(), "failed to create guest token service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRepository(gormDB), product.NewRepository(gormDB), redisClient, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		cart.NewRepository(gormDB),
		address.NewRepository(gormDB),
		orders.NewRepository(gormDB),
		dbClient,
		txMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.NewRepository(gormDB), guard, dbClient, txMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB), product.NewRepository(gormDB), guard, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(gormDB), guard, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			guestService,
			cartService,
			checkoutService,
			billingService,
			inventoryService,
			orderService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
