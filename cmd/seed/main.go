package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/internal/staff"
	"github.com/altezzai/storefront-backend/pkg/config"
	"github.com/altezzai/storefront-backend/pkg/db"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	"github.com/altezzai/storefront-backend/pkg/env"
	"github.com/altezzai/storefront-backend/pkg/logger"
	"github.com/altezzai/storefront-backend/pkg/security"
)

// seeds the bootstrap admin account so a fresh deployment has a staff
// login to manage everything else. Re-running is a no-op when the email
// already exists.
func main() {
	name := flag.String("name", env.Get("STOREFRONT_SEED_ADMIN_NAME", "Super Admin"), "admin display name")
	email := flag.String("email", os.Getenv("STOREFRONT_SEED_ADMIN_EMAIL"), "admin email (required)")
	password := flag.String("password", os.Getenv("STOREFRONT_SEED_ADMIN_PASSWORD"), "admin password (required)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	if *email == "" || *password == "" {
		logg.Error(ctx, "admin email and password are required", errors.New("missing -email or -password"))
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	repo := staff.NewRepository(dbClient.DB())

	existing, err := repo.FindByEmail(ctx, *email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(ctx, "failed to look up admin", err)
		os.Exit(1)
	}
	if existing != nil {
		logg.Info(logg.WithField(ctx, "staff_id", existing.ID.String()), "admin already exists, nothing to do")
		return
	}

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash admin password", err)
		os.Exit(1)
	}

	admin := &models.Staff{
		ID:           uuid.New(),
		Name:         *name,
		Email:        *email,
		PasswordHash: hash,
		Role:         enums.StaffRoleAdmin,
		IsActive:     true,
	}
	if _, err := repo.Create(ctx, admin); err != nil {
		logg.Error(ctx, "failed to create admin", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "staff_id", admin.ID.String()), "admin created")
}
