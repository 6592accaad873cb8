// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"fmt"

	"aayur-gram-api-server/config"
	"aayur-gram-api-server/internal/auth"
	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"

	"go.uber.org/zap"
)

// AccountStore is the part of a user store the seeder needs.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// SeedAdmin creates the configured admin account unless that email is
// already registered. It is safe to run on every deploy.
func SeedAdmin(ctx context.Context, users AccountStore, seed config.SeedConfig, bcryptCost int, log *zap.Logger) error {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return fmt.Errorf("%w: seed.adminEmail and seed.adminPassword are required", errs.ErrInvalidInput)
	}

	existing, err := users.FindByEmail(ctx, seed.AdminEmail)
	switch {
	case err == nil:
		log.Info("Admin already exists. Seeding skipped.", zap.String("email", existing.Email), zap.String("role", string(existing.Role)))
		return nil
	case !errors.Is(err, errs.ErrNotFound):
		return err
	}

	log.Info("Admin not found. Seeding...", zap.String("email", seed.AdminEmail))
	hashedPassword, err := auth.HashPassword(seed.AdminPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:          seed.AdminEmail,
		HashedPassword: hashedPassword,
		Name:           seed.AdminName,
		Role:           models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Info("Admin seeded successfully.", zap.String("id", admin.ID.Hex()))
	return nil
}
