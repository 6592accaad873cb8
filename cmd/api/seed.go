package main

import (
	"context"

	"aayur-gram-api-server/internal/database"

	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the configured admin account if it does not exist",
	Long: `Reads SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD and optionally seed.adminName
from the configuration and inserts an admin user into MongoDB.
Running it again for an existing email does nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := database.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		db := client.Database(cfg.Mongo.DBName)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		return database.SeedAdmin(ctx, database.NewUserStore(db), cfg.Seed, cfg.Auth.BcryptCost, log)
	},
}
