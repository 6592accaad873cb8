package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aayur-gram-api-server/internal/api/handlers"
	"aayur-gram-api-server/internal/api/routes"
	"aayur-gram-api-server/internal/auth"
	"aayur-gram-api-server/internal/database"
	"aayur-gram-api-server/internal/database/memory"
	"aayur-gram-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

// stores bundles the persistence layer the router needs.
type stores struct {
	users       handlers.UserStore
	collections handlers.CollectionStore
	labRecords  handlers.LabRecordStore
	close       func(context.Context) error
}

func openStores(ctx context.Context) (*stores, error) {
	if inMemory {
		log.Warn("Running with in-memory storage; data is lost on exit")
		return &stores{
			users:       memory.NewUserStore(),
			collections: memory.NewCollectionStore(),
			labRecords:  memory.NewLabRecordStore(),
			close:       func(context.Context) error { return nil },
		}, nil
	}

	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Mongo.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info("Connected to MongoDB", zap.String("db", cfg.Mongo.DBName))

	return &stores{
		users:       database.NewUserStore(db),
		collections: database.NewCollectionStore(db),
		labRecords:  database.NewLabRecordStore(db),
		close:       client.Disconnect,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if inMemory {
		if cfg.JWT.Secret == "" {
			return errors.New("jwt.secret (JWT_SECRET) is required")
		}
	} else if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		if err := database.SeedAdmin(ctx, st.users, cfg.Seed, cfg.Auth.BcryptCost, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		Users:             st.users,
		Collections:       st.collections,
		LabRecords:        st.labRecords,
		Tokens:            tokens,
		MaxUploadBytes:    cfg.S3.MaxUploadBytes,
		AdminSignupSecret: cfg.Auth.AdminSignupSecret,
		LabSignupSecret:   cfg.Auth.LabSignupSecret,
		BcryptCost:        cfg.Auth.BcryptCost,
		CORSOrigins:       cfg.Server.CORSOrigins,
		Log:               log,
	}
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			return err
		}
		deps.Uploader = uploader
		log.Info("Attachment uploads enabled", zap.String("bucket", cfg.S3.Bucket))
	}
	if cfg.Auth.AdminSignupSecret == "" {
		log.Warn("ADMIN_SIGNUP_SECRET is not set; admin self-registration is disabled")
	}
	if cfg.Auth.LabSignupSecret == "" {
		log.Warn("LAB_SIGNUP_SECRET is not set; lab self-registration is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to run server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
