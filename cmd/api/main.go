// server/cmd/api/main.go
package main

import (
	"fmt"
	"os"

	"aayur-gram-api-server/config"
	"aayur-gram-api-server/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string

	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aayurgram",
	Short: "Aayur Gram herbal supply-chain API server",
	Long: `Aayur Gram records herb harvests by collectors and quality tests by labs,
and lets admins and lab staff review them.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		log, err = logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config", "directory containing config.yaml")
	rootCmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep data in memory instead of MongoDB")
	serveCmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep data in memory instead of MongoDB")

	rootCmd.AddCommand(serveCmd, seedAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
