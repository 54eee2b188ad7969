package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockrun/blockrun/pkg/config"
	"github.com/blockrun/blockrun/pkg/logger"
	"github.com/blockrun/blockrun/pkg/server"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP execution API",
	Long: `Start the HTTP server exposing program execution (POST /api/execute),
the block palette (GET /api/blocks), and a health endpoint (GET /health).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		}

		if err := logger.Init(cfg.Log.Level); err != nil {
			return err
		}
		log := logger.Get()

		srv := server.New(cfg)
		errCh := srv.StartAsync()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a TOML or YAML config file")
	rootCmd.AddCommand(serveCmd)
}
