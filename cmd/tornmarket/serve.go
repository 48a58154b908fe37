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

	"github.com/spf13/cobra"

	"github.com/kzon-tools/torn-market-analyzer/internal/web"
	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analyzer web form",
	Long: `serve starts an HTTP server with a paste-and-run form. Visitors supply
their own public API key per submission; api.key in the config acts as a
fallback. Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Web.Addr = serveAddr
	}
	logger := setupLogger(cfg)

	dict, err := dictionary.Load(cfg.Dictionary.Path)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	logger.Info().Int("items", dict.Len()).Str("path", cfg.Dictionary.Path).Msg("dictionary loaded")

	srv, err := web.NewServer(cfg, dict, logger)
	if err != nil {
		return fmt.Errorf("server setup: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
