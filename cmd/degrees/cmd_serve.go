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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/persistorai/degrees/internal/api"
	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/logging"
	"github.com/persistorai/degrees/internal/provider"
	"github.com/persistorai/degrees/internal/service"
	"github.com/persistorai/degrees/internal/ws"
)

func newServeCmd() *cobra.Command {
	var (
		maxStreams      int
		crawlTimeout    time.Duration
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the degrees HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg, maxStreams, crawlTimeout, shutdownTimeout)
		},
	}

	cmd.Flags().IntVar(&maxStreams, "max-streams", 32, "Concurrent crawl streams")
	cmd.Flags().DurationVar(&crawlTimeout, "crawl-timeout", 2*time.Minute, "Per-crawl time limit")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "Grace period for in-flight requests")

	return cmd
}

func serve(parent context.Context, cfg *config.Config, maxStreams int, crawlTimeout, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.FromLevel(cfg.LogLevel, os.Stderr)
	gin.SetMode(gin.ReleaseMode)

	p, release, err := provider.Open(ctx, cfg)
	defer release()
	if err != nil {
		return fmt.Errorf("open provider: %w", err)
	}

	hub := ws.NewHub(maxStreams, log)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(&api.RouterDeps{
			Log:          log,
			Crawls:       service.NewCrawlService(p, log, cfg.MaxDegreeLimit),
			Hub:          hub,
			Provider:     string(cfg.Provider),
			Version:      config.Version,
			APIKey:       cfg.ServerAPIKey,
			CORSOrigins:  cfg.CORSOrigins,
			CrawlTimeout: crawlTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).WithField("provider", cfg.Provider).Info("degrees api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
