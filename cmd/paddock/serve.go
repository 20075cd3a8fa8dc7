package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/cli"
	"github.com/aretw0/paddock/internal/config"
	"github.com/aretw0/paddock/internal/logging"
	httpAdapter "github.com/aretw0/paddock/pkg/adapters/http"
	"github.com/aretw0/paddock/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the wizard as HTML pages, one session per browser cookie, plus the
JSON state API, live diff streams (SSE and WebSocket), health and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if backend, _ := cmd.Flags().GetString("store"); backend != "" {
			cfg.Store.Backend = backend
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		watch, _ := cmd.Flags().GetBool("watch-config")
		return serve(cmd.Context(), cfg, path, watch)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().String("store", "", "Session store: memory, file, sqlite, redis (overrides store.backend)")
	serveCmd.Flags().Bool("watch-config", false, "Reload the log level when the config file changes")
}

func serve(parent context.Context, cfg config.Config, cfgPath string, watch bool) error {
	sc := cli.NewSignalContext(parent)
	defer sc.Cancel()

	level := new(slog.LevelVar)
	lvl, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	level.Set(lvl)
	logger := logging.NewWithWriter(os.Stderr, level, cfg.Log.JSON)

	store, err := openBackend(sc, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	handler, err := httpAdapter.NewHandler(
		store.Manager(cfg, logger),
		newSource(cfg.API, logger),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithLifecycleHooks(metrics.Hooks().Chain(observability.LoggingHooks(logger))),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpAdapter.WithSecureCookies(cfg.Server.SecureCookies),
		httpAdapter.WithGuardTTL(cfg.Store.TTL),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(sc)
	g.Go(func() error {
		logger.Info("paddock server starting", "addr", srv.Addr, "store", cfg.Store.Backend, "version", paddock.Version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", "signal", sc.Signal())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	})
	if watch {
		g.Go(func() error {
			err := config.Watch(ctx, cfgPath, logger, func(next config.Config) {
				if lvl, err := logging.ParseLevel(next.Log.Level); err == nil {
					level.Set(lvl)
				}
			})
			if err != nil {
				logger.Warn("config watch disabled", "path", cfgPath, "err", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("paddock server stopped")
	return nil
}
