// Package main implements the inventory HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/stockit/inventory-service/internal/app"
	"github.com/stockit/inventory-service/internal/config"
	"github.com/stockit/inventory-service/internal/notify"
	"github.com/stockit/inventory-service/pkg/bootstrap"
	"github.com/stockit/inventory-service/pkg/config/configloader"
	"github.com/stockit/inventory-service/pkg/messaging"
	natspkg "github.com/stockit/inventory-service/pkg/nats"
	"golang.org/x/sync/errgroup"
)

const serviceName = "inventory"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, sets up the database connection, and starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	notifier, err := setupNotifier(cfg)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := setupPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(dbPool, notifier, publisher, logger)
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupNotifier builds the low-stock notifier. When SMTP is disabled the
// service runs with a no-op notifier.
func setupNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.SMTP.Enabled {
		return notify.Nop{}, nil
	}
	notifier, err := notify.NewMailNotifier(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail notifier: %w", err)
	}
	return notifier, nil
}

// setupPublisher builds the optional product-state event publisher. The
// returned close function disconnects from NATS and is a no-op when
// publishing is disabled.
func setupPublisher(cfg *config.Config) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return nil, func() {}, nil
	}
	nc, err := natspkg.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := natspkg.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return natspkg.NewNatsPublisher(js), nc.Close, nil
}
