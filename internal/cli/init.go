// Package cli provides the start-up steps shared by the ledger binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/cache"
	"finledger/internal/config"
	"finledger/internal/currency"
	applog "finledger/internal/log"
	"finledger/internal/storage"

	"github.com/joho/godotenv"
)

// SetupLogger builds the component logger at the configured level and
// installs it as the slog default.
func SetupLogger(level string, component string) *applog.Logger {
	cfg := config.Config{LogLevel: level}
	logger := applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Component: component,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the namespace store described by cfg.
func OpenStore(cfg *config.Config) (*storage.Store, error) {
	return storage.Open(cfg.DataDir, storage.Options{
		BaseCurrency: cfg.BaseCurrency,
		CacheSize:    cfg.NamespaceCacheSize,
		CacheTTL:     cfg.NamespaceCacheTTL,
	})
}

// InitStore opens the store and registers its namespace cache with
// manager. Exits the process on failure.
func InitStore(logger *applog.Logger, cfg *config.Config, manager *cache.Manager) *storage.Store {
	store, err := OpenStore(cfg)
	if err != nil {
		logger.WithComponent(applog.ComponentStorage).Error("Failed to open ledger store", applog.FieldError, err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	if manager != nil {
		manager.Register(store.NamespaceCache())
	}
	return store
}

// NewNormalizer loads the rate table from cfg.RatesFile, or the built-in
// table when unset. The configured base currency must have a rate, since
// every new namespace reports in it.
func NewNormalizer(cfg *config.Config, opts ...currency.Option) (*currency.Normalizer, error) {
	rates, err := currency.LoadRates(cfg.RatesFile)
	if err != nil {
		return nil, err
	}
	n := currency.New(rates, opts...)
	if !n.Known(cfg.BaseCurrency) {
		return nil, fmt.Errorf("base currency %s has no rate, want one of %s",
			cfg.BaseCurrency, strings.Join(n.Codes(), ", "))
	}
	return n, nil
}

// InitAMQP connects to the broker when configured. It returns nil, and
// the binaries run without events, when AMQP is disabled or unreachable.
func InitAMQP(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	logger = logger.WithComponent(applog.ComponentAMQP)
	if !cfg.EventsEnabled() {
		logger.Info("AMQP disabled - ledger events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
