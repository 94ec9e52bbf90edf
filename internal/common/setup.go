package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bank-ledger-go/internal/database"
	"bank-ledger-go/internal/events"
	kafkaevents "bank-ledger-go/internal/events/kafka"
	"bank-ledger-go/internal/ledger"
	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/postgres"
	"bank-ledger-go/internal/providers"
	"bank-ledger-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		// Only log if the file exists but couldn't be read
		// (godotenv returns an error if .env doesn't exist)
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store     store.LedgerStore
	Ledger    *ledger.Service
	publisher *kafkaevents.Publisher
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	ledgerStore, err := initializeStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	currencies, err := loadCurrencies(cfg.Ledger.CurrenciesFile)
	if err != nil {
		ledgerStore.Close()
		return nil, err
	}

	services := &Services{Store: ledgerStore}

	var publisher store.EventPublisher
	if len(cfg.Events.Brokers) > 0 {
		zap.L().Info("Enabling transaction event publishing",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic))
		services.publisher = kafkaevents.NewPublisher(cfg.Events.Brokers)
		publisher = services.publisher
	} else {
		publisher = events.NewNopPublisher()
	}

	services.Ledger = ledger.NewService(ledger.ServiceParams{
		Store:      ledgerStore,
		Clock:      providers.SystemClock{},
		Ids:        providers.UUIDProvider{},
		Events:     publisher,
		Currencies: currencies,
		EventTopic: cfg.Events.Topic,
		MaxRetries: cfg.Ledger.MaxRetries,
	})

	return services, nil
}

func initializeStore(ctx context.Context, cfg *models.Config) (store.LedgerStore, error) {
	switch cfg.Backend {
	case "postgres":
		zap.L().Info("Using PostgreSQL backend")
		return postgres.NewService(ctx, cfg.Database)
	case "sqlite":
		zap.L().Info("Using SQLite backend", zap.String("path", cfg.Database.Path))
		return database.NewService(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Backend)
	}
}

func (cs *Services) Close() {
	if cs.publisher != nil {
		if err := cs.publisher.Close(); err != nil {
			zap.L().Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func loadCurrencies(currenciesFile string) ([]models.Currency, error) {
	if currenciesFile == "" {
		return models.DefaultCurrencies(), nil
	}
	return LoadCurrencyConfig(currenciesFile)
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
