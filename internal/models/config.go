package models

import "time"

// Config represents the application configuration
type Config struct {
	Backend  string // "sqlite" or "postgres"
	Database DatabaseConfig
	Ledger   LedgerConfig
	Events   EventsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string // SQLite file path
	URL             string // PostgreSQL DSN
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// LedgerConfig holds ledger operation settings
type LedgerConfig struct {
	CurrenciesFile    string
	DefaultTxLimit    int
	MaxRetries        int
	ReconcileInterval time.Duration
}

// EventsConfig holds transaction event publishing settings.
// Publishing is disabled when Brokers is empty.
type EventsConfig struct {
	Brokers []string
	Topic   string
}
