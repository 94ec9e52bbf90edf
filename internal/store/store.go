package store

import (
	"context"
	"errors"
	"time"

	"bank-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Closed error taxonomy shared across all backend implementations. Raw
// driver errors never cross the repository boundary; backends translate
// constraint violations into this set.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account inactive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrSameAccountTransfer = errors.New("transfer to the same account not allowed")
	ErrAlreadyExists       = errors.New("already exists")
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrConstraintViolation = errors.New("storage constraint violation")
)

// Clock provides the current UTC instant.
type Clock interface {
	Now() time.Time
}

// IdProvider generates identifiers unique with overwhelming probability.
// Collisions surface as ErrAlreadyExists from the store, never as a silent
// retry inside the provider.
type IdProvider interface {
	GenerateId() string
}

// EventPublisher publishes committed-movement events. Publishing is
// best-effort and never part of a store's atomic unit.
type EventPublisher interface {
	Publish(topic string, event any) error
}

// TransactionFilter narrows ListTransactions. Zero value means no filtering.
type TransactionFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Types    []models.TransactionType
}

// ApplyTransactionParams describes one movement: append the transaction and
// update the owning account's balance cache in a single atomic unit. The
// update is conditioned on ExpectedVersion; a mismatch rolls the unit back
// with ErrConcurrencyConflict.
type ApplyTransactionParams struct {
	Transaction     models.Transaction
	NewBalance      decimal.Decimal
	ExpectedVersion int64
}

// ApplyTransferParams describes both legs of a transfer. All four writes
// (two appends, two guarded balance updates) commit or none do.
type ApplyTransferParams struct {
	Debit           models.Transaction
	Credit          models.Transaction
	FromNewBalance  decimal.Decimal
	ToNewBalance    decimal.Decimal
	FromVersion     int64
	ToVersion       int64
}

// LedgerStore defines the contract that every backend (SQLite, PostgreSQL)
// must satisfy.
type LedgerStore interface {
	// CreateAccount persists a new account and, when initialDeposit is
	// non-nil, its opening DEPOSIT transaction in the same atomic unit.
	CreateAccount(ctx context.Context, account models.Account, initialDeposit *models.Transaction) error

	// GetAccount returns the account or ErrAccountNotFound.
	GetAccount(ctx context.Context, accountId string) (*models.Account, error)

	// ListAccounts returns accounts newest-created-first. limit <= 0 means
	// no limit.
	ListAccounts(ctx context.Context, limit int) ([]models.Account, error)

	ApplyTransaction(ctx context.Context, params ApplyTransactionParams) error
	ApplyTransfer(ctx context.Context, params ApplyTransferParams) error

	// SumTransactions returns the signed sum over the account's ledger,
	// zero if none. This is the correctness-critical balance derivation.
	SumTransactions(ctx context.Context, accountId string) (decimal.Decimal, error)

	// ListTransactions returns the account's transactions newest-first,
	// capped at limit.
	ListTransactions(ctx context.Context, accountId string, limit int, filter TransactionFilter) ([]models.Transaction, error)

	// ReconcileBalance verifies the stored balance cache against the signed
	// sum of the log; a mismatch reports ErrConstraintViolation.
	ReconcileBalance(ctx context.Context, accountId string) error

	Close()
}
