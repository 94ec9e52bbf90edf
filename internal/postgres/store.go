/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

// Service is the PostgreSQL implementation of store.LedgerStore.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening PostgreSQL database")
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_name TEXT NOT NULL,
		currency TEXT NOT NULL,
		balance NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		status TEXT NOT NULL CHECK (status IN ('ACTIVE','BLOCKED','CLOSED')),
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		seq BIGSERIAL,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		type TEXT NOT NULL CHECK (type IN ('DEPOSIT','WITHDRAW','TRANSFER_IN','TRANSFER_OUT')),
		amount NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		currency TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		related_account_id TEXT REFERENCES accounts(id),
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_created_at ON transactions(account_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Service) CreateAccount(ctx context.Context, account models.Account, initialDeposit *models.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, queryInsertAccount,
		account.Id, account.OwnerName, string(account.Currency), account.Balance.String(),
		string(account.Status), account.Version, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if translated := translateConstraintErr(err); translated != err {
			return fmt.Errorf("account %s: %w", account.Id, translated)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	if initialDeposit != nil {
		if err := insertTransaction(ctx, dbTx, *initialDeposit); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account creation: %w", err)
	}
	return nil
}

func (s *Service) GetAccount(ctx context.Context, accountId string) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccount, accountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context, limit int) ([]models.Account, error) {
	query := queryListAccounts
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (s *Service) ApplyTransaction(ctx context.Context, params store.ApplyTransactionParams) error {
	txn := params.Transaction

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertTransaction(ctx, dbTx, txn); err != nil {
		return err
	}
	if err := updateBalance(ctx, dbTx, txn.AccountId, params.NewBalance, params.ExpectedVersion, txn.OccurredAt); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Service) ApplyTransfer(ctx context.Context, params store.ApplyTransferParams) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertTransaction(ctx, dbTx, params.Debit); err != nil {
		return err
	}
	if err := insertTransaction(ctx, dbTx, params.Credit); err != nil {
		return err
	}

	updates := []struct {
		accountId string
		balance   decimal.Decimal
		version   int64
		updatedAt time.Time
	}{
		{params.Debit.AccountId, params.FromNewBalance, params.FromVersion, params.Debit.OccurredAt},
		{params.Credit.AccountId, params.ToNewBalance, params.ToVersion, params.Credit.OccurredAt},
	}
	// Stable lock order for concurrent transfers touching the same pair.
	if updates[1].accountId < updates[0].accountId {
		updates[0], updates[1] = updates[1], updates[0]
	}

	for _, u := range updates {
		if err := updateBalance(ctx, dbTx, u.accountId, u.balance, u.version, u.updatedAt); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}
	return nil
}

func (s *Service) SumTransactions(ctx context.Context, accountId string) (decimal.Decimal, error) {
	var sumStr string
	err := s.db.QueryRowContext(ctx, querySumTransactions, accountId).Scan(&sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse sum %q: %w", sumStr, err)
	}
	return sum, nil
}

func (s *Service) ListTransactions(ctx context.Context, accountId string, limit int, filter store.TransactionFilter) ([]models.Transaction, error) {
	query := queryListTransactionsBase
	args := []any{accountId}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			args = append(args, string(t))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY created_at DESC, seq DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var txType, currency, amountStr string
		var relatedAccountId, note sql.NullString
		err := rows.Scan(&txn.Id, &txn.AccountId, &txType, &amountStr, &currency,
			&txn.OccurredAt, &relatedAccountId, &note)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.Type = models.TransactionType(txType)
		txn.Currency = models.Currency(currency)
		txn.RelatedAccountId = relatedAccountId.String
		txn.Note = note.String
		txn.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}

		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func (s *Service) ReconcileBalance(ctx context.Context, accountId string) error {
	account, err := s.GetAccount(ctx, accountId)
	if err != nil {
		return err
	}

	computed, err := s.SumTransactions(ctx, accountId)
	if err != nil {
		return fmt.Errorf("failed to compute balance from transactions: %w", err)
	}

	if !account.Balance.Equal(computed) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account_id", accountId),
			zap.String("stored_balance", account.Balance.String()),
			zap.String("computed_balance", computed.String()))
		return fmt.Errorf("balance mismatch for account %s: stored=%s computed=%s: %w",
			accountId, account.Balance.String(), computed.String(), store.ErrConstraintViolation)
	}
	return nil
}

func insertTransaction(ctx context.Context, dbTx *sql.Tx, txn models.Transaction) error {
	_, err := dbTx.ExecContext(ctx, queryInsertTransaction,
		txn.Id, txn.AccountId, string(txn.Type), txn.Amount.String(), string(txn.Currency),
		txn.OccurredAt, nullIfEmpty(txn.RelatedAccountId), nullIfEmpty(txn.Note))
	if err != nil {
		if translated := translateConstraintErr(err); translated != err {
			return fmt.Errorf("transaction %s: %w", txn.Id, translated)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func updateBalance(ctx context.Context, dbTx *sql.Tx, accountId string, newBalance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	result, err := dbTx.ExecContext(ctx, queryUpdateAccountBalance,
		newBalance.String(), updatedAt, accountId, expectedVersion)
	if err != nil {
		if translated := translateConstraintErr(err); translated != err {
			return fmt.Errorf("account %s: %w", accountId, translated)
		}
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := dbTx.QueryRowContext(ctx, queryAccountExists, accountId).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		return fmt.Errorf("account %s: %w", accountId, store.ErrConcurrencyConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var currency, status, balanceStr string
	err := row.Scan(&account.Id, &account.OwnerName, &currency, &balanceStr,
		&status, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Currency = models.Currency(currency)
	account.Status = models.AccountStatus(status)
	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return &account, nil
}

// translateConstraintErr maps PostgreSQL error classes into the closed error
// taxonomy. 23505 unique_violation, 23503 foreign_key_violation, 23514/23502
// check and not-null violations.
func translateConstraintErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return store.ErrAlreadyExists
	case "23503":
		return store.ErrAccountNotFound
	case "23514", "23502":
		return store.ErrConstraintViolation
	}
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
