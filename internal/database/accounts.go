package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccount persists a new account and, when initialDeposit is non-nil,
// its opening DEPOSIT transaction in one database transaction.
func (s *Service) CreateAccount(ctx context.Context, account models.Account, initialDeposit *models.Transaction) error {
	zap.L().Info("Creating account",
		zap.String("account_id", account.Id),
		zap.String("owner", account.OwnerName),
		zap.String("currency", string(account.Currency)))

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

	zap.L().Info("Account created successfully", zap.String("account_id", account.Id))
	return nil
}

// GetAccount returns the account or store.ErrAccountNotFound.
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

// ListAccounts returns accounts newest-created-first. limit <= 0 means no limit.
func (s *Service) ListAccounts(ctx context.Context, limit int) ([]models.Account, error) {
	query := queryListAccounts
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
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

// ReconcileBalance verifies that the stored balance cache matches the signed
// sum of the account's transactions.
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
			zap.String("computed_balance", computed.String()),
			zap.String("difference", account.Balance.Sub(computed).String()))
		return fmt.Errorf("balance mismatch for account %s: stored=%s computed=%s: %w",
			accountId, account.Balance.String(), computed.String(), store.ErrConstraintViolation)
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account_id", accountId),
		zap.String("balance", account.Balance.String()))
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
