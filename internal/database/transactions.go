package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApplyTransaction appends one transaction and updates the owning account's
// balance cache in a single database transaction. The balance update is
// conditioned on the expected version; a mismatch rolls everything back.
func (s *Service) ApplyTransaction(ctx context.Context, params store.ApplyTransactionParams) error {
	txn := params.Transaction

	zap.L().Info("Applying transaction",
		zap.String("transaction_id", txn.Id),
		zap.String("account_id", txn.AccountId),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Amount.String()))

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

	zap.L().Info("Transaction applied successfully",
		zap.String("transaction_id", txn.Id),
		zap.String("account_id", txn.AccountId),
		zap.String("new_balance", params.NewBalance.String()))
	return nil
}

// ApplyTransfer commits both transfer legs and both guarded balance updates
// as one unit. Balance updates run in account-id order so concurrent
// transfers acquire row locks in a stable order.
func (s *Service) ApplyTransfer(ctx context.Context, params store.ApplyTransferParams) error {
	zap.L().Info("Applying transfer",
		zap.String("debit_tx_id", params.Debit.Id),
		zap.String("credit_tx_id", params.Credit.Id),
		zap.String("from_account", params.Debit.AccountId),
		zap.String("to_account", params.Credit.AccountId),
		zap.String("amount", params.Debit.Amount.String()))

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

	zap.L().Info("Transfer applied successfully",
		zap.String("from_account", params.Debit.AccountId),
		zap.String("to_account", params.Credit.AccountId))
	return nil
}

// SumTransactions returns the signed sum over the account's ledger, zero if
// none. Summing happens in Go so the decimals stay exact.
func (s *Service) SumTransactions(ctx context.Context, accountId string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, querySumTransactions, accountId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	balance := decimal.Zero
	for rows.Next() {
		var txType, amountStr string
		if err := rows.Scan(&txType, &amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan transaction: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		entry := models.Transaction{Type: models.TransactionType(txType), Amount: amount}
		balance = balance.Add(entry.SignedAmount())
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return balance, nil
}

// ListTransactions returns the account's transactions newest-first, capped at
// limit. Date-range and type filters narrow the result when set.
func (s *Service) ListTransactions(ctx context.Context, accountId string, limit int, filter store.TransactionFilter) ([]models.Transaction, error) {
	query := queryListTransactionsBase
	args := []any{accountId}

	if filter.DateFrom != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += " AND created_at <= ?"
		args = append(args, *filter.DateTo)
	}
	if len(filter.Types) > 0 {
		query += " AND type IN (?" + strings.Repeat(", ?", len(filter.Types)-1) + ")"
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}

	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
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

// insertTransaction appends a ledger entry inside an open database transaction.
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

// updateBalance performs the version-guarded balance cache update inside an
// open database transaction. Zero rows affected means either the account is
// gone or the version moved; both force the caller's unit to roll back.
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

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
