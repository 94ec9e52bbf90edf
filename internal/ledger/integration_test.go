package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"bank-ledger-go/internal/database"
	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/providers"
	"bank-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupIntegrationService(t *testing.T) (*Service, store.LedgerStore, func()) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=ON")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	dbService := database.NewServiceWithDB(db)
	if err := dbService.InitSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	service := NewService(ServiceParams{
		Store: dbService,
		Clock: providers.SystemClock{},
		Ids:   providers.UUIDProvider{},
	})

	cleanup := func() {
		db.Close()
	}
	return service, dbService, cleanup
}

func TestLedgerEndToEnd(t *testing.T) {
	service, dbService, cleanup := setupIntegrationService(t)
	defer cleanup()

	ctx := context.Background()

	alice, err := service.CreateAccount(ctx, models.CreateAccountCommand{
		OwnerName: "Alice",
		Currency:  models.CurrencyPLN,
	})
	if err != nil {
		t.Fatalf("CreateAccount Alice failed: %v", err)
	}
	bob, err := service.CreateAccount(ctx, models.CreateAccountCommand{
		OwnerName: "Bob",
		Currency:  models.CurrencyPLN,
	})
	if err != nil {
		t.Fatalf("CreateAccount Bob failed: %v", err)
	}

	if _, err := service.Deposit(ctx, models.DepositCommand{
		AccountId: alice.AccountId,
		Amount:    decimal.RequireFromString("200.00"),
		Note:      "opening funds",
	}); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if _, err := service.Withdraw(ctx, models.WithdrawCommand{
		AccountId: alice.AccountId,
		Amount:    decimal.RequireFromString("50.00"),
	}); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	transfer, err := service.Transfer(ctx, models.TransferCommand{
		FromAccountId: alice.AccountId,
		ToAccountId:   bob.AccountId,
		Amount:        decimal.RequireFromString("100.00"),
		Note:          "rent",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !transfer.FromNewBalance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected Alice balance 50.00 after transfer, got %s", transfer.FromNewBalance.String())
	}

	aliceBalance, err := service.GetBalance(ctx, models.GetBalanceCommand{AccountId: alice.AccountId})
	if err != nil {
		t.Fatalf("GetBalance Alice failed: %v", err)
	}
	if !aliceBalance.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected Alice balance 50.00, got %s", aliceBalance.Balance.String())
	}

	bobBalance, err := service.GetBalance(ctx, models.GetBalanceCommand{AccountId: bob.AccountId})
	if err != nil {
		t.Fatalf("GetBalance Bob failed: %v", err)
	}
	if !bobBalance.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Expected Bob balance 100.00, got %s", bobBalance.Balance.String())
	}

	history, err := service.ListTransactions(ctx, models.ListTransactionsCommand{
		AccountId: alice.AccountId,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(history.Items) != 3 {
		t.Fatalf("Expected 3 transactions for Alice, got %d", len(history.Items))
	}
	if history.Items[0].Type != models.TxTransferOut ||
		history.Items[1].Type != models.TxWithdraw ||
		history.Items[2].Type != models.TxDeposit {
		t.Errorf("Expected newest-first TRANSFER_OUT,WITHDRAW,DEPOSIT, got %s,%s,%s",
			history.Items[0].Type, history.Items[1].Type, history.Items[2].Type)
	}

	for _, accountId := range []string{alice.AccountId, bob.AccountId} {
		if err := dbService.ReconcileBalance(ctx, accountId); err != nil {
			t.Errorf("Reconciliation failed for %s: %v", accountId, err)
		}
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	service, dbService, cleanup := setupIntegrationService(t)
	defer cleanup()

	ctx := context.Background()

	account, err := service.CreateAccount(ctx, models.CreateAccountCommand{
		OwnerName:      "Alice",
		Currency:       models.CurrencyPLN,
		InitialDeposit: decimal.RequireFromString("200.00"),
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	const workers = 5
	amount := decimal.RequireFromString("50.00")

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Withdraw(ctx, models.WithdrawCommand{
				AccountId: account.AccountId,
				Amount:    amount,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrInsufficientFunds), errors.Is(err, store.ErrConcurrencyConflict):
			// acceptable losses under contention
		default:
			t.Errorf("Unexpected withdrawal error: %v", err)
		}
	}

	balance, err := service.GetBalance(ctx, models.GetBalanceCommand{AccountId: account.AccountId})
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}

	expected := decimal.RequireFromString("200.00").Sub(amount.Mul(decimal.NewFromInt(int64(succeeded))))
	if !balance.Balance.Equal(expected) {
		t.Errorf("Expected balance %s after %d withdrawals, got %s",
			expected.String(), succeeded, balance.Balance.String())
	}
	if balance.Balance.Sign() < 0 {
		t.Errorf("Balance must never go negative, got %s", balance.Balance.String())
	}

	if err := dbService.ReconcileBalance(ctx, account.AccountId); err != nil {
		t.Errorf("Reconciliation failed: %v", err)
	}
}
