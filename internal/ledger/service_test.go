package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory store.LedgerStore with fault injection for
// version conflicts.
type fakeStore struct {
	accounts      map[string]*models.Account
	transactions  []models.Transaction
	conflictsLeft int
	applyCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*models.Account)}
}

func (f *fakeStore) CreateAccount(_ context.Context, account models.Account, initialDeposit *models.Transaction) error {
	if _, exists := f.accounts[account.Id]; exists {
		return fmt.Errorf("account %s: %w", account.Id, store.ErrAlreadyExists)
	}
	copied := account
	f.accounts[account.Id] = &copied
	if initialDeposit != nil {
		f.transactions = append(f.transactions, *initialDeposit)
	}
	return nil
}

func (f *fakeStore) GetAccount(_ context.Context, accountId string) (*models.Account, error) {
	account, ok := f.accounts[accountId]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
	}
	copied := *account
	return &copied, nil
}

func (f *fakeStore) ListAccounts(_ context.Context, limit int) ([]models.Account, error) {
	var accounts []models.Account
	for _, account := range f.accounts {
		accounts = append(accounts, *account)
		if limit > 0 && len(accounts) == limit {
			break
		}
	}
	return accounts, nil
}

func (f *fakeStore) ApplyTransaction(_ context.Context, params store.ApplyTransactionParams) error {
	f.applyCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return fmt.Errorf("account %s: %w", params.Transaction.AccountId, store.ErrConcurrencyConflict)
	}
	account, ok := f.accounts[params.Transaction.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", params.Transaction.AccountId, store.ErrAccountNotFound)
	}
	if account.Version != params.ExpectedVersion {
		return fmt.Errorf("account %s: %w", account.Id, store.ErrConcurrencyConflict)
	}
	f.transactions = append(f.transactions, params.Transaction)
	account.Balance = params.NewBalance
	account.Version++
	return nil
}

func (f *fakeStore) ApplyTransfer(_ context.Context, params store.ApplyTransferParams) error {
	f.applyCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return fmt.Errorf("account %s: %w", params.Debit.AccountId, store.ErrConcurrencyConflict)
	}
	from, ok := f.accounts[params.Debit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", params.Debit.AccountId, store.ErrAccountNotFound)
	}
	to, ok := f.accounts[params.Credit.AccountId]
	if !ok {
		return fmt.Errorf("account %s: %w", params.Credit.AccountId, store.ErrAccountNotFound)
	}
	if from.Version != params.FromVersion || to.Version != params.ToVersion {
		return fmt.Errorf("transfer: %w", store.ErrConcurrencyConflict)
	}
	f.transactions = append(f.transactions, params.Debit, params.Credit)
	from.Balance = params.FromNewBalance
	from.Version++
	to.Balance = params.ToNewBalance
	to.Version++
	return nil
}

func (f *fakeStore) SumTransactions(_ context.Context, accountId string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, txn := range f.transactions {
		if txn.AccountId != accountId {
			continue
		}
		switch txn.Type {
		case models.TxWithdraw, models.TxTransferOut:
			sum = sum.Sub(txn.Amount)
		default:
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, accountId string, limit int, filter store.TransactionFilter) ([]models.Transaction, error) {
	var matched []models.Transaction
	for i := len(f.transactions) - 1; i >= 0; i-- {
		txn := f.transactions[i]
		if txn.AccountId != accountId {
			continue
		}
		if filter.DateFrom != nil && txn.OccurredAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && txn.OccurredAt.After(*filter.DateTo) {
			continue
		}
		if len(filter.Types) > 0 {
			found := false
			for _, t := range filter.Types {
				if txn.Type == t {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, txn)
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (f *fakeStore) ReconcileBalance(_ context.Context, _ string) error { return nil }

func (f *fakeStore) Close() {}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIds struct {
	n int
}

func (s *seqIds) GenerateId() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type capturePublisher struct {
	topics []string
	events []models.TransactionCompleted
	err    error
}

func (p *capturePublisher) Publish(topic string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event.(models.TransactionCompleted))
	return nil
}

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func newTestService(fs *fakeStore, publisher *capturePublisher) *Service {
	params := ServiceParams{
		Store:      fs,
		Clock:      fixedClock{now: testNow},
		Ids:        &seqIds{},
		EventTopic: "transaction_completed",
		MaxRetries: 3,
	}
	if publisher != nil {
		params.Events = publisher
	}
	return NewService(params)
}

func seedAccount(fs *fakeStore, id string, currency models.Currency, status models.AccountStatus, balance string) {
	fs.accounts[id] = &models.Account{
		Id:        id,
		OwnerName: "Owner " + id,
		Currency:  currency,
		Balance:   decimal.RequireFromString(balance),
		Status:    status,
		Version:   1,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if b := decimal.RequireFromString(balance); b.Sign() > 0 {
		fs.transactions = append(fs.transactions, models.Transaction{
			Id:         "seed-" + id,
			AccountId:  id,
			Type:       models.TxDeposit,
			Amount:     b,
			Currency:   currency,
			OccurredAt: testNow,
		})
	}
}

func TestCreateAccount(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)

	result, err := service.CreateAccount(context.Background(), models.CreateAccountCommand{
		OwnerName:      "  Jan Kowalski  ",
		Currency:       models.CurrencyPLN,
		InitialDeposit: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if result.OwnerName != "Jan Kowalski" {
		t.Errorf("Expected trimmed owner name, got %q", result.OwnerName)
	}
	if result.Status != models.StatusActive {
		t.Errorf("Expected ACTIVE status, got %s", result.Status)
	}
	if !result.CreatedAt.Equal(testNow) {
		t.Errorf("Expected creation time %v, got %v", testNow, result.CreatedAt)
	}

	account := fs.accounts[result.AccountId]
	if account == nil {
		t.Fatalf("Account not persisted")
	}
	if account.Version != 1 {
		t.Errorf("Expected initial version 1, got %d", account.Version)
	}
	if len(fs.transactions) != 0 {
		t.Errorf("Expected no transactions for zero initial deposit, got %d", len(fs.transactions))
	}
}

func TestCreateAccount_InitialDeposit(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)

	initial := decimal.RequireFromString("100.50")
	result, err := service.CreateAccount(context.Background(), models.CreateAccountCommand{
		OwnerName:      "Jan Kowalski",
		Currency:       models.CurrencyPLN,
		InitialDeposit: initial,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if !result.InitialBalance.Equal(initial) {
		t.Errorf("Expected initial balance %s, got %s", initial.String(), result.InitialBalance.String())
	}
	if len(fs.transactions) != 1 {
		t.Fatalf("Expected 1 opening transaction, got %d", len(fs.transactions))
	}

	txn := fs.transactions[0]
	if txn.Type != models.TxDeposit {
		t.Errorf("Expected DEPOSIT, got %s", txn.Type)
	}
	if txn.Note != "initial deposit" {
		t.Errorf("Expected note 'initial deposit', got %q", txn.Note)
	}
	if !txn.OccurredAt.Equal(result.CreatedAt) {
		t.Errorf("Expected opening transaction to share the account timestamp")
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  models.CreateAccountCommand
	}{
		{"empty owner", models.CreateAccountCommand{OwnerName: "", Currency: models.CurrencyPLN}},
		{"whitespace owner", models.CreateAccountCommand{OwnerName: "   ", Currency: models.CurrencyPLN}},
		{"unsupported currency", models.CreateAccountCommand{OwnerName: "Jan", Currency: "XYZ"}},
		{"negative initial", models.CreateAccountCommand{OwnerName: "Jan", Currency: models.CurrencyPLN, InitialDeposit: decimal.RequireFromString("-1.00")}},
		{"too many decimals", models.CreateAccountCommand{OwnerName: "Jan", Currency: models.CurrencyPLN, InitialDeposit: decimal.RequireFromString("1.001")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateAccount(ctx, tc.cmd)
			if !errors.Is(err, store.ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got: %v", err)
			}
		})
	}

	if len(fs.accounts) != 0 {
		t.Errorf("Expected no accounts persisted, got %d", len(fs.accounts))
	}
}

func TestDeposit(t *testing.T) {
	fs := newFakeStore()
	publisher := &capturePublisher{}
	service := newTestService(fs, publisher)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "50.00")

	result, err := service.Deposit(context.Background(), models.DepositCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("25.25"),
		Note:      "salary",
	})
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	expected := decimal.RequireFromString("75.25")
	if !result.NewBalance.Equal(expected) {
		t.Errorf("Expected new balance %s, got %s", expected.String(), result.NewBalance.String())
	}
	if fs.accounts["acc1"].Version != 2 {
		t.Errorf("Expected version bump to 2, got %d", fs.accounts["acc1"].Version)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Type != models.TxDeposit || event.AccountId != "acc1" {
		t.Errorf("Unexpected event: %+v", event)
	}
	if publisher.topics[0] != "transaction_completed" {
		t.Errorf("Expected topic transaction_completed, got %s", publisher.topics[0])
	}
}

func TestDeposit_Validation(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "0")
	ctx := context.Background()

	for _, amount := range []string{"0", "-5.00", "1.005"} {
		_, err := service.Deposit(ctx, models.DepositCommand{
			AccountId: "acc1",
			Amount:    decimal.RequireFromString(amount),
		})
		if !errors.Is(err, store.ErrInvalidRequest) {
			t.Errorf("Amount %s: expected ErrInvalidRequest, got: %v", amount, err)
		}
	}
	if fs.applyCalls != 0 {
		t.Errorf("Expected no store writes for invalid amounts, got %d", fs.applyCalls)
	}
}

func TestDeposit_InactiveAccount(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "blocked", models.CurrencyPLN, models.StatusBlocked, "10.00")
	seedAccount(fs, "closed", models.CurrencyPLN, models.StatusClosed, "10.00")
	ctx := context.Background()

	for _, accountId := range []string{"blocked", "closed"} {
		_, err := service.Deposit(ctx, models.DepositCommand{
			AccountId: accountId,
			Amount:    decimal.RequireFromString("5.00"),
		})
		if !errors.Is(err, store.ErrAccountInactive) {
			t.Errorf("Account %s: expected ErrAccountInactive, got: %v", accountId, err)
		}
	}
}

func TestDeposit_RetriesOnConflict(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "0")
	fs.conflictsLeft = 2

	result, err := service.Deposit(context.Background(), models.DepositCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("Expected deposit to succeed after retries, got: %v", err)
	}
	if fs.applyCalls != 3 {
		t.Errorf("Expected 3 apply attempts, got %d", fs.applyCalls)
	}
	if !result.NewBalance.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected balance 10.00, got %s", result.NewBalance.String())
	}
}

func TestDeposit_ConflictRetriesExhausted(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "0")
	fs.conflictsLeft = 10

	_, err := service.Deposit(context.Background(), models.DepositCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, store.ErrConcurrencyConflict) {
		t.Fatalf("Expected ErrConcurrencyConflict, got: %v", err)
	}
	if fs.applyCalls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", fs.applyCalls)
	}
}

func TestWithdraw(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")

	result, err := service.Withdraw(context.Background(), models.WithdrawCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("40.00"),
	})
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !result.NewBalance.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("Expected balance 60.00, got %s", result.NewBalance.String())
	}
}

func TestWithdraw_ToExactlyZero(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")

	result, err := service.Withdraw(context.Background(), models.WithdrawCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("Expected full withdrawal to succeed, got: %v", err)
	}
	if !result.NewBalance.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", result.NewBalance.String())
	}
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "10.00")

	_, err := service.Withdraw(context.Background(), models.WithdrawCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("10.01"),
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got: %v", err)
	}
	if fs.applyCalls != 0 {
		t.Errorf("Expected no store write on insufficient funds, got %d", fs.applyCalls)
	}
}

func TestTransfer(t *testing.T) {
	fs := newFakeStore()
	publisher := &capturePublisher{}
	service := newTestService(fs, publisher)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")
	seedAccount(fs, "acc2", models.CurrencyPLN, models.StatusActive, "0")

	result, err := service.Transfer(context.Background(), models.TransferCommand{
		FromAccountId: "acc1",
		ToAccountId:   "acc2",
		Amount:        decimal.RequireFromString("30.00"),
		Note:          "rent",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if !result.FromNewBalance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("Expected source balance 70.00, got %s", result.FromNewBalance.String())
	}
	if !result.ToNewBalance.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("Expected destination balance 30.00, got %s", result.ToNewBalance.String())
	}
	if result.TransferId == "" || result.DebitTxId == result.CreditTxId {
		t.Errorf("Expected distinct leg ids and a transfer id, got %+v", result)
	}

	debit := fs.transactions[len(fs.transactions)-2]
	credit := fs.transactions[len(fs.transactions)-1]
	if debit.Type != models.TxTransferOut || credit.Type != models.TxTransferIn {
		t.Fatalf("Expected TRANSFER_OUT then TRANSFER_IN, got %s and %s", debit.Type, credit.Type)
	}
	if debit.RelatedAccountId != "acc2" || credit.RelatedAccountId != "acc1" {
		t.Errorf("Expected cross-referencing legs, got %q and %q", debit.RelatedAccountId, credit.RelatedAccountId)
	}
	if !debit.OccurredAt.Equal(credit.OccurredAt) {
		t.Errorf("Expected both legs to share a timestamp")
	}
	if debit.Note != "rent" || credit.Note != "rent" {
		t.Errorf("Expected note on both legs, got %q and %q", debit.Note, credit.Note)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(publisher.events))
	}
	if publisher.events[0].TransferId != publisher.events[1].TransferId {
		t.Errorf("Expected both events to share the transfer id")
	}
	if publisher.events[0].TransferId != result.TransferId {
		t.Errorf("Expected event transfer id %s, got %s", result.TransferId, publisher.events[0].TransferId)
	}
}

func TestTransfer_SameAccount(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")

	_, err := service.Transfer(context.Background(), models.TransferCommand{
		FromAccountId: "acc1",
		ToAccountId:   "acc1",
		Amount:        decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, store.ErrSameAccountTransfer) {
		t.Fatalf("Expected ErrSameAccountTransfer, got: %v", err)
	}
}

func TestTransfer_CurrencyMismatch(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")
	seedAccount(fs, "acc2", models.CurrencyEUR, models.StatusActive, "0")

	_, err := service.Transfer(context.Background(), models.TransferCommand{
		FromAccountId: "acc1",
		ToAccountId:   "acc2",
		Amount:        decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, store.ErrCurrencyMismatch) {
		t.Fatalf("Expected ErrCurrencyMismatch, got: %v", err)
	}
	if fs.applyCalls != 0 {
		t.Errorf("Expected no store write on currency mismatch, got %d", fs.applyCalls)
	}
}

func TestTransfer_DestinationMissing(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "100.00")

	_, err := service.Transfer(context.Background(), models.TransferCommand{
		FromAccountId: "acc1",
		ToAccountId:   "missing",
		Amount:        decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got: %v", err)
	}
	if !strings.Contains(err.Error(), "destination account") {
		t.Errorf("Expected error to name the destination side, got: %v", err)
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "5.00")
	seedAccount(fs, "acc2", models.CurrencyPLN, models.StatusActive, "0")

	_, err := service.Transfer(context.Background(), models.TransferCommand{
		FromAccountId: "acc1",
		ToAccountId:   "acc2",
		Amount:        decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got: %v", err)
	}
}

func TestGetBalance_DerivedFromTransactions(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "80.00")

	// Drift the cache; the balance must come from the transaction log.
	fs.accounts["acc1"].Balance = decimal.RequireFromString("999.99")

	result, err := service.GetBalance(context.Background(), models.GetBalanceCommand{AccountId: "acc1"})
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !result.Balance.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("Expected log-derived balance 80.00, got %s", result.Balance.String())
	}
	if !result.AsOf.Equal(testNow) {
		t.Errorf("Expected as-of %v, got %v", testNow, result.AsOf)
	}
}

func TestGetBalance_NotFound(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)

	_, err := service.GetBalance(context.Background(), models.GetBalanceCommand{AccountId: "missing"})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got: %v", err)
	}
}

func TestListTransactions(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "0")

	for i, id := range []string{"t1", "t2", "t3"} {
		fs.transactions = append(fs.transactions, models.Transaction{
			Id:         id,
			AccountId:  "acc1",
			Type:       models.TxDeposit,
			Amount:     decimal.RequireFromString("1.00"),
			Currency:   models.CurrencyPLN,
			OccurredAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}

	result, err := service.ListTransactions(context.Background(), models.ListTransactionsCommand{
		AccountId: "acc1",
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].TransactionId != "t3" || result.Items[1].TransactionId != "t2" {
		t.Errorf("Expected newest-first t3,t2, got %s,%s",
			result.Items[0].TransactionId, result.Items[1].TransactionId)
	}
}

func TestListTransactions_InvalidLimit(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)

	// The limit is rejected before the account lookup, so even a missing
	// account reports the invalid request.
	for _, limit := range []int{0, -1} {
		_, err := service.ListTransactions(context.Background(), models.ListTransactionsCommand{
			AccountId: "missing",
			Limit:     limit,
		})
		if !errors.Is(err, store.ErrInvalidRequest) {
			t.Errorf("Limit %d: expected ErrInvalidRequest, got: %v", limit, err)
		}
	}
}

func TestListTransactions_AccountNotFound(t *testing.T) {
	fs := newFakeStore()
	service := newTestService(fs, nil)

	_, err := service.ListTransactions(context.Background(), models.ListTransactionsCommand{
		AccountId: "missing",
		Limit:     10,
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got: %v", err)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	fs := newFakeStore()
	publisher := &capturePublisher{err: errors.New("broker down")}
	service := newTestService(fs, publisher)
	seedAccount(fs, "acc1", models.CurrencyPLN, models.StatusActive, "0")

	result, err := service.Deposit(context.Background(), models.DepositCommand{
		AccountId: "acc1",
		Amount:    decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("Expected deposit to succeed despite publish failure, got: %v", err)
	}
	if !result.NewBalance.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected balance 10.00, got %s", result.NewBalance.String())
	}
}
