package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// Service orchestrates the ledger operations. Every mutating operation is one
// atomic unit in the store; version conflicts retry the whole
// read-validate-apply cycle a bounded number of times.
type Service struct {
	store      store.LedgerStore
	clock      store.Clock
	ids        store.IdProvider
	events     store.EventPublisher
	currencies map[models.Currency]struct{}
	topic      string
	maxRetries int
}

// ServiceParams collects the collaborators for NewService. Events may be nil
// to disable publishing; Currencies defaults to the built-in set.
type ServiceParams struct {
	Store      store.LedgerStore
	Clock      store.Clock
	Ids        store.IdProvider
	Events     store.EventPublisher
	Currencies []models.Currency
	EventTopic string
	MaxRetries int
}

func NewService(params ServiceParams) *Service {
	currencies := params.Currencies
	if len(currencies) == 0 {
		currencies = models.DefaultCurrencies()
	}
	registered := make(map[models.Currency]struct{}, len(currencies))
	for _, c := range currencies {
		registered[c] = struct{}{}
	}

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Service{
		store:      params.Store,
		clock:      params.Clock,
		ids:        params.Ids,
		events:     params.Events,
		currencies: registered,
		topic:      params.EventTopic,
		maxRetries: maxRetries,
	}
}

// CreateAccount creates an ACTIVE account and, when the initial deposit is
// strictly positive, appends its opening DEPOSIT transaction with the same
// timestamp in the same atomic unit.
func (s *Service) CreateAccount(ctx context.Context, cmd models.CreateAccountCommand) (*models.CreateAccountResult, error) {
	owner := strings.TrimSpace(cmd.OwnerName)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner name must not be empty", store.ErrInvalidRequest)
	}
	if _, ok := s.currencies[cmd.Currency]; !ok {
		return nil, fmt.Errorf("%w: unsupported currency %q", store.ErrInvalidRequest, cmd.Currency)
	}
	initial := cmd.InitialDeposit
	if initial.Sign() < 0 {
		return nil, fmt.Errorf("%w: initial deposit must be >= 0", store.ErrInvalidRequest)
	}
	if initial.Exponent() < -2 {
		return nil, fmt.Errorf("%w: initial deposit must have at most 2 decimal places", store.ErrInvalidRequest)
	}

	now := s.clock.Now()
	accountId := s.ids.GenerateId()

	account := models.Account{
		Id:        accountId,
		OwnerName: owner,
		Currency:  cmd.Currency,
		Balance:   initial,
		Status:    models.StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var initialTx *models.Transaction
	if initial.Sign() > 0 {
		initialTx = &models.Transaction{
			Id:         s.ids.GenerateId(),
			AccountId:  accountId,
			Type:       models.TxDeposit,
			Amount:     initial,
			Currency:   cmd.Currency,
			OccurredAt: now,
			Note:       "initial deposit",
		}
	}

	if err := s.store.CreateAccount(ctx, account, initialTx); err != nil {
		return nil, err
	}

	zap.L().Info("Account created",
		zap.String("account_id", accountId),
		zap.String("owner", owner),
		zap.String("currency", string(cmd.Currency)),
		zap.String("initial_balance", initial.String()))

	return &models.CreateAccountResult{
		AccountId:      accountId,
		OwnerName:      owner,
		Currency:       cmd.Currency,
		Status:         models.StatusActive,
		CreatedAt:      now,
		InitialBalance: initial,
	}, nil
}

// Deposit appends a DEPOSIT transaction in the account's own currency and
// raises the balance cache by the amount.
func (s *Service) Deposit(ctx context.Context, cmd models.DepositCommand) (*models.MovementResult, error) {
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	var result *models.MovementResult
	err := s.withConflictRetry(ctx, "deposit", func() error {
		account, err := s.activeAccount(ctx, cmd.AccountId, "")
		if err != nil {
			return err
		}
		current, err := s.store.SumTransactions(ctx, account.Id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		txn := models.Transaction{
			Id:         s.ids.GenerateId(),
			AccountId:  account.Id,
			Type:       models.TxDeposit,
			Amount:     cmd.Amount,
			Currency:   account.Currency,
			OccurredAt: now,
			Note:       cmd.Note,
		}
		newBalance := current.Add(cmd.Amount)

		err = s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
			Transaction:     txn,
			NewBalance:      newBalance,
			ExpectedVersion: account.Version,
		})
		if err != nil {
			return err
		}

		result = &models.MovementResult{
			AccountId:     account.Id,
			TransactionId: txn.Id,
			NewBalance:    newBalance,
			OccurredAt:    now,
		}
		s.publishMovement(txn, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Withdraw appends a WITHDRAW transaction after checking the log-derived
// current balance covers the amount. Equality is accepted, so the balance may
// reach exactly zero.
func (s *Service) Withdraw(ctx context.Context, cmd models.WithdrawCommand) (*models.MovementResult, error) {
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	var result *models.MovementResult
	err := s.withConflictRetry(ctx, "withdraw", func() error {
		account, err := s.activeAccount(ctx, cmd.AccountId, "")
		if err != nil {
			return err
		}
		current, err := s.store.SumTransactions(ctx, account.Id)
		if err != nil {
			return err
		}
		if current.LessThan(cmd.Amount) {
			return fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientFunds, current.String(), cmd.Amount.String())
		}

		now := s.clock.Now()
		txn := models.Transaction{
			Id:         s.ids.GenerateId(),
			AccountId:  account.Id,
			Type:       models.TxWithdraw,
			Amount:     cmd.Amount,
			Currency:   account.Currency,
			OccurredAt: now,
			Note:       cmd.Note,
		}
		newBalance := current.Sub(cmd.Amount)

		err = s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
			Transaction:     txn,
			NewBalance:      newBalance,
			ExpectedVersion: account.Version,
		})
		if err != nil {
			return err
		}

		result = &models.MovementResult{
			AccountId:     account.Id,
			TransactionId: txn.Id,
			NewBalance:    newBalance,
			OccurredAt:    now,
		}
		s.publishMovement(txn, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves the amount between two same-currency accounts: a
// TRANSFER_OUT leg on the source and a TRANSFER_IN leg on the destination,
// sharing one timestamp, committed with both balance updates as one unit.
// The transfer id correlates the legs for the caller but is not persisted.
func (s *Service) Transfer(ctx context.Context, cmd models.TransferCommand) (*models.TransferResult, error) {
	if cmd.FromAccountId == cmd.ToAccountId {
		return nil, fmt.Errorf("%w: account %s", store.ErrSameAccountTransfer, cmd.FromAccountId)
	}
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	var result *models.TransferResult
	err := s.withConflictRetry(ctx, "transfer", func() error {
		from, err := s.activeAccount(ctx, cmd.FromAccountId, "source account")
		if err != nil {
			return err
		}
		to, err := s.activeAccount(ctx, cmd.ToAccountId, "destination account")
		if err != nil {
			return err
		}
		if from.Currency != to.Currency {
			return fmt.Errorf("%w: source is %s, destination is %s", store.ErrCurrencyMismatch, from.Currency, to.Currency)
		}

		fromBalance, err := s.store.SumTransactions(ctx, from.Id)
		if err != nil {
			return err
		}
		if fromBalance.LessThan(cmd.Amount) {
			return fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientFunds, fromBalance.String(), cmd.Amount.String())
		}
		toBalance, err := s.store.SumTransactions(ctx, to.Id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		transferId := s.ids.GenerateId()
		debit := models.Transaction{
			Id:               s.ids.GenerateId(),
			AccountId:        from.Id,
			Type:             models.TxTransferOut,
			Amount:           cmd.Amount,
			Currency:         from.Currency,
			OccurredAt:       now,
			RelatedAccountId: to.Id,
			Note:             cmd.Note,
		}
		credit := models.Transaction{
			Id:               s.ids.GenerateId(),
			AccountId:        to.Id,
			Type:             models.TxTransferIn,
			Amount:           cmd.Amount,
			Currency:         to.Currency,
			OccurredAt:       now,
			RelatedAccountId: from.Id,
			Note:             cmd.Note,
		}

		err = s.store.ApplyTransfer(ctx, store.ApplyTransferParams{
			Debit:          debit,
			Credit:         credit,
			FromNewBalance: fromBalance.Sub(cmd.Amount),
			ToNewBalance:   toBalance.Add(cmd.Amount),
			FromVersion:    from.Version,
			ToVersion:      to.Version,
		})
		if err != nil {
			return err
		}

		result = &models.TransferResult{
			TransferId:     transferId,
			FromAccountId:  from.Id,
			ToAccountId:    to.Id,
			DebitTxId:      debit.Id,
			CreditTxId:     credit.Id,
			FromNewBalance: fromBalance.Sub(cmd.Amount),
			ToNewBalance:   toBalance.Add(cmd.Amount),
			OccurredAt:     now,
		}
		s.publishMovement(debit, transferId)
		s.publishMovement(credit, transferId)
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transfer completed",
		zap.String("transfer_id", result.TransferId),
		zap.String("from_account", result.FromAccountId),
		zap.String("to_account", result.ToAccountId),
		zap.String("amount", cmd.Amount.String()))
	return result, nil
}

// GetBalance returns the log-derived balance as of the read instant. It uses
// the same derivation path as the withdrawal and transfer preconditions.
func (s *Service) GetBalance(ctx context.Context, cmd models.GetBalanceCommand) (*models.BalanceResult, error) {
	if _, err := s.store.GetAccount(ctx, cmd.AccountId); err != nil {
		return nil, err
	}

	balance, err := s.store.SumTransactions(ctx, cmd.AccountId)
	if err != nil {
		return nil, err
	}

	return &models.BalanceResult{
		AccountId: cmd.AccountId,
		Balance:   balance,
		AsOf:      s.clock.Now(),
	}, nil
}

// ListTransactions returns the account's history newest-first, capped at the
// limit. Date-range and type filters are honored.
func (s *Service) ListTransactions(ctx context.Context, cmd models.ListTransactionsCommand) (*models.ListTransactionsResult, error) {
	if cmd.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", store.ErrInvalidRequest)
	}
	if _, err := s.store.GetAccount(ctx, cmd.AccountId); err != nil {
		return nil, err
	}

	filter := store.TransactionFilter{
		DateFrom: cmd.DateFrom,
		DateTo:   cmd.DateTo,
		Types:    cmd.Types,
	}
	transactions, err := s.store.ListTransactions(ctx, cmd.AccountId, cmd.Limit, filter)
	if err != nil {
		return nil, err
	}

	items := make([]models.TransactionItem, 0, len(transactions))
	for _, txn := range transactions {
		items = append(items, models.TransactionItem{
			TransactionId:    txn.Id,
			Type:             txn.Type,
			Amount:           txn.Amount,
			OccurredAt:       txn.OccurredAt,
			RelatedAccountId: txn.RelatedAccountId,
			Note:             txn.Note,
		})
	}

	return &models.ListTransactionsResult{
		AccountId: cmd.AccountId,
		Items:     items,
	}, nil
}

// withConflictRetry re-runs the whole read-validate-apply cycle when the
// version guard fires. Any other error is terminal for the command.
func (s *Service) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, store.ErrConcurrencyConflict) {
			return err
		}
		zap.L().Warn("Retrying after version conflict",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.maxRetries))
	}
	return err
}

// activeAccount loads the account and requires ACTIVE status. side prefixes
// the error so transfer callers learn which end failed.
func (s *Service) activeAccount(ctx context.Context, accountId, side string) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, accountId)
	if err != nil {
		if side != "" && errors.Is(err, store.ErrAccountNotFound) {
			return nil, fmt.Errorf("%s: %w", side, err)
		}
		return nil, err
	}
	if account.Status != models.StatusActive {
		if side != "" {
			return nil, fmt.Errorf("%s %s has status %s: %w", side, accountId, account.Status, store.ErrAccountInactive)
		}
		return nil, fmt.Errorf("account %s has status %s: %w", accountId, account.Status, store.ErrAccountInactive)
	}
	return account, nil
}

func (s *Service) publishMovement(txn models.Transaction, transferId string) {
	if s.events == nil {
		return
	}
	event := models.TransactionCompleted{
		TransactionId:    txn.Id,
		TransferId:       transferId,
		AccountId:        txn.AccountId,
		RelatedAccountId: txn.RelatedAccountId,
		Type:             txn.Type,
		Amount:           txn.Amount,
		Currency:         txn.Currency,
		OccurredAt:       txn.OccurredAt,
	}
	if err := s.events.Publish(s.topic, event); err != nil {
		zap.L().Warn("Failed to publish transaction event",
			zap.String("transaction_id", txn.Id),
			zap.Error(err))
	}
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", store.ErrInvalidRequest)
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount must have at most 2 decimal places", store.ErrInvalidRequest)
	}
	return nil
}
