package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commands and results for the ledger operations. Commands are plain values;
// the operations never mutate them.

type CreateAccountCommand struct {
	OwnerName      string
	Currency       Currency
	InitialDeposit decimal.Decimal
}

type DepositCommand struct {
	AccountId string
	Amount    decimal.Decimal
	Note      string
}

type WithdrawCommand struct {
	AccountId string
	Amount    decimal.Decimal
	Note      string
}

type TransferCommand struct {
	FromAccountId string
	ToAccountId   string
	Amount        decimal.Decimal
	Note          string
}

type GetBalanceCommand struct {
	AccountId string
}

type ListTransactionsCommand struct {
	AccountId string
	Limit     int
	DateFrom  *time.Time
	DateTo    *time.Time
	Types     []TransactionType
}

type CreateAccountResult struct {
	AccountId      string
	OwnerName      string
	Currency       Currency
	Status         AccountStatus
	CreatedAt      time.Time
	InitialBalance decimal.Decimal
}

// MovementResult is returned by both Deposit and Withdraw.
type MovementResult struct {
	AccountId     string
	TransactionId string
	NewBalance    decimal.Decimal
	OccurredAt    time.Time
}

type TransferResult struct {
	TransferId     string
	FromAccountId  string
	ToAccountId    string
	DebitTxId      string
	CreditTxId     string
	FromNewBalance decimal.Decimal
	ToNewBalance   decimal.Decimal
	OccurredAt     time.Time
}

type BalanceResult struct {
	AccountId string
	Balance   decimal.Decimal
	AsOf      time.Time
}

type TransactionItem struct {
	TransactionId    string
	Type             TransactionType
	Amount           decimal.Decimal
	OccurredAt       time.Time
	RelatedAccountId string
	Note             string
}

type ListTransactionsResult struct {
	AccountId string
	Items     []TransactionItem
}
