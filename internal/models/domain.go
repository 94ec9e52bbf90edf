package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is set at creation time; the ledger core never transitions it.
type AccountStatus string

const (
	StatusActive  AccountStatus = "ACTIVE"
	StatusBlocked AccountStatus = "BLOCKED"
	StatusClosed  AccountStatus = "CLOSED"
)

// Currency identifies a currency from the registered set (see common.LoadCurrencyConfig).
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
)

// DefaultCurrencies is the built-in currency set, used when no registry file
// is configured.
func DefaultCurrencies() []Currency {
	return []Currency{CurrencyPLN, CurrencyEUR}
}

type TransactionType string

const (
	TxDeposit     TransactionType = "DEPOSIT"
	TxWithdraw    TransactionType = "WITHDRAW"
	TxTransferIn  TransactionType = "TRANSFER_IN"
	TxTransferOut TransactionType = "TRANSFER_OUT"
)

// Account represents current account state. Balance is a materialized cache of
// the transaction log, updated in the same atomic unit as each append and
// guarded by Version.
type Account struct {
	Id        string          `db:"id"`
	OwnerName string          `db:"owner_name"`
	Currency  Currency        `db:"currency"`
	Balance   decimal.Decimal `db:"balance"`
	Status    AccountStatus   `db:"status"`
	Version   int64           `db:"version"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Transaction is an immutable, append-only ledger entry. Amount is always
// strictly positive; the sign of the movement follows from Type.
type Transaction struct {
	Id               string          `db:"id"`
	AccountId        string          `db:"account_id"`
	Type             TransactionType `db:"type"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         Currency        `db:"currency"`
	OccurredAt       time.Time       `db:"created_at"`
	RelatedAccountId string          `db:"related_account_id"`
	Note             string          `db:"note"`
}

// SignedAmount returns the amount with the sign the movement contributes to
// the owning account's balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	switch t.Type {
	case TxWithdraw, TxTransferOut:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}
