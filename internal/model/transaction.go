// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single signed financial event. The accounting
// meaning of Amount's sign depends on the (BaseAction, PaymentMode) pair;
// the taxonomy package owns that interpretation.
//
// Transactions are immutable once created. Edits are modeled as
// delete-then-recreate so stock and ledger effects stay symmetric.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	BaseAction  BaseAction
	PaymentMode PaymentMode
	Description string
	Items       []TransactionItem
	Amount      decimal.Decimal
	ID          int64
	UserID      *int64
	LenderID    *int64
	AgreementID *int64
	InvoiceID   *int64
}

// TransactionItem is one signed stock movement attached to a transaction.
// Quantity is negative for stock leaving the business (sales) and positive
// for stock coming in (returns, purchases, adjustments up).
type TransactionItem struct {
	UnitPrice     decimal.Decimal
	ID            int64
	TransactionID int64
	ProductID     int64
	Quantity      int64
}

// Day truncates a time to its calendar date in UTC. All transaction dates
// are stored and compared at day granularity; same-day ordering falls back
// to the transaction ID.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
