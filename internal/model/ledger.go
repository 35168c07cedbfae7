package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one classified line of a ledger report. Exactly one of
// Debit (money in) or Credit (money out) is nonzero; both are reported as
// absolute values for display.
type LedgerEntry struct {
	Label       string
	Transaction Transaction
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Running     decimal.Decimal
}

// LedgerReport is the derived view of one physical ledger on one date:
// opening balance from all prior days, the day's entries in insertion
// order with a running balance, and the day's totals.
type LedgerReport struct {
	Date        time.Time
	Kind        LedgerKind
	Warnings    []string
	Entries     []LedgerEntry
	Opening     decimal.Decimal
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	NetChange   decimal.Decimal
	Closing     decimal.Decimal
}

// Dashboard is the as-of-date summary across both ledgers and all parties.
type Dashboard struct {
	Date            time.Time
	Warnings        []string
	CashBalance     decimal.Decimal
	BankBalance     decimal.Decimal
	TotalReceivable decimal.Decimal
	TotalPayable    decimal.Decimal
}
