package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyRole distinguishes customers from suppliers/lenders. Both share the
// same underlying entity; derived positions differ by role.
type PartyRole string

const (
	// RoleCustomer marks a party whose position is a receivable.
	RoleCustomer PartyRole = "customer"
	// RoleSupplier marks a party whose position is a payable.
	RoleSupplier PartyRole = "supplier"
)

// Party is a customer or supplier. Positions (receivable/payable) are
// derived by the position engine, never stored.
type Party struct {
	CreatedAt             time.Time
	Name                  string
	Phone                 string
	Role                  PartyRole
	InitialBalance        decimal.Decimal
	InitialPayableBalance decimal.Decimal
	ID                    int64
}

// CustomerPosition is the derived state of a customer account.
type CustomerPosition struct {
	Receivable      decimal.Decimal
	OutstandingLoan decimal.Decimal
	NetChitPosition decimal.Decimal
	UserID          int64
}

// SupplierPosition is the derived state of a supplier account.
// StockPayable is the implicit payable inferred from preferred-supplier
// stock on hand; it is zero when that rule is disabled.
type SupplierPosition struct {
	CurrentPayable     decimal.Decimal
	TransactionPayable decimal.Decimal
	StockPayable       decimal.Decimal
	LenderID           int64
}
