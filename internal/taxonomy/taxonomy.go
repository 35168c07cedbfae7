// Package taxonomy is the single source of truth for transaction category
// semantics: which physical ledger a category moves, whether it is income
// or expense to the business, which party-position bucket it feeds, and
// what sign its stored amount carries. Both the data-entry option list and
// the classification rules used by every engine derive from the one table
// in this package.
package taxonomy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// Group is the coarse accounting bucket a category belongs to. The party
// position engine folds transactions by group, never by label.
type Group string

// Accounting groups.
const (
	GroupCustomerRevenue Group = "customer_revenue"
	GroupCustomerPayment Group = "customer_payment"
	GroupCustomerReturn  Group = "customer_return"
	GroupCustomerLoanOut Group = "customer_loan_out"
	GroupCustomerLoanIn  Group = "customer_loan_in"
	GroupCustomerChitIn  Group = "customer_chit_in"
	GroupCustomerChitOut Group = "customer_chit_out"
	GroupSupplierExpense Group = "supplier_expense"
	GroupSupplierPayment Group = "supplier_payment"
	GroupSupplierReturn  Group = "supplier_return"
	GroupBizLoanIn       Group = "biz_loan_in"
	GroupBizLoanRepay    Group = "biz_loan_repay"
	GroupBizLoanOut      Group = "biz_loan_out"
	GroupBizLoanCollect  Group = "biz_loan_collect"
	GroupBizChitIn       Group = "biz_chit_in"
	GroupBizChitOut      Group = "biz_chit_out"
	GroupBizOps          Group = "biz_ops"
	GroupBankOps         Group = "bank_ops"
	GroupInventoryAdj    Group = "inventory_adjustment"
)

// Direction is the income/expense effect on the business's own money.
type Direction string

// Direction values.
const (
	Income  Direction = "income"
	Expense Direction = "expense"
	Neutral Direction = "neutral"
)

// Ledger identifies which physical ledger(s) a category moves. LedgerNone
// means the transaction changes a receivable or payable but no physical
// cash or bank balance.
type Ledger string

// Ledger values.
const (
	LedgerCash       Ledger = "cash"
	LedgerBank       Ledger = "bank"
	LedgerNone       Ledger = "none"
	LedgerCashToBank Ledger = "cash_out_bank_in"
	LedgerBankToCash Ledger = "cash_in_bank_out"
)

// Relevance names which party-position bucket a category feeds.
type Relevance string

// Relevance values.
const (
	RelevantToCustomer Relevance = "customer"
	RelevantToLender   Relevance = "lender"
	RelevantToNone     Relevance = "none"
)

// Sign is the documented storage convention for a category's amount. It
// is an explicit field so no engine ever infers sign meaning from a
// label.
type Sign string

// Sign values. SignNegative marks flows that settle an obligation
// (payments, repayments, returns); SignPositive marks flows that create
// one or stand alone (sales, purchases, disbursements, plain expenses).
const (
	SignPositive Sign = "positive"
	SignNegative Sign = "negative"
	SignAny      Sign = "any"
)

// Allows reports whether a stored amount satisfies the sign convention.
// Zero is acceptable everywhere.
func (s Sign) Allows(amount decimal.Decimal) bool {
	switch s {
	case SignPositive:
		return !amount.IsNegative()
	case SignNegative:
		return !amount.IsPositive()
	default:
		return true
	}
}

// Definition is the full accounting semantics of one (base action,
// payment mode) pair.
type Definition struct {
	Base            model.BaseAction
	Mode            model.PaymentMode
	Group           Group
	Direction       Direction
	Ledger          Ledger
	RelevantTo      Relevance
	ExpectedSign    Sign
	InvolvesProduct bool
}

// StoredAmount maps a user-entered amount onto the category's storage
// convention, so callers can accept "400" for a repayment and persist
// -400. SignAny amounts pass through unchanged.
func (d Definition) StoredAmount(amount decimal.Decimal) decimal.Decimal {
	switch d.ExpectedSign {
	case SignPositive:
		return amount.Abs()
	case SignNegative:
		return amount.Abs().Neg()
	default:
		return amount
	}
}

// Key identifies one definition.
type Key struct {
	Base model.BaseAction
	Mode model.PaymentMode
}

// Lookup returns the definition for a (base, mode) pair. Every pair the
// transaction store can contain has exactly one definition; anything else
// is a data-integrity error.
func Lookup(base model.BaseAction, mode model.PaymentMode) (Definition, error) {
	def, ok := table[Key{Base: base, Mode: mode}]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s/%s", common.ErrUnknownCategory, base, mode)
	}
	return def, nil
}

// ValidModes returns the payment modes defined for a base action, in
// cash, bank, credit, none order.
func ValidModes(base model.BaseAction) []model.PaymentMode {
	var modes []model.PaymentMode
	for _, mode := range []model.PaymentMode{model.ModeCash, model.ModeBank, model.ModeCredit, model.ModeNone} {
		if _, ok := table[Key{Base: base, Mode: mode}]; ok {
			modes = append(modes, mode)
		}
	}
	return modes
}

// Flow returns the signed contribution of amount to the given physical
// ledger, and whether the definition touches that ledger at all. Income
// adds the absolute amount, expense subtracts it; the transfer categories
// contribute to both ledgers with opposite signs.
func (d Definition) Flow(kind model.LedgerKind, amount decimal.Decimal) (decimal.Decimal, bool) {
	abs := amount.Abs()
	switch d.Ledger {
	case LedgerCash:
		if kind != model.LedgerCash {
			return decimal.Zero, false
		}
	case LedgerBank:
		if kind != model.LedgerBank {
			return decimal.Zero, false
		}
	case LedgerCashToBank:
		if kind == model.LedgerCash {
			return abs.Neg(), true
		}
		return abs, true
	case LedgerBankToCash:
		if kind == model.LedgerCash {
			return abs, true
		}
		return abs.Neg(), true
	case LedgerNone:
		return decimal.Zero, false
	default:
		return decimal.Zero, false
	}

	switch d.Direction {
	case Income:
		return abs, true
	case Expense:
		return abs.Neg(), true
	case Neutral:
		return decimal.Zero, false
	default:
		return decimal.Zero, false
	}
}
