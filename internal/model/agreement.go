package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgreementType identifies the kind of business finance agreement.
type AgreementType string

const (
	// LoanTakenByBiz is money borrowed by the business from a lender.
	LoanTakenByBiz AgreementType = "loan_taken_by_biz"
	// LoanGivenByBiz is money lent by the business to an external party.
	LoanGivenByBiz AgreementType = "loan_given_by_biz"
	// ChitSubscription is a chit fund the business participates in.
	ChitSubscription AgreementType = "chit_subscription"
)

// RateBasis records how the interest rate field is to be read. The accrual
// engine implements the annual convention; the field exists so a confirmed
// monthly convention is a data fix, not a schema change.
type RateBasis string

const (
	// RateAnnual reads InterestRate as percent per year.
	RateAnnual RateBasis = "annual"
	// RateMonthly reads InterestRate as percent per month.
	RateMonthly RateBasis = "monthly"
)

// Agreement is a business finance contract. Interest and principal state is
// derived from linked transactions by the loan engine, never stored.
type Agreement struct {
	StartDate    time.Time
	CreatedAt    time.Time
	Type         AgreementType
	RateBasis    RateBasis
	Details      string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	ID           int64
	LenderID     int64
}

// AgreementBreakdown is the derived amortization state of one agreement,
// computed fresh on every read with simple (non-compounding) interest.
type AgreementBreakdown struct {
	AccruedInterest      decimal.Decimal
	InterestPaid         decimal.Decimal
	InterestPayable      decimal.Decimal
	PrincipalPaid        decimal.Decimal
	PrincipalOutstanding decimal.Decimal
	AgreementID          int64
}
