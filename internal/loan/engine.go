// Package loan derives the amortization state of business finance
// agreements: simple interest accrued to date, interest and principal
// paid, and the amounts still outstanding.
package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
)

// ErrUnsupportedAgreementType marks agreements (chit funds) that have no
// amortization breakdown.
var ErrUnsupportedAgreementType = errors.New("agreement type has no amortization breakdown")

// daysPerYear converts elapsed days to years for the accrual formula.
const daysPerYear = 365.25

// Store is the slice of the storage contract this engine needs.
type Store interface {
	GetAgreementByID(ctx context.Context, id int64) (*model.Agreement, error)
	ListAgreements(ctx context.Context) ([]model.Agreement, error)
	GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
}

// Engine computes agreement breakdowns.
type Engine struct {
	store Store
}

// New creates a loan engine.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// GetAgreementBreakdown recomputes one agreement's state as of the given
// time. Interest is simple, not compounding, and the rate is applied as
// an annual percentage: principal * rate/100 * elapsedDays/365.25.
//
// Agreement.RateBasis records how the rate was quoted; only the annual
// basis is applied for now.
func (e *Engine) GetAgreementBreakdown(ctx context.Context, agreementID int64, asOf time.Time) (*model.AgreementBreakdown, error) {
	agreement, err := e.store.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	return e.breakdown(ctx, agreement, asOf)
}

func (e *Engine) breakdown(ctx context.Context, agreement *model.Agreement, asOf time.Time) (*model.AgreementBreakdown, error) {
	var interestAction, principalAction model.BaseAction
	switch agreement.Type {
	case model.LoanTakenByBiz:
		interestAction = model.ActionBizLoanInterestPaid
		principalAction = model.ActionBizLoanPrincipalRepaid
	case model.LoanGivenByBiz:
		interestAction = model.ActionBizLoanInterestReceived
		principalAction = model.ActionBizLoanPrincipalReceived
	default:
		return nil, fmt.Errorf("agreement %d (%s): %w", agreement.ID, agreement.Type, ErrUnsupportedAgreementType)
	}

	b := &model.AgreementBreakdown{
		AgreementID:     agreement.ID,
		AccruedInterest: accruedInterest(agreement, asOf),
	}

	var err error
	if b.InterestPaid, err = e.sumSettled(ctx, agreement.ID, interestAction); err != nil {
		return nil, err
	}
	if b.PrincipalPaid, err = e.sumSettled(ctx, agreement.ID, principalAction); err != nil {
		return nil, err
	}

	b.InterestPayable = b.AccruedInterest.Sub(b.InterestPaid)
	if b.InterestPayable.IsNegative() {
		b.InterestPayable = decimal.Zero
	}
	b.PrincipalOutstanding = agreement.Principal.Sub(b.PrincipalPaid)
	return b, nil
}

// sumSettled sums the absolute value of negative-amount transactions for
// one base action linked to the agreement. Settlement flows are stored
// negative; positive rows are data errors and are not counted.
func (e *Engine) sumSettled(ctx context.Context, agreementID int64, action model.BaseAction) (decimal.Decimal, error) {
	transactions, err := e.store.GetTransactions(ctx, service.TransactionFilter{
		AgreementID: &agreementID,
		BaseAction:  &action,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load %s transactions: %w", action, err)
	}

	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Amount.IsNegative() {
			total = total.Add(txn.Amount.Abs())
		}
	}
	return total, nil
}

// accruedInterest applies the simple-interest formula, anchored to
// calendar days so intra-day times never change the result.
func accruedInterest(agreement *model.Agreement, asOf time.Time) decimal.Decimal {
	elapsed := model.Day(asOf).Sub(model.Day(agreement.StartDate))
	days := elapsed.Hours() / 24
	if days < 0 {
		days = 0
	}
	years := decimal.NewFromFloat(days / daysPerYear)

	return agreement.Principal.
		Mul(agreement.InterestRate).
		Div(decimal.NewFromInt(100)).
		Mul(years).
		Round(2)
}

// AgreementSummary pairs an agreement with its derived breakdown.
type AgreementSummary struct {
	Agreement model.Agreement
	Breakdown model.AgreementBreakdown
}

// ListBreakdowns recomputes every loan agreement's breakdown. This is
// O(agreements x their transaction count) on every call; fine at small
// scale, a caching candidate if volumes grow.
func (e *Engine) ListBreakdowns(ctx context.Context, asOf time.Time) ([]AgreementSummary, error) {
	agreements, err := e.store.ListAgreements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}

	summaries := make([]AgreementSummary, 0, len(agreements))
	for i := range agreements {
		agreement := agreements[i]
		b, bErr := e.breakdown(ctx, &agreement, asOf)
		if errors.Is(bErr, ErrUnsupportedAgreementType) {
			continue
		}
		if bErr != nil {
			return nil, bErr
		}
		summaries = append(summaries, AgreementSummary{Agreement: agreement, Breakdown: *b})
	}
	return summaries, nil
}
