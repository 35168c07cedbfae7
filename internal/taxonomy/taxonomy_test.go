package taxonomy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

func TestLookupKnownPairs(t *testing.T) {
	tests := []struct {
		name   string
		base   model.BaseAction
		mode   model.PaymentMode
		group  Group
		ledger Ledger
	}{
		{"cash sale", model.ActionSaleToCustomer, model.ModeCash, GroupCustomerRevenue, LedgerCash},
		{"credit sale", model.ActionSaleToCustomer, model.ModeCredit, GroupCustomerRevenue, LedgerNone},
		{"bank payment from customer", model.ActionPaymentFromCustomer, model.ModeBank, GroupCustomerPayment, LedgerBank},
		{"credit note", model.ActionReturnFromCustomer, model.ModeCredit, GroupCustomerReturn, LedgerNone},
		{"cash refund to customer", model.ActionReturnFromCustomer, model.ModeCash, GroupCustomerReturn, LedgerCash},
		{"credit purchase", model.ActionPurchaseFromSupplier, model.ModeCredit, GroupSupplierExpense, LedgerNone},
		{"deposit", model.ActionCashDepositToBank, model.ModeNone, GroupBankOps, LedgerCashToBank},
		{"stock adjustment", model.ActionStockAdjustment, model.ModeNone, GroupInventoryAdj, LedgerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Lookup(tt.base, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.group, def.Group)
			assert.Equal(t, tt.ledger, def.Ledger)
		})
	}
}

func TestLookupUnknownPair(t *testing.T) {
	_, err := Lookup(model.ActionSaleToCustomer, model.ModeNone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnknownCategory))

	_, err = Lookup("time_travel", model.ModeCash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnknownCategory))
}

func TestEveryActionHasAtLeastOneMode(t *testing.T) {
	actions := []model.BaseAction{
		model.ActionSaleToCustomer,
		model.ActionPaymentFromCustomer,
		model.ActionReturnFromCustomer,
		model.ActionLoanToCustomer,
		model.ActionLoanRepaymentFromCust,
		model.ActionLoanInterestFromCust,
		model.ActionChitReceivedFromCust,
		model.ActionChitPaidToCust,
		model.ActionPurchaseFromSupplier,
		model.ActionPaymentToSupplier,
		model.ActionReturnToSupplier,
		model.ActionBizLoanReceived,
		model.ActionBizLoanPrincipalRepaid,
		model.ActionBizLoanInterestPaid,
		model.ActionBizLoanGiven,
		model.ActionBizLoanPrincipalReceived,
		model.ActionBizLoanInterestReceived,
		model.ActionChitContributionPaid,
		model.ActionChitPayoutReceived,
		model.ActionBusinessExpense,
		model.ActionOtherIncome,
		model.ActionCashDepositToBank,
		model.ActionCashWithdrawalFromBank,
		model.ActionBankCharges,
		model.ActionStockAdjustment,
	}

	for _, action := range actions {
		assert.NotEmpty(t, ValidModes(action), "action %s has no defined modes", action)
	}
}

func TestDefinitionsAreInternallyConsistent(t *testing.T) {
	for _, def := range All() {
		switch def.Ledger {
		case LedgerCash:
			assert.Equal(t, model.ModeCash, def.Mode, "%s/%s moves cash but is not mode cash", def.Base, def.Mode)
		case LedgerBank:
			assert.Equal(t, model.ModeBank, def.Mode, "%s/%s moves bank but is not mode bank", def.Base, def.Mode)
		case LedgerNone:
			assert.Contains(t, []model.PaymentMode{model.ModeCredit, model.ModeNone}, def.Mode,
				"%s/%s moves no ledger but has a money mode", def.Base, def.Mode)
		}

		// Credit entries never move a physical ledger and modeless
		// entries are never plain income or expense.
		if def.Mode == model.ModeCredit {
			assert.Equal(t, LedgerNone, def.Ledger)
		}
	}
}

func TestFlowSingleLedger(t *testing.T) {
	amount := decimal.RequireFromString("150.50")

	cashSale, err := Lookup(model.ActionSaleToCustomer, model.ModeCash)
	require.NoError(t, err)

	flow, touches := cashSale.Flow(model.LedgerCash, amount)
	assert.True(t, touches)
	assert.True(t, flow.Equal(amount))

	_, touches = cashSale.Flow(model.LedgerBank, amount)
	assert.False(t, touches)

	expense, err := Lookup(model.ActionBusinessExpense, model.ModeBank)
	require.NoError(t, err)
	flow, touches = expense.Flow(model.LedgerBank, amount)
	assert.True(t, touches)
	assert.True(t, flow.Equal(amount.Neg()))
}

func TestFlowUsesAbsoluteAmount(t *testing.T) {
	// Settlement flows are stored negative; the ledger direction still
	// comes from the definition, not from the stored sign.
	payment, err := Lookup(model.ActionPaymentFromCustomer, model.ModeCash)
	require.NoError(t, err)

	flow, touches := payment.Flow(model.LedgerCash, decimal.RequireFromString("-200"))
	assert.True(t, touches)
	assert.True(t, flow.Equal(decimal.RequireFromString("200")))
}

func TestFlowTransfersConserveMoney(t *testing.T) {
	amount := decimal.RequireFromString("1000")

	for _, base := range []model.BaseAction{model.ActionCashDepositToBank, model.ActionCashWithdrawalFromBank} {
		def, err := Lookup(base, model.ModeNone)
		require.NoError(t, err)

		cashFlow, touchesCash := def.Flow(model.LedgerCash, amount)
		bankFlow, touchesBank := def.Flow(model.LedgerBank, amount)
		assert.True(t, touchesCash)
		assert.True(t, touchesBank)
		assert.True(t, cashFlow.Add(bankFlow).IsZero(), "%s does not conserve cash+bank", base)
	}

	deposit, err := Lookup(model.ActionCashDepositToBank, model.ModeNone)
	require.NoError(t, err)
	cashFlow, _ := deposit.Flow(model.LedgerCash, amount)
	assert.True(t, cashFlow.IsNegative(), "a deposit must leave the cash ledger")
}

func TestFlowNoLedger(t *testing.T) {
	creditSale, err := Lookup(model.ActionSaleToCustomer, model.ModeCredit)
	require.NoError(t, err)

	_, touches := creditSale.Flow(model.LedgerCash, decimal.RequireFromString("99"))
	assert.False(t, touches)
	_, touches = creditSale.Flow(model.LedgerBank, decimal.RequireFromString("99"))
	assert.False(t, touches)
}

func TestSignAllows(t *testing.T) {
	pos := decimal.RequireFromString("10")
	neg := decimal.RequireFromString("-10")

	assert.True(t, SignPositive.Allows(pos))
	assert.False(t, SignPositive.Allows(neg))
	assert.False(t, SignNegative.Allows(pos))
	assert.True(t, SignNegative.Allows(neg))
	assert.True(t, SignAny.Allows(pos))
	assert.True(t, SignAny.Allows(neg))

	// Zero passes every convention.
	assert.True(t, SignPositive.Allows(decimal.Zero))
	assert.True(t, SignNegative.Allows(decimal.Zero))
}

func TestStoredAmountFollowsConvention(t *testing.T) {
	repayment, err := Lookup(model.ActionLoanRepaymentFromCust, model.ModeCash)
	require.NoError(t, err)
	sale, err := Lookup(model.ActionSaleToCustomer, model.ModeCredit)
	require.NoError(t, err)
	adjustment, err := Lookup(model.ActionStockAdjustment, model.ModeNone)
	require.NoError(t, err)

	entered := decimal.RequireFromString("400")

	// A repayment entered as a plain magnitude lands negative; entering
	// it already negative changes nothing.
	assert.True(t, repayment.StoredAmount(entered).Equal(entered.Neg()))
	assert.True(t, repayment.StoredAmount(entered.Neg()).Equal(entered.Neg()))

	assert.True(t, sale.StoredAmount(entered.Neg()).Equal(entered))

	assert.True(t, adjustment.StoredAmount(entered.Neg()).Equal(entered.Neg()))
	assert.True(t, adjustment.StoredAmount(entered).Equal(entered))
}

func TestEveryDefinitionSatisfiesItsOwnConvention(t *testing.T) {
	entered := decimal.RequireFromString("123.45")
	for _, def := range All() {
		stored := def.StoredAmount(entered)
		assert.True(t, def.ExpectedSign.Allows(stored),
			"%s/%s: stored amount %s violates its own sign convention", def.Base, def.Mode, stored)
	}
}
