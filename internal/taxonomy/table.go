package taxonomy

import "github.com/khata-app/khata/internal/model"

var table = buildTable()

// cashAndBank expands one semantic row into its cash and bank variants.
func cashAndBank(base model.BaseAction, group Group, dir Direction, rel Relevance, sign Sign, product bool) []Definition {
	return []Definition{
		{Base: base, Mode: model.ModeCash, Group: group, Direction: dir, Ledger: LedgerCash, RelevantTo: rel, ExpectedSign: sign, InvolvesProduct: product},
		{Base: base, Mode: model.ModeBank, Group: group, Direction: dir, Ledger: LedgerBank, RelevantTo: rel, ExpectedSign: sign, InvolvesProduct: product},
	}
}

func buildTable() map[Key]Definition {
	var defs []Definition

	// Customer revenue and settlement.
	defs = append(defs, cashAndBank(model.ActionSaleToCustomer, GroupCustomerRevenue, Income, RelevantToCustomer, SignPositive, true)...)
	defs = append(defs, Definition{
		Base: model.ActionSaleToCustomer, Mode: model.ModeCredit,
		Group: GroupCustomerRevenue, Direction: Neutral, Ledger: LedgerNone,
		RelevantTo: RelevantToCustomer, ExpectedSign: SignPositive, InvolvesProduct: true,
	})
	defs = append(defs, cashAndBank(model.ActionPaymentFromCustomer, GroupCustomerPayment, Income, RelevantToCustomer, SignNegative, false)...)

	// Customer returns: a credit note books against the receivable; a
	// refund pays money back out of cash or bank.
	defs = append(defs, Definition{
		Base: model.ActionReturnFromCustomer, Mode: model.ModeCredit,
		Group: GroupCustomerReturn, Direction: Neutral, Ledger: LedgerNone,
		RelevantTo: RelevantToCustomer, ExpectedSign: SignNegative, InvolvesProduct: true,
	})
	defs = append(defs, cashAndBank(model.ActionReturnFromCustomer, GroupCustomerReturn, Expense, RelevantToCustomer, SignNegative, true)...)

	// Customer loans and chits.
	defs = append(defs, cashAndBank(model.ActionLoanToCustomer, GroupCustomerLoanOut, Expense, RelevantToCustomer, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionLoanRepaymentFromCust, GroupCustomerLoanIn, Income, RelevantToCustomer, SignNegative, false)...)
	defs = append(defs, cashAndBank(model.ActionLoanInterestFromCust, GroupCustomerLoanIn, Income, RelevantToCustomer, SignNegative, false)...)
	defs = append(defs, cashAndBank(model.ActionChitReceivedFromCust, GroupCustomerChitIn, Income, RelevantToCustomer, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionChitPaidToCust, GroupCustomerChitOut, Expense, RelevantToCustomer, SignNegative, false)...)

	// Supplier purchases and settlement.
	defs = append(defs, cashAndBank(model.ActionPurchaseFromSupplier, GroupSupplierExpense, Expense, RelevantToLender, SignPositive, true)...)
	defs = append(defs, Definition{
		Base: model.ActionPurchaseFromSupplier, Mode: model.ModeCredit,
		Group: GroupSupplierExpense, Direction: Neutral, Ledger: LedgerNone,
		RelevantTo: RelevantToLender, ExpectedSign: SignPositive, InvolvesProduct: true,
	})
	defs = append(defs, cashAndBank(model.ActionPaymentToSupplier, GroupSupplierPayment, Expense, RelevantToLender, SignNegative, false)...)

	// Supplier returns: credit note reduces the payable; a refund comes
	// back in as money.
	defs = append(defs, Definition{
		Base: model.ActionReturnToSupplier, Mode: model.ModeCredit,
		Group: GroupSupplierReturn, Direction: Neutral, Ledger: LedgerNone,
		RelevantTo: RelevantToLender, ExpectedSign: SignNegative, InvolvesProduct: true,
	})
	defs = append(defs, cashAndBank(model.ActionReturnToSupplier, GroupSupplierReturn, Income, RelevantToLender, SignPositive, true)...)

	// Business loans, taken and given.
	defs = append(defs, cashAndBank(model.ActionBizLoanReceived, GroupBizLoanIn, Income, RelevantToNone, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionBizLoanPrincipalRepaid, GroupBizLoanRepay, Expense, RelevantToNone, SignNegative, false)...)
	defs = append(defs, cashAndBank(model.ActionBizLoanInterestPaid, GroupBizLoanRepay, Expense, RelevantToNone, SignNegative, false)...)
	defs = append(defs, cashAndBank(model.ActionBizLoanGiven, GroupBizLoanOut, Expense, RelevantToNone, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionBizLoanPrincipalReceived, GroupBizLoanCollect, Income, RelevantToNone, SignNegative, false)...)
	defs = append(defs, cashAndBank(model.ActionBizLoanInterestReceived, GroupBizLoanCollect, Income, RelevantToNone, SignNegative, false)...)

	// Business chits and operations.
	defs = append(defs, cashAndBank(model.ActionChitContributionPaid, GroupBizChitOut, Expense, RelevantToNone, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionChitPayoutReceived, GroupBizChitIn, Income, RelevantToNone, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionBusinessExpense, GroupBizOps, Expense, RelevantToNone, SignPositive, false)...)
	defs = append(defs, cashAndBank(model.ActionOtherIncome, GroupBizOps, Income, RelevantToNone, SignPositive, false)...)

	// Bank transfers move both ledgers with opposite signs; the combined
	// cash+bank total is unchanged.
	defs = append(defs,
		Definition{
			Base: model.ActionCashDepositToBank, Mode: model.ModeNone,
			Group: GroupBankOps, Direction: Neutral, Ledger: LedgerCashToBank,
			RelevantTo: RelevantToNone, ExpectedSign: SignPositive,
		},
		Definition{
			Base: model.ActionCashWithdrawalFromBank, Mode: model.ModeNone,
			Group: GroupBankOps, Direction: Neutral, Ledger: LedgerBankToCash,
			RelevantTo: RelevantToNone, ExpectedSign: SignPositive,
		},
		Definition{
			Base: model.ActionBankCharges, Mode: model.ModeBank,
			Group: GroupBankOps, Direction: Expense, Ledger: LedgerBank,
			RelevantTo: RelevantToNone, ExpectedSign: SignPositive,
		},
		Definition{
			Base: model.ActionStockAdjustment, Mode: model.ModeNone,
			Group: GroupInventoryAdj, Direction: Neutral, Ledger: LedgerNone,
			RelevantTo: RelevantToNone, ExpectedSign: SignAny, InvolvesProduct: true,
		},
	)

	m := make(map[Key]Definition, len(defs))
	for _, d := range defs {
		m[Key{Base: d.Base, Mode: d.Mode}] = d
	}
	return m
}

// All returns every definition in the taxonomy. Order is unspecified.
func All() []Definition {
	defs := make([]Definition, 0, len(table))
	for _, d := range table {
		defs = append(defs, d)
	}
	return defs
}
