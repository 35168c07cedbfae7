package taxonomy

import (
	"fmt"
	"sort"

	"github.com/khata-app/khata/internal/model"
)

// baseLabels are the human-readable phrases for each base action. The full
// label is phrase + mode suffix; it exists for display only and is never
// parsed back into semantics.
var baseLabels = map[model.BaseAction]string{
	model.ActionSaleToCustomer:         "Sale to Customer",
	model.ActionPaymentFromCustomer:    "Payment Received from Customer",
	model.ActionReturnFromCustomer:     "Product Return from Customer",
	model.ActionLoanToCustomer:         "Loan Given to Customer",
	model.ActionLoanRepaymentFromCust:  "Loan Repayment from Customer",
	model.ActionLoanInterestFromCust:   "Loan Interest from Customer",
	model.ActionChitReceivedFromCust:   "Chit Amount Received from Customer",
	model.ActionChitPaidToCust:         "Chit Amount Paid to Customer",
	model.ActionPurchaseFromSupplier:   "Purchase from Supplier",
	model.ActionPaymentToSupplier:      "Payment Made to Supplier",
	model.ActionReturnToSupplier:       "Product Return to Supplier",
	model.ActionBizLoanReceived:        "Loan Received by Business",
	model.ActionBizLoanPrincipalRepaid: "Loan Principal Repaid by Business",
	model.ActionBizLoanInterestPaid:    "Loan Interest Paid by Business",
	model.ActionBizLoanGiven:           "Loan Given by Business",
	model.ActionBizLoanPrincipalReceived: "Loan Principal Received by Business",
	model.ActionBizLoanInterestReceived:  "Loan Interest Received by Business",
	model.ActionChitContributionPaid:     "Chit Contribution Paid by Business",
	model.ActionChitPayoutReceived:       "Chit Payout Received by Business",
	model.ActionBusinessExpense:          "Business Expense",
	model.ActionOtherIncome:              "Other Income",
	model.ActionCashDepositToBank:        "Cash Deposited to Bank",
	model.ActionCashWithdrawalFromBank:   "Cash Withdrawn from Bank",
	model.ActionBankCharges:              "Bank Charges",
	model.ActionStockAdjustment:          "Stock Adjustment",
}

// returnActions use refund phrasing for their money modes.
var returnActions = map[model.BaseAction]bool{
	model.ActionReturnFromCustomer: true,
	model.ActionReturnToSupplier:   true,
}

// Label renders the display label for a category. Unknown pairs render as
// the raw pair so broken data stays visible in reports.
func Label(base model.BaseAction, mode model.PaymentMode) string {
	phrase, ok := baseLabels[base]
	if !ok {
		return fmt.Sprintf("%s/%s", base, mode)
	}

	if returnActions[base] {
		switch mode {
		case model.ModeCredit:
			return phrase + " (Credit Note)"
		case model.ModeCash:
			return phrase + " (Refund via Cash)"
		case model.ModeBank:
			return phrase + " (Refund via Bank)"
		case model.ModeNone:
			return phrase
		}
	}

	switch mode {
	case model.ModeCash:
		return phrase + " (Cash)"
	case model.ModeBank:
		return phrase + " (Bank)"
	case model.ModeCredit:
		return phrase + " (On Credit)"
	case model.ModeNone:
		return phrase
	}
	return phrase
}

// EntryOption is one row of the data-entry category list.
type EntryOption struct {
	Label string
	Base  model.BaseAction
	Mode  model.PaymentMode
}

// EntryOptions returns every selectable category with its display label,
// sorted by label. The data-entry list and the classification rules share
// one source of truth.
func EntryOptions() []EntryOption {
	opts := make([]EntryOption, 0, len(table))
	for key := range table {
		opts = append(opts, EntryOption{
			Label: Label(key.Base, key.Mode),
			Base:  key.Base,
			Mode:  key.Mode,
		})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	return opts
}
