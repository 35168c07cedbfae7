package model

// BaseAction identifies what happened, independent of how it was settled.
// Together with PaymentMode it fully determines a transaction's category;
// the display label is generated from the pair and never parsed back.
type BaseAction string

// Customer-facing actions.
const (
	ActionSaleToCustomer        BaseAction = "sale_to_customer"
	ActionPaymentFromCustomer   BaseAction = "payment_from_customer"
	ActionReturnFromCustomer    BaseAction = "return_from_customer"
	ActionLoanToCustomer        BaseAction = "loan_to_customer"
	ActionLoanRepaymentFromCust BaseAction = "loan_repayment_from_customer"
	ActionLoanInterestFromCust  BaseAction = "loan_interest_from_customer"
	ActionChitReceivedFromCust  BaseAction = "chit_received_from_customer"
	ActionChitPaidToCust        BaseAction = "chit_paid_to_customer"
)

// Supplier-facing actions.
const (
	ActionPurchaseFromSupplier BaseAction = "purchase_from_supplier"
	ActionPaymentToSupplier    BaseAction = "payment_to_supplier"
	ActionReturnToSupplier     BaseAction = "return_to_supplier"
)

// Business finance actions.
const (
	ActionBizLoanReceived          BaseAction = "biz_loan_received"
	ActionBizLoanPrincipalRepaid   BaseAction = "biz_loan_principal_repaid"
	ActionBizLoanInterestPaid      BaseAction = "biz_loan_interest_paid"
	ActionBizLoanGiven             BaseAction = "biz_loan_given"
	ActionBizLoanPrincipalReceived BaseAction = "biz_loan_principal_received"
	ActionBizLoanInterestReceived  BaseAction = "biz_loan_interest_received"
	ActionChitContributionPaid     BaseAction = "chit_contribution_paid"
	ActionChitPayoutReceived       BaseAction = "chit_payout_received"
	ActionBusinessExpense          BaseAction = "business_expense"
	ActionOtherIncome              BaseAction = "other_income"
)

// Bank and inventory operations.
const (
	ActionCashDepositToBank      BaseAction = "cash_deposit_to_bank"
	ActionCashWithdrawalFromBank BaseAction = "cash_withdrawal_from_bank"
	ActionBankCharges            BaseAction = "bank_charges"
	ActionStockAdjustment        BaseAction = "stock_adjustment"
)

// PaymentMode identifies which physical ledger, if any, a transaction moves.
type PaymentMode string

const (
	// ModeCash settles through the cash ledger.
	ModeCash PaymentMode = "cash"
	// ModeBank settles through the bank ledger.
	ModeBank PaymentMode = "bank"
	// ModeCredit changes a receivable or payable but no physical ledger.
	ModeCredit PaymentMode = "credit"
	// ModeNone is for actions whose ledger movement is intrinsic
	// (bank transfers, stock adjustments).
	ModeNone PaymentMode = "none"
)

// LedgerKind selects which physical ledger a report covers.
type LedgerKind string

const (
	// LedgerCash is the physical cash-in-hand ledger.
	LedgerCash LedgerKind = "cash"
	// LedgerBank is the bank account ledger.
	LedgerBank LedgerKind = "bank"
)
