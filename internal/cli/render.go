package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/loan"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/position"
)

const dateLayout = "2006-01-02"

// Amount formats a decimal for display with two fixed fraction digits.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderLedger renders a one-day ledger report as a table with opening
// balance, entries in insertion order, and closing totals.
func RenderLedger(report *model.LedgerReport) string {
	var b strings.Builder

	name := "Cash Ledger"
	if report.Kind == model.LedgerBank {
		name = "Bank Ledger"
	}
	b.WriteString(FormatTitle(fmt.Sprintf("%s - %s", name, report.Date.Format(dateLayout))))
	b.WriteString("\n")

	for _, warning := range report.Warnings {
		b.WriteString(FormatWarning(warning))
		b.WriteString("\n")
	}

	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-40s %12s %12s %12s", "Entry", "In", "Out", "Balance")))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-40s %12s %12s %12s\n",
		SubtleStyle.Render("Opening balance"), "", "", Amount(report.Opening)))

	for _, entry := range report.Entries {
		label := entry.Label
		if entry.Transaction.Description != "" {
			label = fmt.Sprintf("%s (%s)", label, entry.Transaction.Description)
		}
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		debit, credit := "", ""
		if entry.Debit.IsPositive() {
			debit = DebitStyle.Render(Amount(entry.Debit))
		}
		if entry.Credit.IsPositive() {
			credit = CreditStyle.Render(Amount(entry.Credit))
		}
		b.WriteString(fmt.Sprintf("%-40s %12s %12s %12s\n", label, debit, credit, Amount(entry.Running)))
	}

	b.WriteString(fmt.Sprintf("%-40s %12s %12s\n",
		BoldStyle.Render("Totals"), Amount(report.TotalDebit), Amount(report.TotalCredit)))
	b.WriteString(fmt.Sprintf("%-40s %38s\n",
		BoldStyle.Render("Closing balance"), Amount(report.Closing)))
	return b.String()
}

// RenderDashboard renders the as-of-date summary.
func RenderDashboard(dash *model.Dashboard) string {
	var b strings.Builder
	b.WriteString(FormatTitle(fmt.Sprintf("Business Summary - %s", dash.Date.Format(dateLayout))))
	b.WriteString("\n")
	for _, warning := range dash.Warnings {
		b.WriteString(FormatWarning(warning))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Cash in hand", Amount(dash.CashBalance)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Bank balance", Amount(dash.BankBalance)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Customers owe you", Amount(dash.TotalReceivable)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "You owe suppliers", Amount(dash.TotalPayable)))
	return b.String()
}

// RenderCustomerPosition renders one customer's derived position.
func RenderCustomerPosition(party *model.Party, pos *model.CustomerPosition) string {
	var b strings.Builder
	b.WriteString(FormatTitle(party.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Receivable", Amount(pos.Receivable)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Outstanding loan", Amount(pos.OutstandingLoan)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Net chit position", Amount(pos.NetChitPosition)))
	return b.String()
}

// RenderSupplierPosition renders one supplier's derived position.
func RenderSupplierPosition(party *model.Party, pos *model.SupplierPosition) string {
	var b strings.Builder
	b.WriteString(FormatTitle(party.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Payable", Amount(pos.CurrentPayable)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "From transactions", Amount(pos.TransactionPayable)))
	if pos.StockPayable.IsPositive() {
		b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Stock on hand (est.)", Amount(pos.StockPayable)))
	}
	return b.String()
}

// RenderCustomerList renders every customer with their receivable.
func RenderCustomerList(summaries []position.CustomerSummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Customers"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-32s %12s %12s", "Name", "Receivable", "Loan")))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("%-32s %12s %12s\n",
			s.Party.Name, Amount(s.Position.Receivable), Amount(s.Position.OutstandingLoan)))
	}
	return b.String()
}

// RenderSupplierList renders every supplier with their payable.
func RenderSupplierList(summaries []position.SupplierSummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Suppliers"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-32s %12s", "Name", "Payable")))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("%-32s %12s\n", s.Party.Name, Amount(s.Position.CurrentPayable)))
	}
	return b.String()
}

// RenderAgreementBreakdown renders one loan's amortization state.
func RenderAgreementBreakdown(agreement *model.Agreement, breakdown *model.AgreementBreakdown) string {
	var b strings.Builder
	title := fmt.Sprintf("Agreement #%d (%s, %s%% %s)",
		agreement.ID, agreement.Type, agreement.InterestRate.String(), agreement.RateBasis)
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Principal", Amount(agreement.Principal)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Principal paid", Amount(breakdown.PrincipalPaid)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Principal outstanding", Amount(breakdown.PrincipalOutstanding)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Interest accrued", Amount(breakdown.AccruedInterest)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Interest paid", Amount(breakdown.InterestPaid)))
	b.WriteString(fmt.Sprintf("  %-24s %12s\n", "Interest payable", Amount(breakdown.InterestPayable)))
	return b.String()
}

// RenderAgreementList renders every loan agreement with outstanding state.
func RenderAgreementList(summaries []loan.AgreementSummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Loan Agreements"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-4s %-16s %12s %12s %12s",
		"ID", "Type", "Principal", "Outstanding", "Int. Due")))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("%-4d %-16s %12s %12s %12s\n",
			s.Agreement.ID, s.Agreement.Type, Amount(s.Agreement.Principal),
			Amount(s.Breakdown.PrincipalOutstanding), Amount(s.Breakdown.InterestPayable)))
	}
	return b.String()
}

// RenderTransactions renders a transaction listing with generated labels.
func RenderTransactions(txns []model.Transaction, labels []string) string {
	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-4s %-12s %-40s %12s", "ID", "Date", "Type", "Amount")))
	b.WriteString("\n")
	for i, txn := range txns {
		label := txn.Description
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		b.WriteString(fmt.Sprintf("%-4d %-12s %-40s %12s\n",
			txn.ID, txn.Date.Format(dateLayout), label, Amount(txn.Amount)))
	}
	return b.String()
}
