// Package ledger reconstructs running cash and bank balances from the
// transaction store. There is no stored ledger table; every report is
// re-derived by classifying the full transaction set through the taxonomy.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/taxonomy"
)

// TransactionReader is the slice of the storage contract this engine
// needs.
type TransactionReader interface {
	GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
}

// Engine computes ledger reports.
type Engine struct {
	store TransactionReader
}

// New creates a ledger engine.
func New(store TransactionReader) *Engine {
	return &Engine{store: store}
}

// GetLedger returns the ledger report for one physical ledger on one
// date: the opening balance folded from all strictly earlier
// transactions, the day's classified entries in insertion order with a
// running balance, and the day's totals.
//
// A transaction whose category is unknown to the taxonomy is excluded
// from totals but reported in Warnings; it must never silently zero out.
func (e *Engine) GetLedger(ctx context.Context, kind model.LedgerKind, date time.Time) (*model.LedgerReport, error) {
	if kind != model.LedgerCash && kind != model.LedgerBank {
		return nil, fmt.Errorf("unknown ledger kind %q", kind)
	}

	day := model.Day(date)
	report := &model.LedgerReport{
		Kind:        kind,
		Date:        day,
		Opening:     decimal.Zero,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	// Opening balance: everything strictly before the target date.
	prior := day.AddDate(0, 0, -1)
	before, err := e.store.GetTransactions(ctx, service.TransactionFilter{EndDate: &prior})
	if err != nil {
		return nil, fmt.Errorf("failed to load prior transactions: %w", err)
	}
	for _, txn := range before {
		flow, touches, warn := classify(txn, kind)
		if warn != "" {
			report.Warnings = append(report.Warnings, warn)
			continue
		}
		if touches {
			report.Opening = report.Opening.Add(flow)
		}
	}

	// Same-day entries, ordered by ID; insertion order is the only
	// tie-break; no secondary time field exists.
	sameDay, err := e.store.GetTransactions(ctx, service.TransactionFilter{StartDate: &day, EndDate: &day})
	if err != nil {
		return nil, fmt.Errorf("failed to load same-day transactions: %w", err)
	}

	running := report.Opening
	for _, txn := range sameDay {
		flow, touches, warn := classify(txn, kind)
		if warn != "" {
			report.Warnings = append(report.Warnings, warn)
			continue
		}
		if !touches {
			continue
		}

		running = running.Add(flow)
		entry := model.LedgerEntry{
			Transaction: txn,
			Label:       taxonomy.Label(txn.BaseAction, txn.PaymentMode),
			Running:     running,
		}
		if flow.IsNegative() {
			entry.Credit = flow.Abs()
			report.TotalCredit = report.TotalCredit.Add(entry.Credit)
		} else {
			entry.Debit = flow
			report.TotalDebit = report.TotalDebit.Add(entry.Debit)
		}
		report.Entries = append(report.Entries, entry)
	}

	report.NetChange = report.TotalDebit.Sub(report.TotalCredit)
	report.Closing = running
	return report, nil
}

// classify resolves a transaction's signed flow for one ledger kind. A
// nonempty warning means the category is not in the taxonomy.
func classify(txn model.Transaction, kind model.LedgerKind) (decimal.Decimal, bool, string) {
	def, err := taxonomy.Lookup(txn.BaseAction, txn.PaymentMode)
	if err != nil {
		warn := fmt.Sprintf("transaction %d has unknown category %s/%s and was excluded",
			txn.ID, txn.BaseAction, txn.PaymentMode)
		common.LogWarn("unknown category in ledger scan", common.Fields{
			"transaction_id": txn.ID,
			"base_action":    txn.BaseAction,
			"payment_mode":   txn.PaymentMode,
		})
		return decimal.Zero, false, warn
	}

	flow, touches := def.Flow(kind, txn.Amount)
	return flow, touches, ""
}
