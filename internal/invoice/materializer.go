// Package invoice translates invoice lifecycle events into transaction
// store writes and stock deltas. Every mutation runs inside a single
// database transaction: a failure partway through must leave the prior
// state intact, never a half-updated stock count or an orphaned
// transaction.
package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
)

// Materializer keeps the transaction store and product stock consistent
// with invoice state.
type Materializer struct {
	store service.Storage
}

// New creates a materializer.
func New(store service.Storage) *Materializer {
	return &Materializer{store: store}
}

// DraftItem is one line of an invoice draft. Quantity is positive; the
// materializer signs the stock movement by invoice kind.
type DraftItem struct {
	UnitPrice decimal.Decimal
	ProductID int64
	Quantity  int64
}

// Draft is the caller's input for creating or updating an invoice.
// PaymentMode nil means no payment method was supplied; combined with a
// nonzero PaymentAmount that is a rejected request, never a silent drop,
// otherwise the invoice's paid amount and the ledgers drift apart. On a
// sales return the rule runs both ways: a refund mode also needs an
// explicit PaymentAmount, which must match the return total.
type Draft struct {
	Date          time.Time
	Kind          model.InvoiceKind
	Notes         string
	Items         []DraftItem
	TaxPercent    decimal.Decimal
	PaymentAmount decimal.Decimal
	PaymentMode   *model.PaymentMode
	UserID        int64
}

// Result reports what a create or update produced.
type Result struct {
	Invoice         *model.Invoice
	LowStockAlerts  []string
	PaymentRecorded bool
}

// Create computes totals, writes the invoice, and materializes its linked
// transactions and stock deltas atomically.
func (m *Materializer) Create(ctx context.Context, draft Draft) (*Result, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := m.write(ctx, tx, draft, 0)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invoice create: %w", err)
	}

	slog.Info("created invoice",
		"invoice_id", result.Invoice.ID,
		"kind", draft.Kind,
		"total", result.Invoice.TotalAmount.String())
	return result, nil
}

// Update is transactionally equivalent to delete-then-recreate under the
// same invoice ID: reverse and remove the old linked transactions and
// items, then rematerialize from the draft.
func (m *Materializer) Update(ctx context.Context, invoiceID int64, draft Draft) (*Result, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.GetInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	if err = m.unwind(ctx, tx, invoiceID); err != nil {
		return nil, err
	}

	result, err := m.write(ctx, tx, draft, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invoice update: %w", err)
	}

	slog.Info("updated invoice", "invoice_id", invoiceID)
	return result, nil
}

// Delete reverses the invoice's stock effects, removes its linked
// transactions, and deletes the invoice, atomically.
func (m *Materializer) Delete(ctx context.Context, invoiceID int64) error {
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.GetInvoiceByID(ctx, invoiceID); err != nil {
		return err
	}
	if err = m.unwind(ctx, tx, invoiceID); err != nil {
		return err
	}
	if err = tx.DeleteInvoice(ctx, invoiceID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice delete: %w", err)
	}

	slog.Info("deleted invoice", "invoice_id", invoiceID)
	return nil
}

// unwind reverses the stock effects of every transaction linked to the
// invoice and deletes the transactions.
func (m *Materializer) unwind(ctx context.Context, tx service.Transaction, invoiceID int64) error {
	linked, err := tx.GetTransactions(ctx, service.TransactionFilter{InvoiceID: &invoiceID})
	if err != nil {
		return fmt.Errorf("failed to load linked transactions: %w", err)
	}

	for _, txn := range linked {
		for _, item := range txn.Items {
			if err := tx.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return fmt.Errorf("failed to reverse stock for transaction %d: %w", txn.ID, err)
			}
		}
		if err := tx.DeleteTransaction(ctx, txn.ID); err != nil {
			return err
		}
	}
	return nil
}

// write computes totals and materializes the invoice, its transactions,
// and stock deltas. existingID zero creates a new header; nonzero rewrites
// that header in place.
func (m *Materializer) write(ctx context.Context, tx service.Transaction, draft Draft, existingID int64) (*Result, error) {
	subtotal := decimal.Zero
	for _, item := range draft.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	taxAmount := subtotal.Mul(draft.TaxPercent).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(taxAmount)

	refund := draft.Kind == model.KindSalesReturn && draft.PaymentMode != nil
	if draft.Kind == model.KindSalesReturn && draft.PaymentAmount.IsPositive() && !draft.PaymentAmount.Equal(total) {
		return nil, common.NewValidationError("paymentAmount", "a return refund must match the return total")
	}

	inv := &model.Invoice{
		ID:          existingID,
		UserID:      draft.UserID,
		Kind:        draft.Kind,
		InvoiceDate: model.Day(draft.Date),
		TaxPercent:  draft.TaxPercent,
		TotalAmount: total,
		PaidAmount:  paidAmount(draft, total, refund),
		Notes:       draft.Notes,
	}
	for _, item := range draft.Items {
		inv.Items = append(inv.Items, model.InvoiceItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if existingID == 0 {
		id, err := tx.CreateInvoice(ctx, inv)
		if err != nil {
			return nil, err
		}
		inv.ID = id
	} else {
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return nil, err
		}
	}

	result := &Result{Invoice: inv}

	if !total.IsZero() {
		saleTxn := m.saleTransaction(draft, inv, total, refund)
		if _, err := tx.SaveTransaction(ctx, saleTxn); err != nil {
			return nil, err
		}
		alerts, err := m.applyStock(ctx, tx, saleTxn.Items)
		if err != nil {
			return nil, err
		}
		result.LowStockAlerts = alerts
	}

	if draft.Kind == model.KindSale && draft.PaymentAmount.IsPositive() {
		mode := *draft.PaymentMode
		paymentTxn := &model.Transaction{
			BaseAction:  model.ActionPaymentFromCustomer,
			PaymentMode: mode,
			Amount:      draft.PaymentAmount.Neg(),
			Date:        model.Day(draft.Date),
			UserID:      &inv.UserID,
			InvoiceID:   &inv.ID,
			Description: fmt.Sprintf("Payment against invoice #%d", inv.ID),
		}
		if _, err := tx.SaveTransaction(ctx, paymentTxn); err != nil {
			return nil, err
		}
		result.PaymentRecorded = true
	}
	if refund {
		result.PaymentRecorded = true
	}

	return result, nil
}

// saleTransaction derives the invoice's primary transaction. A sale books
// the full total against the receivable (on credit); payment arrives as a
// separate transaction so cash is never counted twice. A return books a
// credit note, or a refund through cash/bank when a method was supplied.
func (m *Materializer) saleTransaction(draft Draft, inv *model.Invoice, total decimal.Decimal, refund bool) *model.Transaction {
	txn := &model.Transaction{
		Date:      model.Day(draft.Date),
		UserID:    &inv.UserID,
		InvoiceID: &inv.ID,
	}

	switch draft.Kind {
	case model.KindSalesReturn:
		txn.BaseAction = model.ActionReturnFromCustomer
		if refund {
			txn.PaymentMode = *draft.PaymentMode
		} else {
			txn.PaymentMode = model.ModeCredit
		}
		txn.Amount = total.Neg()
		txn.Description = fmt.Sprintf("Return against invoice #%d", inv.ID)
	default:
		txn.BaseAction = model.ActionSaleToCustomer
		txn.PaymentMode = model.ModeCredit
		txn.Amount = total
		txn.Description = fmt.Sprintf("Sale invoice #%d", inv.ID)
	}

	// Stock leaves on a sale, returns on a sales return.
	sign := int64(-1)
	if draft.Kind == model.KindSalesReturn {
		sign = 1
	}
	for _, item := range draft.Items {
		txn.Items = append(txn.Items, model.TransactionItem{
			ProductID: item.ProductID,
			Quantity:  sign * item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return txn
}

// applyStock applies signed stock deltas and checks low-stock thresholds
// after decrements. Alerts are deduplicated by message while unread.
func (m *Materializer) applyStock(ctx context.Context, tx service.Transaction, items []model.TransactionItem) ([]string, error) {
	var alerts []string
	for _, item := range items {
		if err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		if item.Quantity >= 0 {
			continue
		}

		product, err := tx.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.LowStockThreshold > 0 && product.CurrentStock <= product.LowStockThreshold {
			msg := fmt.Sprintf("Low stock: %s (%d left)", product.Name, product.CurrentStock)
			if err := tx.AddNotification(ctx, msg); err != nil {
				return nil, err
			}
			alerts = append(alerts, msg)
		}
	}
	return alerts, nil
}

func paidAmount(draft Draft, total decimal.Decimal, refund bool) decimal.Decimal {
	if draft.Kind == model.KindSalesReturn {
		if refund {
			return total
		}
		return decimal.Zero
	}
	return draft.PaymentAmount
}

// validateDraft rejects invalid input before any write happens.
func validateDraft(draft Draft) error {
	if draft.UserID <= 0 {
		return common.NewValidationError("userId", "customer is required")
	}
	if draft.Kind != model.KindSale && draft.Kind != model.KindSalesReturn {
		return common.NewValidationError("kind", fmt.Sprintf("unknown invoice kind %q", draft.Kind))
	}
	if draft.Date.IsZero() {
		return common.NewValidationError("date", "invoice date is required")
	}
	if draft.TaxPercent.IsNegative() {
		return common.NewValidationError("taxPercent", "must not be negative")
	}
	if len(draft.Items) == 0 {
		return common.NewValidationError("items", "at least one line item is required")
	}
	for i, item := range draft.Items {
		if item.ProductID <= 0 {
			return common.NewValidationError("items", fmt.Sprintf("item %d: product is required", i))
		}
		if item.Quantity <= 0 {
			return common.NewValidationError("items", fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitPrice.IsNegative() {
			return common.NewValidationError("items", fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	if draft.PaymentAmount.IsNegative() {
		return common.NewValidationError("paymentAmount", "must not be negative")
	}
	if draft.PaymentAmount.IsPositive() && draft.PaymentMode == nil {
		return common.ErrPaymentMethodRequired
	}
	if draft.PaymentMode != nil {
		if *draft.PaymentMode != model.ModeCash && *draft.PaymentMode != model.ModeBank {
			return common.NewValidationError("paymentMode", "must be cash or bank")
		}
	}
	if draft.Kind == model.KindSalesReturn && draft.PaymentMode != nil && !draft.PaymentAmount.IsPositive() {
		return common.NewValidationError("paymentAmount", "a refund needs an explicit refund amount")
	}
	return nil
}
