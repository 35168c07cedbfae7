package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// CreateInvoice inserts an invoice header and its line items, returning
// the assigned ID.
func (s *SQLiteStorage) CreateInvoice(ctx context.Context, invoice *model.Invoice) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateInvoice(invoice); err != nil {
		return 0, err
	}
	return s.createInvoiceTx(ctx, s.db, invoice)
}

func (s *SQLiteStorage) createInvoiceTx(ctx context.Context, q executor, invoice *model.Invoice) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO invoices (user_id, kind, invoice_date, tax_percent, total_amount, paid_amount, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invoice.UserID,
		string(invoice.Kind),
		model.Day(invoice.InvoiceDate).Format(dateLayout),
		invoice.TaxPercent.String(),
		invoice.TotalAmount.String(),
		invoice.PaidAmount.String(),
		invoice.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get invoice id: %w", err)
	}
	invoice.ID = id

	if err := s.insertInvoiceItemsTx(ctx, q, id, invoice.Items); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStorage) insertInvoiceItemsTx(ctx context.Context, q executor, invoiceID int64, items []model.InvoiceItem) error {
	for i, item := range items {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, position)
			VALUES (?, ?, ?, ?, ?)`,
			invoiceID, item.ProductID, item.Quantity, item.UnitPrice.String(), i,
		); err != nil {
			return fmt.Errorf("failed to insert invoice item %d for invoice %d: %w", i, invoiceID, err)
		}
	}
	return nil
}

// GetInvoiceByID returns one invoice with its line items.
func (s *SQLiteStorage) GetInvoiceByID(ctx context.Context, id int64) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getInvoiceByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getInvoiceByIDTx(ctx context.Context, q executor, id int64) (*model.Invoice, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, user_id, kind, invoice_date, tax_percent, total_amount, paid_amount, notes, created_at
		FROM invoices
		WHERE id = ?`, id)

	invoice, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadInvoiceItemsTx(ctx, q, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ListInvoices returns invoices, optionally restricted to one customer,
// newest first.
func (s *SQLiteStorage) ListInvoices(ctx context.Context, userID *int64) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listInvoicesTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listInvoicesTx(ctx context.Context, q executor, userID *int64) ([]model.Invoice, error) {
	query := `
		SELECT id, user_id, kind, invoice_date, tax_percent, total_amount, paid_amount, notes, created_at
		FROM invoices`
	var args []any
	if userID != nil {
		query += " WHERE user_id = ?"
		args = append(args, *userID)
	}
	query += " ORDER BY invoice_date DESC, id DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var invoices []model.Invoice
	for rows.Next() {
		invoice, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	for i := range invoices {
		if err := s.loadInvoiceItemsTx(ctx, q, &invoices[i]); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// UpdateInvoice rewrites an invoice header and replaces its line items.
func (s *SQLiteStorage) UpdateInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}
	return s.updateInvoiceTx(ctx, s.db, invoice)
}

func (s *SQLiteStorage) updateInvoiceTx(ctx context.Context, q executor, invoice *model.Invoice) error {
	res, err := q.ExecContext(ctx, `
		UPDATE invoices
		SET user_id = ?, kind = ?, invoice_date = ?, tax_percent = ?, total_amount = ?, paid_amount = ?, notes = ?
		WHERE id = ?`,
		invoice.UserID,
		string(invoice.Kind),
		model.Day(invoice.InvoiceDate).Format(dateLayout),
		invoice.TaxPercent.String(),
		invoice.TotalAmount.String(),
		invoice.PaidAmount.String(),
		invoice.Notes,
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", invoice.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d: %w", invoice.ID, common.ErrNotFound)
	}

	if err := s.deleteInvoiceItemsTx(ctx, q, invoice.ID); err != nil {
		return err
	}
	return s.insertInvoiceItemsTx(ctx, q, invoice.ID, invoice.Items)
}

// DeleteInvoice removes an invoice; its line items cascade. Linked
// transactions are the materializer's responsibility.
func (s *SQLiteStorage) DeleteInvoice(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return s.deleteInvoiceTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteInvoiceTx(ctx context.Context, q executor, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteInvoiceItems removes all line items for an invoice without
// touching the header.
func (s *SQLiteStorage) DeleteInvoiceItems(ctx context.Context, invoiceID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(invoiceID, "invoiceID"); err != nil {
		return err
	}
	return s.deleteInvoiceItemsTx(ctx, s.db, invoiceID)
}

func (s *SQLiteStorage) deleteInvoiceItemsTx(ctx context.Context, q executor, invoiceID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete items for invoice %d: %w", invoiceID, err)
	}
	return nil
}

func scanInvoice(row scanner) (*model.Invoice, error) {
	var (
		invoice model.Invoice
		kind    string
		date    string
		tax     string
		total   string
		paid    string
	)
	if err := row.Scan(&invoice.ID, &invoice.UserID, &kind, &date, &tax, &total, &paid,
		&invoice.Notes, &invoice.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	invoice.Kind = model.InvoiceKind(kind)

	var err error
	if invoice.InvoiceDate, err = parseDate(date, "invoices.invoice_date"); err != nil {
		return nil, err
	}
	if invoice.TaxPercent, err = parseDecimal(tax, "invoices.tax_percent"); err != nil {
		return nil, err
	}
	if invoice.TotalAmount, err = parseDecimal(total, "invoices.total_amount"); err != nil {
		return nil, err
	}
	if invoice.PaidAmount, err = parseDecimal(paid, "invoices.paid_amount"); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *SQLiteStorage) loadInvoiceItemsTx(ctx context.Context, q executor, invoice *model.Invoice) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position`, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to query items for invoice %d: %w", invoice.ID, err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.InvoiceItem
	for rows.Next() {
		var (
			item  model.InvoiceItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.Quantity, &price); err != nil {
			return fmt.Errorf("failed to scan invoice item: %w", err)
		}
		if item.UnitPrice, err = parseDecimal(price, "invoice_items.unit_price"); err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating invoice items: %w", err)
	}
	invoice.Items = items
	return nil
}
