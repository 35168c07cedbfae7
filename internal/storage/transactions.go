package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
)

// dateLayout is the storage form of calendar dates. No time component
// exists in the model; same-day ordering uses the transaction ID.
const dateLayout = "2006-01-02"

func parseDecimal(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt decimal in %s: %w", field, err)
	}
	return d, nil
}

func parseDate(s, field string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt date in %s: %w", field, err)
	}
	return t, nil
}

func nullableID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func idPointer(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// SaveTransaction writes a transaction and its line items, returning the
// assigned ID.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	return s.saveTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) saveTransactionTx(ctx context.Context, q executor, txn *model.Transaction) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO transactions (
			base_action, payment_mode, amount, date,
			user_id, lender_id, agreement_id, invoice_id, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(txn.BaseAction),
		string(txn.PaymentMode),
		txn.Amount.String(),
		model.Day(txn.Date).Format(dateLayout),
		nullableID(txn.UserID),
		nullableID(txn.LenderID),
		nullableID(txn.AgreementID),
		nullableID(txn.InvoiceID),
		txn.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}
	txn.ID = id

	for i, item := range txn.Items {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, quantity, unit_price, position)
			VALUES (?, ?, ?, ?, ?)`,
			id, item.ProductID, item.Quantity, item.UnitPrice.String(), i,
		); err != nil {
			return 0, fmt.Errorf("failed to insert line item %d for transaction %d: %w", i, id, err)
		}
	}

	slog.Debug("saved transaction",
		"id", id,
		"base_action", txn.BaseAction,
		"payment_mode", txn.PaymentMode,
		"amount", txn.Amount.String())
	return id, nil
}

// GetTransactionByID returns one transaction with its line items.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q executor, id int64) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, base_action, payment_mode, amount, date,
		       user_id, lender_id, agreement_id, invoice_id, description, created_at
		FROM transactions
		WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadItemsTx(ctx, q, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactions returns transactions matching the filter, ordered by
// date then ID.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q executor, filter service.TransactionFilter) ([]model.Transaction, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, model.Day(*filter.StartDate).Format(dateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, model.Day(*filter.EndDate).Format(dateLayout))
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.LenderID != nil {
		conditions = append(conditions, "lender_id = ?")
		args = append(args, *filter.LenderID)
	}
	if filter.AgreementID != nil {
		conditions = append(conditions, "agreement_id = ?")
		args = append(args, *filter.AgreementID)
	}
	if filter.InvoiceID != nil {
		conditions = append(conditions, "invoice_id = ?")
		args = append(args, *filter.InvoiceID)
	}
	if filter.BaseAction != nil {
		conditions = append(conditions, "base_action = ?")
		args = append(args, string(*filter.BaseAction))
	}

	query := `
		SELECT id, base_action, payment_mode, amount, date,
		       user_id, lender_id, agreement_id, invoice_id, description, created_at
		FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	for i := range transactions {
		if err := s.loadItemsTx(ctx, q, &transactions[i]); err != nil {
			return nil, err
		}
	}
	return transactions, nil
}

// DeleteTransaction removes a transaction; its line items cascade. Stock
// effects are not reversed here; that is the materializer's job.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q executor, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn         model.Transaction
		baseAction  string
		paymentMode string
		amount      string
		date        string
		userID      sql.NullInt64
		lenderID    sql.NullInt64
		agreementID sql.NullInt64
		invoiceID   sql.NullInt64
	)
	if err := row.Scan(&txn.ID, &baseAction, &paymentMode, &amount, &date,
		&userID, &lenderID, &agreementID, &invoiceID, &txn.Description, &txn.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.BaseAction = model.BaseAction(baseAction)
	txn.PaymentMode = model.PaymentMode(paymentMode)

	var err error
	if txn.Amount, err = parseDecimal(amount, "transactions.amount"); err != nil {
		return nil, err
	}
	if txn.Date, err = parseDate(date, "transactions.date"); err != nil {
		return nil, err
	}
	txn.UserID = idPointer(userID)
	txn.LenderID = idPointer(lenderID)
	txn.AgreementID = idPointer(agreementID)
	txn.InvoiceID = idPointer(invoiceID)
	return &txn, nil
}

func (s *SQLiteStorage) loadItemsTx(ctx context.Context, q executor, txn *model.Transaction) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price
		FROM transaction_items
		WHERE transaction_id = ?
		ORDER BY position`, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to query line items for transaction %d: %w", txn.ID, err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.TransactionItem
	for rows.Next() {
		var (
			item  model.TransactionItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.ProductID, &item.Quantity, &price); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.UnitPrice, err = parseDecimal(price, "transaction_items.unit_price"); err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating line items: %w", err)
	}
	txn.Items = items
	return nil
}
