package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// executor abstracts *sql.DB and *sql.Tx so every query is written once
// and runs both standalone and inside a transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and a single
	// connection serializes the materializer's multi-step writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Storage methods delegate to the shared query implementations with the
// transaction as executor.

func (t *sqliteTransaction) SaveTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	return t.storage.saveTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateParty(ctx context.Context, party *model.Party) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateParty(party); err != nil {
		return 0, err
	}
	return t.storage.createPartyTx(ctx, t.tx, party)
}

func (t *sqliteTransaction) GetPartyByID(ctx context.Context, id int64) (*model.Party, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getPartyByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListParties(ctx context.Context, role model.PartyRole) ([]model.Party, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listPartiesTx(ctx, t.tx, role)
}

func (t *sqliteTransaction) UpdateParty(ctx context.Context, party *model.Party) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateParty(party); err != nil {
		return err
	}
	return t.storage.updatePartyTx(ctx, t.tx, party)
}

func (t *sqliteTransaction) CreateProduct(ctx context.Context, product *model.Product) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateProduct(product); err != nil {
		return 0, err
	}
	return t.storage.createProductTx(ctx, t.tx, product)
}

func (t *sqliteTransaction) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getProductByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listProductsTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return t.storage.updateProductTx(ctx, t.tx, product)
}

func (t *sqliteTransaction) AdjustStock(ctx context.Context, productID, delta int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(productID, "productID"); err != nil {
		return err
	}
	return t.storage.adjustStockTx(ctx, t.tx, productID, delta)
}

func (t *sqliteTransaction) GetProductsByPreferredSupplier(ctx context.Context, lenderID int64) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(lenderID, "lenderID"); err != nil {
		return nil, err
	}
	return t.storage.getProductsByPreferredSupplierTx(ctx, t.tx, lenderID)
}

func (t *sqliteTransaction) CreateInvoice(ctx context.Context, invoice *model.Invoice) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateInvoice(invoice); err != nil {
		return 0, err
	}
	return t.storage.createInvoiceTx(ctx, t.tx, invoice)
}

func (t *sqliteTransaction) GetInvoiceByID(ctx context.Context, id int64) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getInvoiceByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListInvoices(ctx context.Context, userID *int64) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listInvoicesTx(ctx, t.tx, userID)
}

func (t *sqliteTransaction) UpdateInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}
	return t.storage.updateInvoiceTx(ctx, t.tx, invoice)
}

func (t *sqliteTransaction) DeleteInvoice(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteInvoiceTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteInvoiceItems(ctx context.Context, invoiceID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(invoiceID, "invoiceID"); err != nil {
		return err
	}
	return t.storage.deleteInvoiceItemsTx(ctx, t.tx, invoiceID)
}

func (t *sqliteTransaction) CreateAgreement(ctx context.Context, agreement *model.Agreement) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateAgreement(agreement); err != nil {
		return 0, err
	}
	return t.storage.createAgreementTx(ctx, t.tx, agreement)
}

func (t *sqliteTransaction) GetAgreementByID(ctx context.Context, id int64) (*model.Agreement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getAgreementByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListAgreements(ctx context.Context) ([]model.Agreement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listAgreementsTx(ctx, t.tx)
}

func (t *sqliteTransaction) AddNotification(ctx context.Context, message string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(message, "message"); err != nil {
		return err
	}
	return t.storage.addNotificationTx(ctx, t.tx, message)
}

func (t *sqliteTransaction) ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listNotificationsTx(ctx, t.tx, unreadOnly)
}

func (t *sqliteTransaction) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return t.storage.markNotificationReadTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
