// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/khata-app/khata/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// StartDate and EndDate are inclusive calendar dates. Results are always
// ordered by date, then by ID; insertion order is the only same-day
// tie-break the system has.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	UserID      *int64
	LenderID    *int64
	AgreementID *int64
	InvoiceID   *int64
	BaseAction  *model.BaseAction
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations. SaveTransaction writes the transaction and
	// its line items; DeleteTransaction removes both. Neither touches
	// product stock; stock symmetry is the materializer's job.
	SaveTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	// Party operations.
	CreateParty(ctx context.Context, party *model.Party) (int64, error)
	GetPartyByID(ctx context.Context, id int64) (*model.Party, error)
	ListParties(ctx context.Context, role model.PartyRole) ([]model.Party, error)
	UpdateParty(ctx context.Context, party *model.Party) error

	// Product operations. AdjustStock applies a signed delta atomically
	// (single UPDATE, no read-modify-write from the caller's side).
	CreateProduct(ctx context.Context, product *model.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	AdjustStock(ctx context.Context, productID, delta int64) error
	GetProductsByPreferredSupplier(ctx context.Context, lenderID int64) ([]model.Product, error)

	// Invoice operations. Items are written and deleted with the header.
	CreateInvoice(ctx context.Context, invoice *model.Invoice) (int64, error)
	GetInvoiceByID(ctx context.Context, id int64) (*model.Invoice, error)
	ListInvoices(ctx context.Context, userID *int64) ([]model.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice *model.Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	DeleteInvoiceItems(ctx context.Context, invoiceID int64) error

	// Agreement operations.
	CreateAgreement(ctx context.Context, agreement *model.Agreement) (int64, error)
	GetAgreementByID(ctx context.Context, id int64) (*model.Agreement, error)
	ListAgreements(ctx context.Context) ([]model.Agreement, error)

	// Notification operations. AddNotification skips the insert when an
	// identical unread message already exists.
	AddNotification(ctx context.Context, message string) error
	ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within the transaction.
	Storage
}
