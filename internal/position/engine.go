// Package position derives customer receivable and supplier payable
// positions by folding each party's transactions through the taxonomy.
// Positions are never stored; every read recomputes from scratch.
package position

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/taxonomy"
)

// Store is the slice of the storage contract this engine needs.
type Store interface {
	GetPartyByID(ctx context.Context, id int64) (*model.Party, error)
	ListParties(ctx context.Context, role model.PartyRole) ([]model.Party, error)
	GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
	GetProductsByPreferredSupplier(ctx context.Context, lenderID int64) ([]model.Product, error)
}

// Options configures the engine's business rules.
type Options struct {
	// IncludeImplicitStockPayable adds sum(currentStock * purchasePrice)
	// over a supplier's preferred products to that supplier's payable.
	// The rule approximates unpaid stock-on-hand without a purchase-order
	// subsystem; it is a deliberate modeling assumption, kept as a named
	// toggle rather than baked into the core sum.
	IncludeImplicitStockPayable bool
}

// DefaultOptions enables the implicit stock payable rule.
func DefaultOptions() Options {
	return Options{IncludeImplicitStockPayable: true}
}

// Engine computes party positions.
type Engine struct {
	store Store
	opts  Options
}

// New creates a position engine.
func New(store Store, opts Options) *Engine {
	return &Engine{store: store, opts: opts}
}

// GetCustomerPosition folds one customer's transactions into their derived
// position. A customer with no transactions returns valid zeroed positions
// plus the opening balance; a missing party is a not-found error.
func (e *Engine) GetCustomerPosition(ctx context.Context, userID int64) (*model.CustomerPosition, error) {
	party, err := e.store.GetPartyByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if party.Role != model.RoleCustomer {
		return nil, fmt.Errorf("party %d is not a customer: %w", userID, common.ErrNotFound)
	}

	pos := &model.CustomerPosition{
		UserID:          userID,
		Receivable:      party.InitialBalance,
		OutstandingLoan: decimal.Zero,
		NetChitPosition: decimal.Zero,
	}

	transactions, err := e.store.GetTransactions(ctx, service.TransactionFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load customer transactions: %w", err)
	}

	for _, txn := range transactions {
		def, lookupErr := taxonomy.Lookup(txn.BaseAction, txn.PaymentMode)
		if lookupErr != nil {
			common.LogWarn("unknown category in customer position", common.Fields{
				"transaction_id": txn.ID,
				"user_id":        userID,
				"base_action":    txn.BaseAction,
				"payment_mode":   txn.PaymentMode,
			})
			continue
		}

		switch def.Group {
		case taxonomy.GroupCustomerRevenue:
			pos.Receivable = pos.Receivable.Add(txn.Amount.Abs())
		case taxonomy.GroupCustomerPayment, taxonomy.GroupCustomerReturn:
			pos.Receivable = pos.Receivable.Sub(txn.Amount.Abs())
		case taxonomy.GroupCustomerLoanOut, taxonomy.GroupCustomerLoanIn:
			// The stored sign already encodes direction: disbursements
			// are positive, repayments and interest negative.
			pos.OutstandingLoan = pos.OutstandingLoan.Add(txn.Amount)
		case taxonomy.GroupCustomerChitIn, taxonomy.GroupCustomerChitOut:
			pos.NetChitPosition = pos.NetChitPosition.Sub(txn.Amount)
		}
	}

	return pos, nil
}

// GetSupplierPosition folds one supplier's transactions into the current
// payable, optionally adding the implicit stock payable.
func (e *Engine) GetSupplierPosition(ctx context.Context, lenderID int64) (*model.SupplierPosition, error) {
	party, err := e.store.GetPartyByID(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	if party.Role != model.RoleSupplier {
		return nil, fmt.Errorf("party %d is not a supplier: %w", lenderID, common.ErrNotFound)
	}

	pos := &model.SupplierPosition{
		LenderID:           lenderID,
		TransactionPayable: party.InitialPayableBalance,
		StockPayable:       decimal.Zero,
	}

	transactions, err := e.store.GetTransactions(ctx, service.TransactionFilter{LenderID: &lenderID})
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier transactions: %w", err)
	}

	for _, txn := range transactions {
		def, lookupErr := taxonomy.Lookup(txn.BaseAction, txn.PaymentMode)
		if lookupErr != nil {
			common.LogWarn("unknown category in supplier position", common.Fields{
				"transaction_id": txn.ID,
				"lender_id":      lenderID,
				"base_action":    txn.BaseAction,
				"payment_mode":   txn.PaymentMode,
			})
			continue
		}

		switch def.Group {
		case taxonomy.GroupSupplierExpense, taxonomy.GroupSupplierPayment, taxonomy.GroupSupplierReturn:
			// Signed sum as stored: purchases positive, payments and
			// credit notes negative, refunds received positive.
			pos.TransactionPayable = pos.TransactionPayable.Add(txn.Amount)
		}
	}

	if e.opts.IncludeImplicitStockPayable {
		products, prodErr := e.store.GetProductsByPreferredSupplier(ctx, lenderID)
		if prodErr != nil {
			return nil, fmt.Errorf("failed to load preferred-supplier products: %w", prodErr)
		}
		for _, product := range products {
			value := product.PurchasePrice.Mul(decimal.NewFromInt(product.CurrentStock))
			pos.StockPayable = pos.StockPayable.Add(value)
		}
	}

	pos.CurrentPayable = pos.TransactionPayable.Add(pos.StockPayable)
	return pos, nil
}

// CustomerSummary pairs a customer with their derived position.
type CustomerSummary struct {
	Party    model.Party
	Position model.CustomerPosition
}

// SupplierSummary pairs a supplier with their derived position.
type SupplierSummary struct {
	Party    model.Party
	Position model.SupplierPosition
}

// ListCustomerPositions computes the position of every customer.
func (e *Engine) ListCustomerPositions(ctx context.Context) ([]CustomerSummary, error) {
	parties, err := e.store.ListParties(ctx, model.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	summaries := make([]CustomerSummary, 0, len(parties))
	for _, party := range parties {
		pos, posErr := e.GetCustomerPosition(ctx, party.ID)
		if posErr != nil {
			return nil, posErr
		}
		summaries = append(summaries, CustomerSummary{Party: party, Position: *pos})
	}
	return summaries, nil
}

// ListSupplierPositions computes the position of every supplier.
func (e *Engine) ListSupplierPositions(ctx context.Context) ([]SupplierSummary, error) {
	parties, err := e.store.ListParties(ctx, model.RoleSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	summaries := make([]SupplierSummary, 0, len(parties))
	for _, party := range parties {
		pos, posErr := e.GetSupplierPosition(ctx, party.ID)
		if posErr != nil {
			return nil, posErr
		}
		summaries = append(summaries, SupplierSummary{Party: party, Position: *pos})
	}
	return summaries, nil
}

// TotalReceivable sums every customer's receivable.
func (e *Engine) TotalReceivable(ctx context.Context) (decimal.Decimal, error) {
	summaries, err := e.ListCustomerPositions(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Position.Receivable)
	}
	return total, nil
}

// TotalPayable sums every supplier's payable.
func (e *Engine) TotalPayable(ctx context.Context) (decimal.Decimal, error) {
	summaries, err := e.ListSupplierPositions(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Position.CurrentPayable)
	}
	return total, nil
}
