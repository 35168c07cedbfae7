// Package storage provides the SQLite persistence layer for the khata
// application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/taxonomy"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidID          = errors.New("id must be positive")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidParty       = errors.New("invalid party")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidInvoice     = errors.New("invalid invoice")
	ErrInvalidAgreement   = errors.New("invalid agreement")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a surrogate key is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateTransaction validates a transaction before writing it. The
// category must exist in the taxonomy, the amount must carry the sign
// the category's convention calls for, and line items are only allowed
// on product-bearing categories.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}

	def, err := taxonomy.Lookup(txn.BaseAction, txn.PaymentMode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if !def.ExpectedSign.Allows(txn.Amount) {
		return fmt.Errorf("%w: category %s/%s stores %s amounts, got %s",
			ErrInvalidTransaction, txn.BaseAction, txn.PaymentMode, def.ExpectedSign, txn.Amount)
	}
	if len(txn.Items) > 0 && !def.InvolvesProduct {
		return fmt.Errorf("%w: category %s/%s does not take line items",
			ErrInvalidTransaction, txn.BaseAction, txn.PaymentMode)
	}
	for i, item := range txn.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: line item %d missing product", ErrInvalidTransaction, i)
		}
		if item.Quantity == 0 {
			return fmt.Errorf("%w: line item %d has zero quantity", ErrInvalidTransaction, i)
		}
	}
	return nil
}

// validateParty validates a party before writing it.
func validateParty(party *model.Party) error {
	if party == nil {
		return fmt.Errorf("%w: party", ErrNilParameter)
	}
	if strings.TrimSpace(party.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidParty)
	}
	if party.Role != model.RoleCustomer && party.Role != model.RoleSupplier {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidParty, party.Role)
	}
	return nil
}

// validateProduct validates a product before writing it.
func validateProduct(product *model.Product) error {
	if product == nil {
		return fmt.Errorf("%w: product", ErrNilParameter)
	}
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	}
	if product.SalePrice.IsNegative() || product.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidProduct)
	}
	return nil
}

// validateInvoice validates an invoice header and items before writing.
func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if invoice.UserID <= 0 {
		return fmt.Errorf("%w: missing customer", ErrInvalidInvoice)
	}
	if invoice.Kind != model.KindSale && invoice.Kind != model.KindSalesReturn {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInvoice, invoice.Kind)
	}
	if invoice.InvoiceDate.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidInvoice)
	}
	for i, item := range invoice.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: item %d missing product", ErrInvalidInvoice, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidInvoice, i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d has negative price", ErrInvalidInvoice, i)
		}
	}
	return nil
}

// validateAgreement validates an agreement before writing it.
func validateAgreement(agreement *model.Agreement) error {
	if agreement == nil {
		return fmt.Errorf("%w: agreement", ErrNilParameter)
	}
	if agreement.LenderID <= 0 {
		return fmt.Errorf("%w: missing lender", ErrInvalidAgreement)
	}
	if agreement.Principal.IsNegative() {
		return fmt.Errorf("%w: negative principal", ErrInvalidAgreement)
	}
	if agreement.InterestRate.IsNegative() {
		return fmt.Errorf("%w: negative interest rate", ErrInvalidAgreement)
	}
	if agreement.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidAgreement)
	}
	return nil
}
