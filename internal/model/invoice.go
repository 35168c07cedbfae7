package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes normal sales from sales returns.
type InvoiceKind string

const (
	// KindSale is a normal sale invoice.
	KindSale InvoiceKind = "sale"
	// KindSalesReturn is a return against a prior sale.
	KindSalesReturn InvoiceKind = "sales_return"
)

// Invoice is a persisted invoice header. TotalAmount is derived from line
// items plus tax at write time and stored, not recomputed on read.
// PaidAmount accumulates recorded payments.
type Invoice struct {
	InvoiceDate time.Time
	CreatedAt   time.Time
	Kind        InvoiceKind
	Notes       string
	Items       []InvoiceItem
	TaxPercent  decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	ID          int64
	UserID      int64
}

// InvoiceItem is one invoice line. Quantity is always positive here; the
// materializer applies the sign when it derives stock movements.
type InvoiceItem struct {
	UnitPrice decimal.Decimal
	ID        int64
	InvoiceID int64
	ProductID int64
	Quantity  int64
}

// Subtotal returns the sum of quantity times unit price over all items.
func (inv *Invoice) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		total = total.Add(line)
	}
	return total
}
