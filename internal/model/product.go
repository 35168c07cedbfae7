package model

import "github.com/shopspring/decimal"

// Product is an inventory item. CurrentStock is an accumulator mutated only
// through atomic stock adjustments; it is never recomputed from scratch, so
// every code path touching it must be symmetric (apply on create,
// reverse-then-reapply on edit, reverse on delete).
type Product struct {
	Name                string
	SalePrice           decimal.Decimal
	PurchasePrice       decimal.Decimal
	ID                  int64
	CurrentStock        int64
	LowStockThreshold   int64
	PreferredSupplierID *int64
}
