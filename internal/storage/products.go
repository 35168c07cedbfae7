package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// CreateProduct inserts a new product and returns its ID.
func (s *SQLiteStorage) CreateProduct(ctx context.Context, product *model.Product) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateProduct(product); err != nil {
		return 0, err
	}
	return s.createProductTx(ctx, s.db, product)
}

func (s *SQLiteStorage) createProductTx(ctx context.Context, q executor, product *model.Product) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO products (name, sale_price, purchase_price, current_stock, low_stock_threshold, preferred_supplier_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		product.Name,
		product.SalePrice.String(),
		product.PurchasePrice.String(),
		product.CurrentStock,
		product.LowStockThreshold,
		nullableID(product.PreferredSupplierID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get product id: %w", err)
	}
	product.ID = id
	return id, nil
}

// GetProductByID returns one product.
func (s *SQLiteStorage) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getProductByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getProductByIDTx(ctx context.Context, q executor, id int64) (*model.Product, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, sale_price, purchase_price, current_stock, low_stock_threshold, preferred_supplier_id
		FROM products
		WHERE id = ?`, id)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, common.ErrNotFound)
	}
	return product, err
}

// ListProducts returns all products ordered by name.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listProductsTx(ctx, s.db)
}

func (s *SQLiteStorage) listProductsTx(ctx context.Context, q executor) ([]model.Product, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, sale_price, purchase_price, current_stock, low_stock_threshold, preferred_supplier_id
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectProducts(rows)
}

// UpdateProduct rewrites a product's descriptive fields. CurrentStock is
// deliberately excluded; stock changes only through AdjustStock.
func (s *SQLiteStorage) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.updateProductTx(ctx, s.db, product)
}

func (s *SQLiteStorage) updateProductTx(ctx context.Context, q executor, product *model.Product) error {
	res, err := q.ExecContext(ctx, `
		UPDATE products
		SET name = ?, sale_price = ?, purchase_price = ?, low_stock_threshold = ?, preferred_supplier_id = ?
		WHERE id = ?`,
		product.Name,
		product.SalePrice.String(),
		product.PurchasePrice.String(),
		product.LowStockThreshold,
		nullableID(product.PreferredSupplierID),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", product.ID, common.ErrNotFound)
	}
	return nil
}

// AdjustStock applies a signed delta to a product's stock in a single
// UPDATE, so concurrent adjustments never lose updates.
func (s *SQLiteStorage) AdjustStock(ctx context.Context, productID, delta int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(productID, "productID"); err != nil {
		return err
	}
	return s.adjustStockTx(ctx, s.db, productID, delta)
}

func (s *SQLiteStorage) adjustStockTx(ctx context.Context, q executor, productID, delta int64) error {
	res, err := q.ExecContext(ctx,
		`UPDATE products SET current_stock = current_stock + ? WHERE id = ?`,
		delta, productID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check stock adjustment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", productID, common.ErrNotFound)
	}

	slog.Debug("adjusted stock", "product_id", productID, "delta", delta)
	return nil
}

// GetProductsByPreferredSupplier returns products whose preferred supplier
// is the given lender. Feeds the implicit stock payable rule.
func (s *SQLiteStorage) GetProductsByPreferredSupplier(ctx context.Context, lenderID int64) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(lenderID, "lenderID"); err != nil {
		return nil, err
	}
	return s.getProductsByPreferredSupplierTx(ctx, s.db, lenderID)
}

func (s *SQLiteStorage) getProductsByPreferredSupplierTx(ctx context.Context, q executor, lenderID int64) ([]model.Product, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, sale_price, purchase_price, current_stock, low_stock_threshold, preferred_supplier_id
		FROM products
		WHERE preferred_supplier_id = ?
		ORDER BY name`, lenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by supplier: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func scanProduct(row scanner) (*model.Product, error) {
	var (
		product   model.Product
		sale      string
		purchase  string
		preferred sql.NullInt64
	)
	if err := row.Scan(&product.ID, &product.Name, &sale, &purchase,
		&product.CurrentStock, &product.LowStockThreshold, &preferred); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	var err error
	if product.SalePrice, err = parseDecimal(sale, "products.sale_price"); err != nil {
		return nil, err
	}
	if product.PurchasePrice, err = parseDecimal(purchase, "products.purchase_price"); err != nil {
		return nil, err
	}
	product.PreferredSupplierID = idPointer(preferred)
	return &product, nil
}
