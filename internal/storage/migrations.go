package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 5

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// Money columns are TEXT holding decimal strings; SQLite REAL would
// reintroduce the float drift the decimal type exists to prevent. Dates
// are TEXT in YYYY-MM-DD form; the model has no time component.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: parties, products, transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS parties (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					phone TEXT NOT NULL DEFAULT '',
					role TEXT NOT NULL,
					initial_balance TEXT NOT NULL DEFAULT '0',
					initial_payable_balance TEXT NOT NULL DEFAULT '0',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_parties_role ON parties(role)`,

				`CREATE TABLE IF NOT EXISTS products (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					sale_price TEXT NOT NULL DEFAULT '0',
					purchase_price TEXT NOT NULL DEFAULT '0',
					current_stock INTEGER NOT NULL DEFAULT 0,
					low_stock_threshold INTEGER NOT NULL DEFAULT 0,
					preferred_supplier_id INTEGER REFERENCES parties(id)
				)`,
				`CREATE INDEX idx_products_preferred_supplier ON products(preferred_supplier_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					base_action TEXT NOT NULL,
					payment_mode TEXT NOT NULL,
					amount TEXT NOT NULL,
					date TEXT NOT NULL,
					user_id INTEGER REFERENCES parties(id),
					lender_id INTEGER REFERENCES parties(id),
					agreement_id INTEGER,
					description TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_user ON transactions(user_id)`,
				`CREATE INDEX idx_transactions_lender ON transactions(lender_id)`,
				`CREATE INDEX idx_transactions_agreement ON transactions(agreement_id)`,

				`CREATE TABLE IF NOT EXISTS transaction_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					transaction_id INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
					product_id INTEGER NOT NULL REFERENCES products(id),
					quantity INTEGER NOT NULL,
					unit_price TEXT NOT NULL DEFAULT '0',
					position INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_transaction_items_txn ON transaction_items(transaction_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Invoices and invoice line items",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS invoices (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER NOT NULL REFERENCES parties(id),
					kind TEXT NOT NULL DEFAULT 'sale',
					invoice_date TEXT NOT NULL,
					tax_percent TEXT NOT NULL DEFAULT '0',
					total_amount TEXT NOT NULL DEFAULT '0',
					paid_amount TEXT NOT NULL DEFAULT '0',
					notes TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_invoices_user ON invoices(user_id)`,

				`CREATE TABLE IF NOT EXISTS invoice_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
					product_id INTEGER NOT NULL REFERENCES products(id),
					quantity INTEGER NOT NULL,
					unit_price TEXT NOT NULL DEFAULT '0',
					position INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_invoice_items_invoice ON invoice_items(invoice_id)`,

				`ALTER TABLE transactions ADD COLUMN invoice_id INTEGER REFERENCES invoices(id)`,
				`CREATE INDEX idx_transactions_invoice ON transactions(invoice_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Business finance agreements",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS agreements (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					lender_id INTEGER NOT NULL REFERENCES parties(id),
					agreement_type TEXT NOT NULL,
					principal TEXT NOT NULL DEFAULT '0',
					interest_rate TEXT NOT NULL DEFAULT '0',
					start_date TEXT NOT NULL,
					details TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_agreements_lender ON agreements(lender_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Low-stock notifications",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS notifications (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					message TEXT NOT NULL,
					read INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				// Dedup rule: at most one unread row per message text.
				`CREATE UNIQUE INDEX idx_notifications_unread_message
					ON notifications(message) WHERE read = 0`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     5,
		Description: "Record the interest-rate basis on agreements",
		Up: func(tx *sql.Tx) error {
			// The rate has always been applied as annual; the column makes
			// that explicit and leaves room for a confirmed monthly basis.
			_, err := tx.Exec(`ALTER TABLE agreements ADD COLUMN rate_basis TEXT NOT NULL DEFAULT 'annual'`)
			return err
		},
	},
}

// Migrate applies all pending migrations to bring the database to the
// expected schema version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
