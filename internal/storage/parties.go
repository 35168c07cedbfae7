package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// CreateParty inserts a new party and returns its ID.
func (s *SQLiteStorage) CreateParty(ctx context.Context, party *model.Party) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateParty(party); err != nil {
		return 0, err
	}
	return s.createPartyTx(ctx, s.db, party)
}

func (s *SQLiteStorage) createPartyTx(ctx context.Context, q executor, party *model.Party) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO parties (name, phone, role, initial_balance, initial_payable_balance)
		VALUES (?, ?, ?, ?, ?)`,
		party.Name,
		party.Phone,
		string(party.Role),
		party.InitialBalance.String(),
		party.InitialPayableBalance.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert party: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get party id: %w", err)
	}
	party.ID = id
	return id, nil
}

// GetPartyByID returns one party.
func (s *SQLiteStorage) GetPartyByID(ctx context.Context, id int64) (*model.Party, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getPartyByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getPartyByIDTx(ctx context.Context, q executor, id int64) (*model.Party, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, phone, role, initial_balance, initial_payable_balance, created_at
		FROM parties
		WHERE id = ?`, id)

	party, err := scanParty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party %d: %w", id, common.ErrNotFound)
	}
	return party, err
}

// ListParties returns all parties with the given role, ordered by name.
func (s *SQLiteStorage) ListParties(ctx context.Context, role model.PartyRole) ([]model.Party, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listPartiesTx(ctx, s.db, role)
}

func (s *SQLiteStorage) listPartiesTx(ctx context.Context, q executor, role model.PartyRole) ([]model.Party, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, phone, role, initial_balance, initial_payable_balance, created_at
		FROM parties
		WHERE role = ?
		ORDER BY name`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var parties []model.Party
	for rows.Next() {
		party, scanErr := scanParty(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		parties = append(parties, *party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parties: %w", err)
	}
	return parties, nil
}

// UpdateParty rewrites a party's mutable fields, including the opening
// balances (explicit edit is the only way those change after creation).
func (s *SQLiteStorage) UpdateParty(ctx context.Context, party *model.Party) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateParty(party); err != nil {
		return err
	}
	return s.updatePartyTx(ctx, s.db, party)
}

func (s *SQLiteStorage) updatePartyTx(ctx context.Context, q executor, party *model.Party) error {
	res, err := q.ExecContext(ctx, `
		UPDATE parties
		SET name = ?, phone = ?, initial_balance = ?, initial_payable_balance = ?
		WHERE id = ?`,
		party.Name,
		party.Phone,
		party.InitialBalance.String(),
		party.InitialPayableBalance.String(),
		party.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update party %d: %w", party.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("party %d: %w", party.ID, common.ErrNotFound)
	}
	return nil
}

func scanParty(row scanner) (*model.Party, error) {
	var (
		party   model.Party
		role    string
		initial string
		payable string
	)
	if err := row.Scan(&party.ID, &party.Name, &party.Phone, &role, &initial, &payable, &party.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan party: %w", err)
	}
	party.Role = model.PartyRole(role)

	var err error
	if party.InitialBalance, err = parseDecimal(initial, "parties.initial_balance"); err != nil {
		return nil, err
	}
	if party.InitialPayableBalance, err = parseDecimal(payable, "parties.initial_payable_balance"); err != nil {
		return nil, err
	}
	return &party, nil
}
