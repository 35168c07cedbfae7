package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
)

// CreateAgreement inserts a new business finance agreement and returns
// its ID.
func (s *SQLiteStorage) CreateAgreement(ctx context.Context, agreement *model.Agreement) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateAgreement(agreement); err != nil {
		return 0, err
	}
	return s.createAgreementTx(ctx, s.db, agreement)
}

func (s *SQLiteStorage) createAgreementTx(ctx context.Context, q executor, agreement *model.Agreement) (int64, error) {
	rateBasis := agreement.RateBasis
	if rateBasis == "" {
		rateBasis = model.RateAnnual
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO agreements (lender_id, agreement_type, principal, interest_rate, rate_basis, start_date, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		agreement.LenderID,
		string(agreement.Type),
		agreement.Principal.String(),
		agreement.InterestRate.String(),
		string(rateBasis),
		model.Day(agreement.StartDate).Format(dateLayout),
		agreement.Details,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert agreement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get agreement id: %w", err)
	}
	agreement.ID = id
	return id, nil
}

// GetAgreementByID returns one agreement.
func (s *SQLiteStorage) GetAgreementByID(ctx context.Context, id int64) (*model.Agreement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getAgreementByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getAgreementByIDTx(ctx context.Context, q executor, id int64) (*model.Agreement, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, lender_id, agreement_type, principal, interest_rate, rate_basis, start_date, details, created_at
		FROM agreements
		WHERE id = ?`, id)

	agreement, err := scanAgreement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agreement %d: %w", id, common.ErrNotFound)
	}
	return agreement, err
}

// ListAgreements returns all agreements, oldest first.
func (s *SQLiteStorage) ListAgreements(ctx context.Context) ([]model.Agreement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAgreementsTx(ctx, s.db)
}

func (s *SQLiteStorage) listAgreementsTx(ctx context.Context, q executor) ([]model.Agreement, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, lender_id, agreement_type, principal, interest_rate, rate_basis, start_date, details, created_at
		FROM agreements
		ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agreements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var agreements []model.Agreement
	for rows.Next() {
		agreement, scanErr := scanAgreement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		agreements = append(agreements, *agreement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agreements: %w", err)
	}
	return agreements, nil
}

func scanAgreement(row scanner) (*model.Agreement, error) {
	var (
		agreement model.Agreement
		agType    string
		principal string
		rate      string
		basis     string
		start     string
	)
	if err := row.Scan(&agreement.ID, &agreement.LenderID, &agType, &principal, &rate, &basis,
		&start, &agreement.Details, &agreement.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan agreement: %w", err)
	}
	agreement.Type = model.AgreementType(agType)
	agreement.RateBasis = model.RateBasis(basis)

	var err error
	if agreement.Principal, err = parseDecimal(principal, "agreements.principal"); err != nil {
		return nil, err
	}
	if agreement.InterestRate, err = parseDecimal(rate, "agreements.interest_rate"); err != nil {
		return nil, err
	}
	if agreement.StartDate, err = parseDate(start, "agreements.start_date"); err != nil {
		return nil, err
	}
	return &agreement, nil
}
