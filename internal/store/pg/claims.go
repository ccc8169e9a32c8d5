package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"claimspring.org/internal/audit"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
)

var _ claims.Store = (*Store)(nil)

const claimColumns = `id, patient_id, provider_id, patient_name, provider_name, amount,
	service_date, coalesce(description,''), risk_score, risk_level, status, created_at, updated_at`

func scanClaim(row interface{ Scan(...any) error }) (*claims.Claim, error) {
	var c claims.Claim
	err := row.Scan(&c.ID, &c.PatientID, &c.ProviderID, &c.PatientName, &c.ProviderName,
		&c.Amount, &c.ServiceDate, &c.Description, &c.RiskScore, &c.RiskLevel, &c.Status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClaim(ctx context.Context, claim *claims.Claim, alert *fraud.Alert, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into claims(id, patient_id, provider_id, patient_name, provider_name, amount,
			service_date, description, risk_score, risk_level, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,nullif($8,''),$9,$10,$11,$12,$13)
	`, claim.ID, claim.PatientID, claim.ProviderID, claim.PatientName, claim.ProviderName,
		claim.Amount, claim.ServiceDate, claim.Description, claim.RiskScore, claim.RiskLevel,
		claim.Status, claim.CreatedAt, claim.UpdatedAt); err != nil {
		return err
	}
	if alert != nil {
		if err := insertAlertTx(ctx, tx, alert); err != nil {
			return err
		}
	}
	if err := appendAuditTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	row := s.db.QueryRowContext(ctx, `select `+claimColumns+` from claims where id=$1`, id)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func claimConditions(filter claims.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.ProviderID != "" {
		add("provider_id = $%d", filter.ProviderID)
	}
	if filter.PatientID != "" {
		add("patient_id = $%d", filter.PatientID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.RiskLevel != "" {
		add("risk_level = $%d", string(filter.RiskLevel))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func (s *Store) ListClaims(ctx context.Context, filter claims.ListFilter) ([]*claims.Claim, error) {
	where, args := claimConditions(filter)
	query := `select ` + claimColumns + ` from claims` + where + ` order by created_at desc, id desc`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" limit $%d", len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(" offset $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*claims.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) CountClaims(ctx context.Context, filter claims.ListFilter) (int, error) {
	where, args := claimConditions(filter)
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from claims`+where, args...).Scan(&n)
	return n, err
}

func (s *Store) UpdateClaimStatus(ctx context.Context, claim *claims.Claim, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update claims set status=$2, updated_at=$3 where id=$1
	`, claim.ID, claim.Status, claim.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return claims.ErrNotFound
	}
	if err := appendAuditTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) FlagClaim(ctx context.Context, claim *claims.Claim, alert *fraud.Alert, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update claims set status=$2, updated_at=$3 where id=$1
	`, claim.ID, claim.Status, claim.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return claims.ErrNotFound
	}
	if err := insertAlertTx(ctx, tx, alert); err != nil {
		return err
	}
	if err := appendAuditTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}
