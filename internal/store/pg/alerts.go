package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"claimspring.org/internal/audit"
	"claimspring.org/internal/fraud"
)

var _ fraud.Store = (*Store)(nil)

const alertColumns = `id, claim_id, user_id, category, severity, description, confidence_score,
	is_resolved, coalesce(resolved_by,''), coalesce(resolution_notes,''), created_at, resolved_at`

func insertAlertTx(ctx context.Context, tx *sql.Tx, alert *fraud.Alert) error {
	_, err := tx.ExecContext(ctx, `
		insert into fraud_alerts(id, claim_id, user_id, category, severity, description,
			confidence_score, is_resolved, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, alert.ID, alert.ClaimID, alert.UserID, alert.Category, alert.Severity,
		alert.Description, alert.Confidence, alert.Resolved, alert.CreatedAt)
	return err
}

func scanAlert(row interface{ Scan(...any) error }) (*fraud.Alert, error) {
	var (
		a          fraud.Alert
		resolvedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.ClaimID, &a.UserID, &a.Category, &a.Severity, &a.Description,
		&a.Confidence, &a.Resolved, &a.ResolvedBy, &a.ResolutionNotes, &a.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		a.ResolvedAt = resolvedAt.Time
	}
	return &a, nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (*fraud.Alert, error) {
	row := s.db.QueryRowContext(ctx, `select `+alertColumns+` from fraud_alerts where id=$1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fraud.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func alertConditions(filter fraud.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Severity != "" {
		add("severity = $%d", string(filter.Severity))
	}
	if filter.Category != "" {
		add("category = $%d", string(filter.Category))
	}
	if filter.Resolved != nil {
		add("is_resolved = $%d", *filter.Resolved)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func (s *Store) ListAlerts(ctx context.Context, filter fraud.Filter) ([]*fraud.Alert, error) {
	where, args := alertConditions(filter)
	query := `select ` + alertColumns + ` from fraud_alerts` + where + ` order by created_at desc, id desc`
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

	var result []*fraud.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) CountAlerts(ctx context.Context, filter fraud.Filter) (int, error) {
	where, args := alertConditions(filter)
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from fraud_alerts`+where, args...).Scan(&n)
	return n, err
}

func (s *Store) ResolveAlert(ctx context.Context, alert *fraud.Alert, entry *audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update fraud_alerts
		set is_resolved=true, resolved_by=$2, resolution_notes=nullif($3,''), resolved_at=$4
		where id=$1 and not is_resolved
	`, alert.ID, alert.ResolvedBy, alert.ResolutionNotes, alert.ResolvedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fraud.ErrAlreadyResolved
	}
	if err := appendAuditTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}
