package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"interndesk/internal/domain"
)

// Apply records userID as an applicant of internshipID.
// ErrNotFound if the listing is gone, ErrDuplicate if the user already applied.
func (d *DB) Apply(ctx context.Context, internshipID, userID string) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM internships WHERE id = ? LIMIT 1;`, internshipID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO applications(internship_id, user_id, applied_at)
VALUES(?,?,?);`, internshipID, userID, formatTime(d.now()))
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return tx.Commit()
}

// ListApplicants returns the users who applied to internshipID, in application order.
func (d *DB) ListApplicants(ctx context.Context, internshipID string) ([]domain.Applicant, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT `+prefixed("u.", userColumns)+`
FROM applications a
JOIN users u ON u.id = a.user_id
WHERE a.internship_id = ?
ORDER BY a.applied_at, a.rowid;`, internshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Applicant{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u.Applicant())
	}
	return out, rows.Err()
}

// applicantIDs maps internship id to applicant user ids for every listing matching
// where. It joins on the listing filter so the bound arguments never grow with the catalog.
func (d *DB) applicantIDs(ctx context.Context, where []string, args []any) (map[string][]string, error) {
	query := `
SELECT a.internship_id, a.user_id
FROM applications a
JOIN internships ON internships.id = a.internship_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.applied_at, a.rowid;"

	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var iid, uid string
		if err := rows.Scan(&iid, &uid); err != nil {
			return nil, err
		}
		out[iid] = append(out[iid], uid)
	}
	return out, rows.Err()
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
