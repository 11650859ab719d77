package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"interndesk/internal/domain"
)

type ListInternshipsOpts struct {
	Status    domain.Status // "" = any
	AppliedBy string        // only listings this user applied to
	Limit     int           // <= 0 = no limit

	// SkipApplicants leaves AppliedBy empty and saves the applications query.
	SkipApplicants bool
}

const internshipColumns = `id, program, organization, apply_link, location, stipend, skills, status,
  created_by, created_at, updated_at`

func (d *DB) CreateInternship(ctx context.Context, in domain.Internship) (domain.Internship, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	if !in.Status.Valid() {
		return domain.Internship{}, fmt.Errorf("invalid status %q", in.Status)
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}
	in.AppliedBy = []string{}
	now := d.now()
	in.CreatedAt, in.UpdatedAt = now, now

	skills, _ := json.Marshal(in.Skills)
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO internships(`+internshipColumns+`)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		in.ID, in.Program, in.Organization, in.ApplyLink, in.Location, in.Stipend,
		string(skills), string(in.Status), in.CreatedBy, formatTime(now), formatTime(now),
	)
	if isUniqueViolation(err) {
		return domain.Internship{}, fmt.Errorf("internship %s: %w", in.ID, ErrDuplicate)
	}
	if err != nil {
		return domain.Internship{}, fmt.Errorf("insert internship: %w", err)
	}
	return in, nil
}

func (d *DB) GetInternship(ctx context.Context, id string) (domain.Internship, error) {
	in, err := scanInternship(d.Pool.QueryRowContext(ctx,
		`SELECT `+internshipColumns+` FROM internships WHERE id = ? LIMIT 1;`, id))
	if err != nil {
		return domain.Internship{}, err
	}
	applicants, err := d.applicantIDs(ctx, []string{"internships.id = ?"}, []any{in.ID})
	if err != nil {
		return domain.Internship{}, err
	}
	in.AppliedBy = orEmpty(applicants[in.ID])
	return in, nil
}

// ListInternships returns listings in creation order with AppliedBy filled in.
func (d *DB) ListInternships(ctx context.Context, opts ListInternshipsOpts) ([]domain.Internship, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		where = append(where, "internships.status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.AppliedBy != "" {
		where = append(where, "internships.id IN (SELECT internship_id FROM applications WHERE user_id = ?)")
		args = append(args, opts.AppliedBy)
	}

	query := `SELECT ` + internshipColumns + ` FROM internships`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, rowid"
	listArgs := args
	if opts.Limit > 0 {
		query += " LIMIT ?"
		listArgs = append(append([]any(nil), args...), opts.Limit)
	}

	rows, err := d.Pool.QueryContext(ctx, query+";", listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Internship{}
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if opts.SkipApplicants {
		for i := range out {
			out[i].AppliedBy = []string{}
		}
		return out, nil
	}
	applicants, err := d.applicantIDs(ctx, where, args)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AppliedBy = orEmpty(applicants[out[i].ID])
	}
	return out, nil
}

func (d *DB) UpdateInternshipStatus(ctx context.Context, id string, status domain.Status) (domain.Internship, error) {
	if !status.Valid() {
		return domain.Internship{}, fmt.Errorf("invalid status %q", status)
	}
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE internships SET status = ?, updated_at = ? WHERE id = ?;`,
		string(status), formatTime(d.now()), id)
	if err != nil {
		return domain.Internship{}, fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Internship{}, ErrNotFound
	}
	return d.GetInternship(ctx, id)
}

func (d *DB) DeleteInternship(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM internships WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns how many listings are in each lifecycle state.
func (d *DB) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT status, COUNT(*) FROM internships GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[domain.Status]int{
		domain.StatusPending:  0,
		domain.StatusApproved: 0,
		domain.StatusRejected: 0,
	}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[domain.Status(s)] = n
	}
	return out, rows.Err()
}

func scanInternship(row interface{ Scan(dest ...any) error }) (domain.Internship, error) {
	var (
		in                   domain.Internship
		skills, status       string
		createdAt, updatedAt string
	)
	err := row.Scan(&in.ID, &in.Program, &in.Organization, &in.ApplyLink, &in.Location,
		&in.Stipend, &skills, &status, &in.CreatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Internship{}, ErrNotFound
	}
	if err != nil {
		return domain.Internship{}, err
	}
	_ = json.Unmarshal([]byte(skills), &in.Skills)
	if in.Skills == nil {
		in.Skills = []string{}
	}
	in.Status = domain.Status(status)
	in.CreatedAt = parseTime(createdAt)
	in.UpdatedAt = parseTime(updatedAt)
	return in, nil
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
