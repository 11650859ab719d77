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

// ProfileUpdate carries the profile fields a user may change. Nil means unchanged.
type ProfileUpdate struct {
	FullName      *string
	Skills        []string
	SkillsSet     bool
	Education     *EducationUpdate
	Experience    []domain.Experience
	ExperienceSet bool
	PortfolioLink *string
	ResumeLink    *string
}

type EducationUpdate struct {
	University     *string
	Degree         *string
	GraduationYear *int
}

const userColumns = `id, email, password_hash, full_name, role, bio, skills, education, experience,
  portfolio_link, resume_link, created_at, updated_at`

func (d *DB) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return domain.User{}, errors.New("email is required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleStudent
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Experience == nil {
		u.Experience = []domain.Experience{}
	}
	now := d.now()
	u.CreatedAt, u.UpdatedAt = now, now

	skills, _ := json.Marshal(u.Skills)
	edu, _ := json.Marshal(u.Education)
	exp, _ := json.Marshal(u.Experience)

	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO users(`+userColumns+`)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.Bio,
		string(skills), string(edu), string(exp), u.PortfolioLink, u.ResumeLink,
		formatTime(now), formatTime(now),
	)
	if isUniqueViolation(err) {
		return domain.User{}, fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (d *DB) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1;`, id)
	return scanUser(row)
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1;`, normalizeEmail(email))
	return scanUser(row)
}

// UpdateProfile applies upd to the user and returns the stored result.
func (d *DB) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (domain.User, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1;`, id))
	if err != nil {
		return domain.User{}, err
	}

	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.SkillsSet {
		u.Skills = upd.Skills
		if u.Skills == nil {
			u.Skills = []string{}
		}
	}
	if e := upd.Education; e != nil {
		if e.University != nil {
			u.Education.University = *e.University
		}
		if e.Degree != nil {
			u.Education.Degree = *e.Degree
		}
		if e.GraduationYear != nil {
			u.Education.GraduationYear = *e.GraduationYear
		}
	}
	if upd.ExperienceSet {
		u.Experience = upd.Experience
		if u.Experience == nil {
			u.Experience = []domain.Experience{}
		}
	}
	if upd.PortfolioLink != nil {
		u.PortfolioLink = *upd.PortfolioLink
	}
	if upd.ResumeLink != nil {
		u.ResumeLink = *upd.ResumeLink
	}
	u.UpdatedAt = d.now()

	skills, _ := json.Marshal(u.Skills)
	edu, _ := json.Marshal(u.Education)
	exp, _ := json.Marshal(u.Experience)

	if _, err := tx.ExecContext(ctx, `
UPDATE users SET full_name = ?, skills = ?, education = ?, experience = ?,
  portfolio_link = ?, resume_link = ?, updated_at = ?
WHERE id = ?;`,
		u.FullName, string(skills), string(edu), string(exp),
		u.PortfolioLink, u.ResumeLink, formatTime(u.UpdatedAt), u.ID,
	); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return u, tx.Commit()
}

// EnsureAdmin creates an admin account for email unless a user with it exists.
func (d *DB) EnsureAdmin(ctx context.Context, email, passwordHash string) (created bool, err error) {
	_, err = d.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	_, err = d.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     "Administrator",
		Role:         domain.RoleAdmin,
	})
	if errors.Is(err, ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

func (d *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n)
	return n, err
}

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u                    domain.User
		role                 string
		skills, edu, exp     string
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.Bio,
		&skills, &edu, &exp, &u.PortfolioLink, &u.ResumeLink, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	_ = json.Unmarshal([]byte(skills), &u.Skills)
	_ = json.Unmarshal([]byte(edu), &u.Education)
	_ = json.Unmarshal([]byte(exp), &u.Experience)
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Experience == nil {
		u.Experience = []domain.Experience{}
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
