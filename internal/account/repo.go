package account

import (
	"context"
	"database/sql"
	"errors"
)

// Repository reads stored credentials from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DeanByUserID looks up a dean login record.
func (r *Repository) DeanByUserID(ctx context.Context, userID string) (*Credentials, error) {
	var c Credentials
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, password FROM dean WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.PasswordHash)
	return scrub(&c, err)
}

// FacultyByUserID looks up a faculty login record.
func (r *Repository) FacultyByUserID(ctx context.Context, userID string) (*Credentials, error) {
	var c Credentials
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, email, department_id, password FROM faculty WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.DepartmentID, &hash)
	c.PasswordHash = hash.String
	return scrub(&c, err)
}

// StudentByEmail looks up a student login record.
func (r *Repository) StudentByEmail(ctx context.Context, email string) (*Credentials, error) {
	var c Credentials
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, section_id, password FROM students WHERE email = $1 LIMIT 1
	`, email).Scan(&c.ID, &c.Name, &c.Email, &c.SectionID, &hash)
	c.PasswordHash = hash.String
	c.UserID = c.Email
	return scrub(&c, err)
}

// ITAdminByUsername looks up an IT admin login record.
func (r *Repository) ITAdminByUsername(ctx context.Context, username string) (*Credentials, error) {
	var c Credentials
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password FROM it_admins WHERE username = $1 LIMIT 1
	`, username).Scan(&c.ID, &c.UserID, &c.PasswordHash)
	return scrub(&c, err)
}

// scrub converts no-rows to a nil record so the service treats unknown
// principals the same as bad passwords.
func scrub(c *Credentials, err error) (*Credentials, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
