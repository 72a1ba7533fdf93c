package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres is the canonical directory backed by the users table.
// Uniqueness is enforced by the unique indexes created in the
// migration, so Create is safe under concurrent registrations.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*User, error) {
	var (
		u  User
		id uuid.UUID
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name, registration_method, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&id, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.RegistrationMethod, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: find by email: %w", err)
	}

	u.ID = id.String()
	return &u, nil
}

func (p *Postgres) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1
		)
	`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("directory: exists by username: %w", err)
	}
	return exists, nil
}

func (p *Postgres) Create(ctx context.Context, u *User) (*User, error) {
	var id uuid.UUID
	created := *u
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, registration_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.RegistrationMethod,
	).Scan(&id, &created.CreatedAt)

	if err != nil {
		if dup := duplicateErr(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("directory: create user: %w", err)
	}

	created.ID = id.String()
	return &created, nil
}

// duplicateErr maps a pq unique-violation to the matching sentinel,
// using the constraint name to tell username and email apart.
func duplicateErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}
