package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists credentials in the credentials table. The
// unique constraint on user_id makes Save first-write-wins.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, userID, hash, version string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCredentialsExist
		}
		return fmt.Errorf("credentials: save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&hash)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("credentials: get: %w", err)
	}
	return hash, nil
}
