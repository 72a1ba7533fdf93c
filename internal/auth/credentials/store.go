package credentials

import (
	"context"
	"errors"
)

var (
	// ErrNoCredentials indicates the user has no password on file.
	ErrNoCredentials = errors.New("no credentials for user")
	// ErrCredentialsExist indicates the user already has a password.
	ErrCredentialsExist = errors.New("credentials already exist")
)

// Store persists password hashes keyed by user id. At most one
// credential row exists per user.
type Store interface {
	// Save stores the hash for the user; a second save for the same
	// user fails with ErrCredentialsExist.
	Save(ctx context.Context, userID, hash, version string) error

	// Get returns the stored hash or ErrNoCredentials.
	Get(ctx context.Context, userID string) (hash string, err error)
}
