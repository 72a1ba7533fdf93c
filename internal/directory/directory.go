package directory

import (
	"context"
	"errors"
	"time"
)

// Registration method tags recorded on user records.
const (
	MethodGoogle = "google"
	MethodEmail  = "email"
)

var (
	// ErrNotFound indicates no record matched the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername indicates the username uniqueness constraint
	// rejected a create.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail indicates the email uniqueness constraint
	// rejected a create.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a record in the user directory. Username and email are
// unique across all records; records are never mutated after creation.
type User struct {
	ID                 string
	Username           string
	Email              string
	FirstName          string
	LastName           string
	RegistrationMethod string
	CreatedAt          time.Time
}

// Directory is the user store contract. Create must enforce the
// username/email uniqueness constraints atomically at write time so
// that concurrent check-then-create sequences cannot both succeed.
type Directory interface {
	// FindByEmail returns the record for the email (case-insensitive)
	// or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByUsername reports whether a record holds the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create persists a new record and returns it with storage-assigned
	// fields populated. Uniqueness conflicts surface as
	// ErrDuplicateUsername or ErrDuplicateEmail, never silently.
	Create(ctx context.Context, u *User) (*User, error)
}

// IsDuplicate reports whether err is a uniqueness conflict.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail)
}
