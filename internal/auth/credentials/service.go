package credentials

import (
	"context"
	"errors"

	"login-service/internal/auth"
	"login-service/internal/auth/reconciler"
	"login-service/internal/directory"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("account already registered")
)

// Service implements the email/password registration and login path.
// User creation goes through the same reconciler as the OAuth flow so
// username allocation follows one set of rules, with the record tagged
// registration_method = "email".
type Service struct {
	dir        directory.Directory
	store      Store
	reconciler *reconciler.Reconciler
}

func NewService(dir directory.Directory, store Store) *Service {
	return &Service{
		dir:        dir,
		store:      store,
		reconciler: reconciler.New(dir, directory.MethodEmail),
	}
}

// Register finds-or-creates the user for the email and stores the
// password hash. A user that already holds credentials is rejected.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*directory.User, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.reconciler.Reconcile(ctx, auth.Claims{
		Email:      email,
		GivenName:  firstName,
		FamilyName: lastName,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, user.ID, hash, version); err != nil {
		if errors.Is(err, ErrCredentialsExist) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies the password for the email. Failures are
// uniform: whether the user exists is never revealed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*directory.User, error) {
	user, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.store.Get(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
