// Package reconciler maps verified provider claims to a stable local
// user record, creating one on first login.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"login-service/internal/auth"
	"login-service/internal/directory"
	"login-service/internal/logger"
)

// Reconciler finds-or-creates user records keyed by email. Username
// allocation relies on the directory's atomic uniqueness enforcement:
// the probe only picks a candidate, the insert decides the winner.
type Reconciler struct {
	dir    directory.Directory
	method string // registration method tag stamped on new records
}

func New(dir directory.Directory, method string) *Reconciler {
	return &Reconciler{dir: dir, method: method}
}

// Reconcile returns the record for the claims' email, creating one if
// absent. Existing records are returned unchanged: profile fields from
// a later login are never applied retroactively.
func (r *Reconciler) Reconcile(ctx context.Context, claims auth.Claims) (*directory.User, error) {
	return r.reconcile(ctx, claims, true)
}

func (r *Reconciler) reconcile(ctx context.Context, claims auth.Claims, retry bool) (*directory.User, error) {
	existing, err := r.dir.FindByEmail(ctx, claims.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, directory.ErrNotFound) {
		return nil, err
	}

	username, err := r.allocateUsername(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	created, err := r.dir.Create(ctx, &directory.User{
		Username:           username,
		Email:              claims.Email,
		FirstName:          claims.GivenName,
		LastName:           claims.FamilyName,
		RegistrationMethod: r.method,
	})
	if err != nil {
		// Losing the allocation race surfaces as a uniqueness conflict
		// here. Re-run the whole reconciliation once: the fresh email
		// lookup picks up a concurrent winner, the fresh probe skips a
		// concurrently taken username.
		if directory.IsDuplicate(err) && retry {
			logger.Warn("reconcile conflict, retrying", map[string]any{
				"username": username,
			})
			return r.reconcile(ctx, claims, false)
		}
		return nil, err
	}

	return created, nil
}

// allocateUsername derives a candidate from the email's local part and
// probes sequentially for an unused _1, _2, ... suffix.
func (r *Reconciler) allocateUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at >= 0 {
		base = email[:at]
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := r.dir.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probing username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, suffix)
	}
}
