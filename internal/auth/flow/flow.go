// Package flow sequences the login callback: code exchange, identity
// reconciliation, and credential issuance. It is framework-free; the
// HTTP layer translates its tagged outcome into a response.
package flow

import (
	"context"
	"net/url"

	"login-service/internal/auth"
	"login-service/internal/auth/token"
	"login-service/internal/directory"
	"login-service/internal/logger"
)

// ProviderClient performs the two outbound provider calls.
type ProviderClient interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUserInfo(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// Reconciler maps provider claims to a local user record.
type Reconciler interface {
	Reconcile(ctx context.Context, claims auth.Claims) (*directory.User, error)
}

// Issuer mints the credential pair for a resolved user.
type Issuer interface {
	Issue(u *directory.User) (token.Pair, error)
}

// Attempt is the validated input parsed from the provider's redirect
// parameters. Exactly one of Code or ProviderError is meaningful;
// absence of both is itself an error condition.
type Attempt struct {
	Code          string
	ProviderError string
}

// UserView is the public projection of a user record.
type UserView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginResponse is the success payload.
type LoginResponse struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// Outcome is the tagged result of a login attempt: exactly one of
// Redirect (error redirect URL) or Success is set.
type Outcome struct {
	Redirect string
	Success  *LoginResponse
}

// Service orchestrates one login attempt per call. Invocations are
// independent and stateless; arbitrarily many may run concurrently.
type Service struct {
	provider        ProviderClient
	reconciler      Reconciler
	issuer          Issuer
	frontendBaseURL string
}

func New(provider ProviderClient, reconciler Reconciler, issuer Issuer, frontendBaseURL string) *Service {
	return &Service{
		provider:        provider,
		reconciler:      reconciler,
		issuer:          issuer,
		frontendBaseURL: frontendBaseURL,
	}
}

// Login runs the callback state machine. Every recoverable failure is
// converted into an error-redirect outcome; the error return is
// reserved for fatal faults (broken signing configuration) that the
// HTTP layer must not mask behind a redirect.
func (s *Service) Login(ctx context.Context, attempt Attempt) (Outcome, error) {
	if attempt.ProviderError != "" || attempt.Code == "" {
		reason := attempt.ProviderError
		if reason == "" {
			reason = "missing code"
		}
		return s.errorRedirect(reason), nil
	}

	accessToken, err := s.provider.ExchangeCode(ctx, attempt.Code)
	if err != nil {
		logger.Warn("token exchange failed", map[string]any{"error": err.Error()})
		return s.errorRedirect(auth.UserMessage(err)), nil
	}

	claims, err := s.provider.FetchUserInfo(ctx, accessToken)
	if err != nil {
		logger.Warn("userinfo fetch failed", map[string]any{"error": err.Error()})
		return s.errorRedirect(auth.UserMessage(err)), nil
	}

	user, err := s.reconciler.Reconcile(ctx, *claims)
	if err != nil {
		logger.Error("reconciliation failed", map[string]any{"error": err.Error()})
		return s.errorRedirect(auth.UserMessage(err)), nil
	}

	pair, err := s.issuer.Issue(user)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Success: NewLoginResponse(user, pair)}, nil
}

// NewLoginResponse builds the uniform success payload shared by the
// OAuth callback and the password endpoints.
func NewLoginResponse(u *directory.User, pair token.Pair) *LoginResponse {
	return &LoginResponse{
		User: UserView{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func (s *Service) errorRedirect(reason string) Outcome {
	return Outcome{Redirect: ErrorRedirectURL(s.frontendBaseURL, reason)}
}

// ErrorRedirectURL builds {frontendBaseUrl}?error={urlencoded reason}.
func ErrorRedirectURL(frontendBaseURL, reason string) string {
	params := url.Values{"error": {reason}}
	return frontendBaseURL + "?" + params.Encode()
}
