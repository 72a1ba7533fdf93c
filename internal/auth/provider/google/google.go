package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"login-service/internal/auth"
	"login-service/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const defaultIssuer = "https://accounts.google.com"

// Config holds the Google OAuth settings for the server-side leg of
// the authorization-code flow.
type Config struct {
	ClientID     string
	ClientSecret string

	// RedirectURL must exactly match the URI used by the frontend to
	// obtain the authorization code: {frontendBaseUrl}/google.
	RedirectURL string

	// Issuer overrides the discovery issuer. Tests point it at a fake
	// provider; empty means the public Google issuer.
	Issuer string

	// Timeout bounds each outbound provider call.
	Timeout time.Duration
}

// Client performs the two outbound provider calls: code→token and
// token→claims. It holds no mutable state and is safe for concurrent
// use. Neither call retries internally; a failed login is restarted
// from the top by the user.
type Client struct {
	oauthConfig *oauth2.Config
	provider    *oidc.Provider
	httpClient  *http.Client
	timeout     time.Duration
}

// New discovers the provider endpoints and builds the client.
// Discovery failures and missing settings are startup faults.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Client{
		oauthConfig: oauthCfg,
		provider:    oidcProvider,
		httpClient:  httpClient,
		timeout:     timeout,
	}, nil
}

// ExchangeCode trades the authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.oauthConfig.Exchange(oidc.ClientContext(ctx, c.httpClient), code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: status %d: %s",
				auth.ErrProviderExchange, retrieveErr.Response.StatusCode, retrieveErr.Body)
		}
		return "", fmt.Errorf("%w: %v", auth.ErrProviderExchange, err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", auth.ErrProviderExchange)
	}

	return token.AccessToken, nil
}

// FetchUserInfo calls the userinfo endpoint with the access token as
// bearer credential and returns the normalized claims.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*auth.Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	info, err := c.provider.UserInfo(oidc.ClientContext(ctx, c.httpClient), source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrProviderUserInfo, err)
	}

	var payload struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := info.Claims(&payload); err != nil {
		return nil, fmt.Errorf("%w: parsing claims: %v", auth.ErrProviderUserInfo, err)
	}

	if payload.Email == "" {
		payload.Email = info.Email
	}
	if payload.Email == "" {
		return nil, auth.NewValidationError("Google did not provide an email address.")
	}

	logger.Info("google userinfo fetched", map[string]any{
		"email_present": payload.Email != "",
		"name_present":  payload.GivenName != "",
	})

	return &auth.Claims{
		Email:      payload.Email,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
	}, nil
}
