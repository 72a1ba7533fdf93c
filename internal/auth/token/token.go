// Package token mints and verifies the session credential pair. The
// issuer is a pure function of the user's identity plus process-wide
// signing material; no I/O, no stored state.
package token

import (
	"errors"
	"fmt"
	"time"

	"login-service/internal/directory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A refresh token is exchangeable only for new access
// tokens; verification rejects it anywhere an access token is required.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("wrong token use")
)

// Pair is the credential pair minted per successful login.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Claims are the signed statements carried by both token kinds.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Issuer signs credential pairs with a process-wide HMAC secret.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer validates the signing material. A short secret is a
// configuration fault and must abort startup.
func NewIssuer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("token: signing secret must be at least 32 bytes")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token: ttls must be positive")
	}
	return &Issuer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue mints a fresh pair for the user. Consecutive calls yield
// distinct pairs: each token carries its own random jti.
func (i *Issuer) Issue(u *directory.User) (Pair, error) {
	access, err := i.sign(u, UseAccess, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := i.sign(u, UseRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("signing refresh token: %w", err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(u *directory.User, use string, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		Email:    u.Email,
		Username: u.Username,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses and validates a token and checks it carries the
// expected use.
func (i *Issuer) Verify(tokenStr, use string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != use {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenUse, claims.TokenUse, use)
	}
	return claims, nil
}
