package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"login-service/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves an OIDC discovery document plus configurable
// token and userinfo endpoints, standing in for Google.
func fakeProvider(t *testing.T, tokenHandler, userinfoHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 server.URL,
			"authorization_endpoint": server.URL + "/auth",
			"token_endpoint":         server.URL + "/token",
			"userinfo_endpoint":      server.URL + "/userinfo",
			"jwks_uri":               server.URL + "/keys",
		})
	})
	if tokenHandler != nil {
		mux.HandleFunc("/token", tokenHandler)
	}
	if userinfoHandler != nil {
		mux.HandleFunc("/userinfo", userinfoHandler)
	}

	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(context.Background(), Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "https://app.example.com/google",
		Issuer:       server.URL,
		Timeout:      2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)
}

func TestExchangeCode_Success(t *testing.T) {
	server := fakeProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "T1",
				"token_type":   "Bearer",
			})
		},
		nil,
	)
	client := newTestClient(t, server)

	accessToken, err := client.ExchangeCode(context.Background(), "VALIDCODE")
	require.NoError(t, err)
	assert.Equal(t, "T1", accessToken)
}

func TestExchangeCode_ProviderRejects(t *testing.T) {
	server := fakeProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		},
		nil,
	)
	client := newTestClient(t, server)

	_, err := client.ExchangeCode(context.Background(), "BADCODE")
	assert.ErrorIs(t, err, auth.ErrProviderExchange)
}

func TestExchangeCode_EmptyAccessToken(t *testing.T) {
	server := fakeProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"token_type": "Bearer"})
		},
		nil,
	)
	client := newTestClient(t, server)

	_, err := client.ExchangeCode(context.Background(), "VALIDCODE")
	assert.ErrorIs(t, err, auth.ErrProviderExchange)
}

func TestFetchUserInfo_Success(t *testing.T) {
	server := fakeProvider(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"sub":         "123",
				"email":       "a@x.com",
				"given_name":  "A",
				"family_name": "B",
			})
		},
	)
	client := newTestClient(t, server)

	claims, err := client.FetchUserInfo(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "A", claims.GivenName)
	assert.Equal(t, "B", claims.FamilyName)
}

func TestFetchUserInfo_NonOKStatus(t *testing.T) {
	server := fakeProvider(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_token"})
		},
	)
	client := newTestClient(t, server)

	_, err := client.FetchUserInfo(context.Background(), "expired")
	assert.ErrorIs(t, err, auth.ErrProviderUserInfo)
}

func TestFetchUserInfo_MissingEmailIsValidationFault(t *testing.T) {
	server := fakeProvider(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"sub":        "123",
				"given_name": "A",
			})
		},
	)
	client := newTestClient(t, server)

	_, err := client.FetchUserInfo(context.Background(), "T1")
	require.Error(t, err)

	var ve *auth.ValidationError
	assert.ErrorAs(t, err, &ve)
}
