package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"login-service/internal/auth"
	"login-service/internal/auth/credentials"
	"login-service/internal/auth/flow"
	"login-service/internal/auth/reconciler"
	"login-service/internal/auth/token"
	"login-service/internal/directory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendURL = "https://app.example.com"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	accessToken string
	exchangeErr error
	claims      *auth.Claims
	claimsErr   error
}

func (s *stubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return s.accessToken, s.exchangeErr
}

func (s *stubProvider) FetchUserInfo(ctx context.Context, accessToken string) (*auth.Claims, error) {
	return s.claims, s.claimsErr
}

type testEnv struct {
	router *gin.Engine
	dir    *directory.Memory
	issuer *token.Issuer
}

func setup(t *testing.T, provider flow.ProviderClient) testEnv {
	t.Helper()

	dir := directory.NewMemory()
	issuer, err := token.NewIssuer(
		[]byte("0123456789abcdef0123456789abcdef"),
		"login-service",
		15*time.Minute,
		168*time.Hour,
	)
	require.NoError(t, err)

	loginFlow := flow.New(
		provider,
		reconciler.New(dir, directory.MethodGoogle),
		issuer,
		frontendURL,
	)
	credsService := credentials.NewService(dir, credentials.NewMemoryStore())

	router := gin.New()
	New(loginFlow, credsService, issuer).RegisterRoutes(router)

	return testEnv{router: router, dir: dir, issuer: issuer}
}

func doGet(env testEnv, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	env.router.ServeHTTP(rr, req)
	return rr
}

func doPostJSON(env testEnv, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestGoogleCallback_ProviderErrorRedirects(t *testing.T) {
	env := setup(t, &stubProvider{})

	rr := doGet(env, "/auth/google/callback?error=access_denied")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, frontendURL+"?error=access_denied", rr.Header().Get("Location"))
}

func TestGoogleCallback_MissingCodeRedirects(t *testing.T) {
	env := setup(t, &stubProvider{})

	rr := doGet(env, "/auth/google/callback")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "error=missing")
}

func TestGoogleCallback_FirstLoginCreatesUser(t *testing.T) {
	env := setup(t, &stubProvider{
		accessToken: "T1",
		claims:      &auth.Claims{Email: "a@x.com", GivenName: "A"},
	})

	rr := doGet(env, "/auth/google/callback?code=VALIDCODE")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp flow.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "a", resp.User.Username)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, "A", resp.User.FirstName)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// Issued credentials verify against the issuer.
	claims, err := env.issuer.Verify(resp.AccessToken, token.UseAccess)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)
}

func TestGoogleCallback_RepeatLoginReusesRecord(t *testing.T) {
	env := setup(t, &stubProvider{
		accessToken: "T1",
		claims:      &auth.Claims{Email: "a@x.com", GivenName: "A"},
	})

	first := doGet(env, "/auth/google/callback?code=CODE1")
	require.Equal(t, http.StatusOK, first.Code)
	second := doGet(env, "/auth/google/callback?code=CODE2")
	require.Equal(t, http.StatusOK, second.Code)

	var firstResp, secondResp flow.LoginResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))

	assert.Equal(t, firstResp.User.ID, secondResp.User.ID)
	assert.Equal(t, "a", secondResp.User.Username)

	// No suffixed duplicate was created.
	exists, err := env.dir.ExistsByUsername(context.Background(), "a_1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGoogleCallback_ExchangeFailureRedirectsGeneric(t *testing.T) {
	env := setup(t, &stubProvider{exchangeErr: auth.ErrProviderExchange})

	rr := doGet(env, "/auth/google/callback?code=BADCODE")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t,
		flow.ErrorRedirectURL(frontendURL, auth.GenericErrorMessage),
		rr.Header().Get("Location"),
	)

	// The failure left no user behind.
	_, err := env.dir.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestRegisterAndLogin(t *testing.T) {
	env := setup(t, &stubProvider{})

	rr := doPostJSON(env, "/auth/register",
		`{"email":"b@x.com","password":"hunter22!","first_name":"B"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered flow.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.Equal(t, "b", registered.User.Username)
	assert.NotEmpty(t, registered.AccessToken)

	rr = doPostJSON(env, "/auth/login", `{"email":"b@x.com","password":"hunter22!"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doPostJSON(env, "/auth/login", `{"email":"b@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	env := setup(t, &stubProvider{})

	rr := doPostJSON(env, "/auth/register",
		`{"email":"b@x.com","password":"hunter22!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doPostJSON(env, "/auth/register",
		`{"email":"b@x.com","password":"hunter22!"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
