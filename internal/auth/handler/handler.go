package handler

import (
	"net/http"

	"login-service/internal/auth/credentials"
	"login-service/internal/auth/flow"
	"login-service/internal/auth/token"

	"github.com/gin-gonic/gin"
)

// Handler owns the public auth endpoints. It is HTTP boilerplate only:
// parsing parameters, invoking services, translating outcomes.
type Handler struct {
	login  *flow.Service
	creds  *credentials.Service
	issuer *token.Issuer
}

func New(login *flow.Service, creds *credentials.Service, issuer *token.Issuer) *Handler {
	return &Handler{
		login:  login,
		creds:  creds,
		issuer: issuer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/google/callback", h.googleCallback)
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.passwordLogin)
}

func (h *Handler) googleCallback(c *gin.Context) {
	attempt := flow.Attempt{
		Code:          c.Query("code"),
		ProviderError: c.Query("error"),
	}

	outcome, err := h.login.Login(c.Request.Context(), attempt)
	if err != nil {
		// Fatal faults (signing configuration) are not user errors and
		// must not be masked behind a redirect.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if outcome.Redirect != "" {
		c.Redirect(http.StatusFound, outcome.Redirect)
		return
	}

	c.JSON(http.StatusOK, outcome.Success)
}
