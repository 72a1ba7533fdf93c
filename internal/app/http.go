package app

import (
	"context"
	"net/http"

	"login-service/internal/auth/credentials"
	"login-service/internal/auth/flow"
	"login-service/internal/auth/handler"
	"login-service/internal/auth/provider/google"
	"login-service/internal/auth/reconciler"
	"login-service/internal/auth/token"
	"login-service/internal/config"
	"login-service/internal/directory"
	"login-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	dir := directory.NewPostgres(infra.DB)

	issuer, err := token.NewIssuer(
		[]byte(cfg.JWTSecret),
		cfg.TokenIssuer,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	if err != nil {
		return nil, nil, err
	}

	googleClient, err := google.New(ctx, google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL(),
		Issuer:       cfg.GoogleIssuer,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	loginFlow := flow.New(
		googleClient,
		reconciler.New(dir, directory.MethodGoogle),
		issuer,
		cfg.FrontendBaseURL,
	)

	credsService := credentials.NewService(dir, credentials.NewPostgresStore(infra.DB))

	authHandler := handler.New(loginFlow, credsService, issuer)
	authMiddleware := middleware.NewAuthMiddleware(issuer)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
