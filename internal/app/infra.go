package app

import (
	"context"
	"database/sql"

	"login-service/internal/config"
	"login-service/internal/db"
	"login-service/internal/logger"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB *sql.DB
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	return &Infra{DB: sqlDB}, nil
}
