package testutil

import (
	"context"
	"time"

	"github.com/kickslab/backend/config"
	"github.com/kickslab/backend/migration"
	"github.com/kickslab/backend/pkg/authenticator"
	"github.com/kickslab/backend/pkg/logger"
	"github.com/kickslab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Every pooled connection of a :memory: database is a different database,
	// so keep the pool at a single connection. Concurrent callers serialize on
	// it, which is exactly what the conditional-update tests need.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: time.Minute},
			},
		},
		Raffle: config.RaffleConfigs{
			SelectionDelay:  config.Duration{Duration: time.Minute},
			PurchaseWindow:  config.Duration{Duration: time.Minute},
			SweepInterval:   config.Duration{Duration: 5 * time.Second},
			LeaderboardSize: 50,
		},
		Level: config.LevelConfigs{
			EnthusiastXP:  1000,
			SneakerheadXP: 5000,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
