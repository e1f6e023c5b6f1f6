package migration

import (
	"context"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/pkg/xcontext"
)

func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Raffle{},
		&entity.RaffleEntry{},
	)
}
