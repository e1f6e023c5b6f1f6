package statistic

import (
	"context"
	"errors"

	"github.com/kickslab/backend/internal/model"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/xcontext"
	"github.com/kickslab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Leaderboard interface {
	GetTopUsers(ctx context.Context, offset, limit int) ([]model.UserStatistic, error)
	GetRank(ctx context.Context, userID string) (int, error)
	ChangeXPLeaderboard(ctx context.Context, value int64, userID string) error
}

type leaderboard struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client

	// Collapses concurrent rebuilds after the redis key expires or is lost.
	rebuildGroup singleflight.Group
}

func New(userRepo repository.UserRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{userRepo: userRepo, redisClient: redisClient}
}

func (l *leaderboard) GetTopUsers(
	ctx context.Context, offset, limit int,
) ([]model.UserStatistic, error) {
	ok, err := l.redisClient.Exist(ctx, xpLeaderboardKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	if !ok {
		if err := l.loadLeaderboardFromDB(ctx); err != nil {
			return nil, err
		}
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, xpLeaderboardKey, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, z := range results {
		userIDs = append(userIDs, z.Member.(string))
	}

	users, err := l.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard users: %v", err)
		return nil, errorx.Unknown
	}

	nameByID := map[string]string{}
	levelByID := map[string]string{}
	for _, u := range users {
		nameByID[u.ID] = u.Name
		levelByID[u.ID] = string(u.Level)
	}

	statistics := []model.UserStatistic{}
	for i, z := range results {
		userID := z.Member.(string)
		statistics = append(statistics, model.UserStatistic{
			User: model.User{
				ID:    userID,
				Name:  nameByID[userID],
				Level: levelByID[userID],
				XP:    int64(z.Score),
			},
			Value:       int64(z.Score),
			CurrentRank: offset + i + 1,
		})
	}

	return statistics, nil
}

// GetRank returns the user's 1-based position on the xp leaderboard, or 0
// when the user is outside the tracked top.
func (l *leaderboard) GetRank(ctx context.Context, userID string) (int, error) {
	ok, err := l.redisClient.Exist(ctx, xpLeaderboardKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return 0, errorx.Unknown
	}

	if !ok {
		if err := l.loadLeaderboardFromDB(ctx); err != nil {
			return 0, err
		}
	}

	rank, err := l.redisClient.ZRevRank(ctx, xpLeaderboardKey, userID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get revrank redis: %v", err)
		return 0, errorx.Unknown
	}

	return int(rank) + 1, nil
}

func (l *leaderboard) ChangeXPLeaderboard(
	ctx context.Context, value int64, userID string,
) error {
	ok, err := l.redisClient.Exist(ctx, xpLeaderboardKey)
	if err != nil {
		return err
	}

	// The key will be rebuilt from the database on the next read.
	if !ok {
		return nil
	}

	return l.redisClient.ZIncrBy(ctx, xpLeaderboardKey, value, userID)
}

func (l *leaderboard) loadLeaderboardFromDB(ctx context.Context) error {
	_, err, _ := l.rebuildGroup.Do(xpLeaderboardKey, func() (any, error) {
		limit := xcontext.Configs(ctx).Raffle.LeaderboardSize
		users, err := l.userRepo.GetTopByXP(ctx, limit)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load top users from database: %v", err)
			return nil, errorx.Unknown
		}

		for _, u := range users {
			err := l.redisClient.ZAdd(ctx, xpLeaderboardKey, redis.Z{
				Score:  float64(u.XP),
				Member: u.ID,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot add user to leaderboard: %v", err)
				// A half-built key would serve truncated results until it is
				// next lost, so drop it and rebuild on the next read.
				if delErr := l.redisClient.Del(ctx, xpLeaderboardKey); delErr != nil {
					xcontext.Logger(ctx).Errorf("Cannot drop partial leaderboard: %v", delErr)
				}

				return nil, errorx.Unknown
			}
		}

		return nil, nil
	})

	return err
}
