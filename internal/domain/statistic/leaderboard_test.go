package statistic

import (
	"context"
	"errors"
	"testing"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func Test_leaderboard_GetTopUsers_RebuildsFromDB(t *testing.T) {
	ctx := testutil.MockContext()

	first, err := testutil.SampleUser(ctx, &entity.User{XP: 300})
	require.NoError(t, err)
	second, err := testutil.SampleUser(ctx, &entity.User{XP: 100})
	require.NoError(t, err)

	// The key does not exist yet, so the read first rebuilds the sorted set
	// from the database.
	scores := map[string]float64{}
	redisClient := &testutil.MockRedisClient{
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			scores[z.Member.(string)] = z.Score
			return nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			return []redis.Z{
				{Member: first.ID, Score: scores[first.ID]},
				{Member: second.ID, Score: scores[second.ID]},
			}, nil
		},
	}

	leaderboard := New(repository.NewUserRepository(), redisClient)
	statistics, err := leaderboard.GetTopUsers(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, statistics, 2)

	require.Equal(t, first.ID, statistics[0].User.ID)
	require.Equal(t, first.Name, statistics[0].User.Name)
	require.Equal(t, int64(300), statistics[0].Value)
	require.Equal(t, 1, statistics[0].CurrentRank)

	require.Equal(t, second.ID, statistics[1].User.ID)
	require.Equal(t, int64(100), statistics[1].Value)
	require.Equal(t, 2, statistics[1].CurrentRank)
}

func Test_leaderboard_GetTopUsers_DropsPartialRebuild(t *testing.T) {
	ctx := testutil.MockContext()

	_, err := testutil.SampleUser(ctx, &entity.User{XP: 300})
	require.NoError(t, err)

	// A rebuild that dies halfway deletes the key instead of leaving a
	// truncated leaderboard behind.
	deleted := false
	redisClient := &testutil.MockRedisClient{
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			return errors.New("connection reset")
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			deleted = true
			return nil
		},
	}

	leaderboard := New(repository.NewUserRepository(), redisClient)
	_, err = leaderboard.GetTopUsers(ctx, 0, 10)
	require.Error(t, err)
	require.True(t, deleted)
}

func Test_leaderboard_GetRank(t *testing.T) {
	ctx := testutil.MockContext()

	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ZRevRankFunc: func(ctx context.Context, key string, member string) (uint64, error) {
			if member == "user1" {
				return 4, nil
			}

			return 0, redis.Nil
		},
	}

	leaderboard := New(repository.NewUserRepository(), redisClient)

	rank, err := leaderboard.GetRank(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 5, rank)

	// A member outside the tracked top is unranked, not an error.
	rank, err = leaderboard.GetRank(ctx, "user2")
	require.NoError(t, err)
	require.Equal(t, 0, rank)
}

func Test_leaderboard_ChangeXPLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()

	// A missing key is left alone; the next read rebuilds it anyway.
	incremented := false
	redisClient := &testutil.MockRedisClient{
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			incremented = true
			return nil
		},
	}

	leaderboard := New(repository.NewUserRepository(), redisClient)
	require.NoError(t, leaderboard.ChangeXPLeaderboard(ctx, 100, "user1"))
	require.False(t, incremented)

	redisClient.ExistFunc = func(ctx context.Context, key string) (bool, error) {
		return true, nil
	}
	require.NoError(t, leaderboard.ChangeXPLeaderboard(ctx, 100, "user1"))
	require.True(t, incremented)
}
