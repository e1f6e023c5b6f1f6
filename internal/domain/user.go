package domain

import (
	"context"
	"errors"

	"github.com/kickslab/backend/internal/domain/statistic"
	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/model"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

// UserService is the collaborator surface the raffle engine consumes: reading
// a user is done through the repository, while XP awards go through here so a
// purchase can trigger a level promotion and a leaderboard update.
type UserService interface {
	AwardXP(ctx context.Context, userID string, amount int64) error
}

type userDomain struct {
	userRepo    repository.UserRepository
	leaderboard statistic.Leaderboard
}

func NewUserDomain(
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
) *userDomain {
	return &userDomain{userRepo: userRepo, leaderboard: leaderboard}
}

func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetMeRequest,
) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMeResponse{User: convertUser(user)}

	// The rank is a cache lookup; losing it must not fail the profile read.
	rank, err := d.leaderboard.GetRank(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get leaderboard rank: %v", err)
	} else {
		resp.CurrentRank = rank
	}

	return resp, nil
}

func (d *userDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = xcontext.Configs(ctx).Raffle.LeaderboardSize
	}

	statistics, err := d.leaderboard.GetTopUsers(ctx, req.Offset, limit)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{Leaderboard: statistics}, nil
}

func (d *userDomain) AwardXP(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	if err := d.userRepo.IncreaseXP(ctx, userID, amount); err != nil {
		return err
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	cfg := xcontext.Configs(ctx).Level
	newLevel := entity.LevelForXP(user.XP, cfg.EnthusiastXP, cfg.SneakerheadXP)
	if newLevel.Ordinal() > user.Level.Ordinal() {
		threshold := cfg.EnthusiastXP
		if newLevel == entity.LevelSneakerhead {
			threshold = cfg.SneakerheadXP
		}

		err := d.userRepo.UpdateLevel(ctx, userID, newLevel, threshold)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	// The leaderboard is a cache; losing one increment only delays the next
	// rebuild, so a redis failure must not fail the purchase.
	if err := d.leaderboard.ChangeXPLeaderboard(ctx, amount, userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update xp leaderboard: %v", err)
	}

	return nil
}
