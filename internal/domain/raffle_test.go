package domain

import (
	"testing"

	"github.com/kickslab/backend/internal/domain/statistic"
	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/model"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestRaffleDomain() (*raffleDomain, *userDomain) {
	userRepo := repository.NewUserRepository()
	leaderboard := statistic.New(userRepo, &testutil.MockRedisClient{})
	userDomain := NewUserDomain(userRepo, leaderboard)
	raffleDomain := NewRaffleDomain(
		repository.NewRaffleRepository(),
		repository.NewRaffleEntryRepository(),
		userRepo,
		userDomain,
	)

	return raffleDomain, userDomain
}

func Test_raffleDomain_Enter(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	raffle, err := testutil.SampleRaffle(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.ID)
	resp, err := raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
	require.Equal(t, raffle.ID, resp.Entry.RaffleID)
	require.Equal(t, user.ID, resp.Entry.UserID)
	require.False(t, resp.Entry.IsWinner)

	// The first admission arms the selection deadline.
	got, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, entity.CycleArmed, got.CycleState)
	require.True(t, got.WinnerSelectionStartedAt.Valid)

	// Entering twice is rejected.
	_, err = raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.Equal(t, "You already entered this raffle", err.Error())

	// A second entrant does not rearm the deadline.
	user2, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	user2Ctx := testutil.MockContextWithUserID(ctx, user2.ID)
	_, err = raffleDomain.Enter(user2Ctx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)

	after, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, got.WinnerSelectionStartedAt.Time, after.WinnerSelectionStartedAt.Time)
}

func Test_raffleDomain_Enter_ConcurrentAdmissions(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	raffle, err := testutil.SampleRaffle(ctx, nil)
	require.NoError(t, err)

	userIDs := make([]string, 8)
	for i := range userIDs {
		user, err := testutil.SampleUser(ctx, nil)
		require.NoError(t, err)
		userIDs[i] = user.ID
	}

	// All admissions race; the conditional update lets exactly one of them
	// arm the selection deadline.
	eg := errgroup.Group{}
	for _, userID := range userIDs {
		userCtx := testutil.MockContextWithUserID(ctx, userID)
		eg.Go(func() error {
			_, err := raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
			return err
		})
	}
	require.NoError(t, eg.Wait())

	got, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, entity.CycleArmed, got.CycleState)
	require.True(t, got.WinnerSelectionStartedAt.Valid)

	// One live entry per user, all of them drawable.
	entryRepo := repository.NewRaffleEntryRepository()
	candidates, err := entryRepo.GetCandidates(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, candidates, len(userIDs))

	for _, userID := range userIDs {
		_, err := entryRepo.GetActive(ctx, raffle.ID, userID)
		require.NoError(t, err)
	}
}

func Test_raffleDomain_Enter_LevelGate(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	hobbyist, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{
		RequiredLevel: entity.LevelSneakerhead,
	})
	require.NoError(t, err)

	hobbyistCtx := testutil.MockContextWithUserID(ctx, hobbyist.ID)
	_, err = raffleDomain.Enter(hobbyistCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.Equal(t, "This raffle requires sneakerhead level", err.Error())

	sneakerhead, err := testutil.SampleUser(ctx, &entity.User{Level: entity.LevelSneakerhead})
	require.NoError(t, err)

	sneakerheadCtx := testutil.MockContextWithUserID(ctx, sneakerhead.ID)
	_, err = raffleDomain.Enter(sneakerheadCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
}

func Test_raffleDomain_Enter_NotActive(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	userCtx := testutil.MockContextWithUserID(ctx, user.ID)

	upcoming, err := testutil.SampleRaffle(ctx, &entity.Raffle{Status: entity.RaffleUpcoming})
	require.NoError(t, err)
	_, err = raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: upcoming.ID})
	require.Equal(t, "The raffle is not open for entries", err.Error())

	ended, err := testutil.SampleRaffle(ctx, &entity.Raffle{Status: entity.RaffleEnded})
	require.NoError(t, err)
	_, err = raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: ended.ID})
	require.Equal(t, "The raffle is not open for entries", err.Error())

	_, err = raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: "never-existed"})
	require.Equal(t, "Not found raffle", err.Error())
}

func Test_raffleDomain_GetList_FiltersByEligibility(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	_, err := testutil.SampleRaffle(ctx, &entity.Raffle{Title: "for everyone"})
	require.NoError(t, err)
	_, err = testutil.SampleRaffle(ctx, &entity.Raffle{
		Title:         "grails only",
		RequiredLevel: entity.LevelSneakerhead,
	})
	require.NoError(t, err)

	// Anonymous callers see everything.
	resp, err := raffleDomain.GetList(ctx, &model.GetRafflesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Raffles, 2)

	// A hobbyist only sees the raffles their level qualifies for.
	hobbyist, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	hobbyistCtx := testutil.MockContextWithUserID(ctx, hobbyist.ID)

	resp, err = raffleDomain.GetList(hobbyistCtx, &model.GetRafflesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Raffles, 1)
	require.Equal(t, "for everyone", resp.Raffles[0].Title)

	_, err = raffleDomain.GetList(ctx, &model.GetRafflesRequest{Status: "unknown"})
	require.Equal(t, "Invalid status filter", err.Error())
}

func Test_raffleDomain_Purchase_OnlyCurrentWinner(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()
	cycleDomain := NewRaffleCycleDomain(
		repository.NewRaffleRepository(), repository.NewRaffleEntryRepository())

	winner, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	loser, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	raffle, err := testutil.SampleRaffle(ctx, nil)
	require.NoError(t, err)

	winnerCtx := testutil.MockContextWithUserID(ctx, winner.ID)
	_, err = raffleDomain.Enter(winnerCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)

	require.NoError(t, cycleDomain.SelectWinner(ctx, raffle.ID))

	// The purchase belongs to the selected winner alone.
	loserCtx := testutil.MockContextWithUserID(ctx, loser.ID)
	_, err = raffleDomain.Purchase(loserCtx, &model.PurchaseRaffleRequest{RaffleID: raffle.ID})
	require.Equal(t, "You are not the current winner", err.Error())

	resp, err := raffleDomain.Purchase(winnerCtx, &model.PurchaseRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
	require.NotNil(t, resp.Entry.PurchasedAt)

	// Purchasing twice is rejected; the winner slot is already released.
	_, err = raffleDomain.Purchase(winnerCtx, &model.PurchaseRaffleRequest{RaffleID: raffle.ID})
	require.Equal(t, "You are not the current winner", err.Error())
}

func Test_raffleDomain_Purchase_AwardsXPAndPromotes(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()
	cycleDomain := NewRaffleCycleDomain(
		repository.NewRaffleRepository(), repository.NewRaffleEntryRepository())

	// One more purchase pushes the user over the enthusiast threshold.
	user, err := testutil.SampleUser(ctx, &entity.User{XP: 950})
	require.NoError(t, err)
	raffle, err := testutil.SampleRaffle(ctx, &entity.Raffle{XPReward: 100})
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.ID)
	_, err = raffleDomain.Enter(userCtx, &model.EnterRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
	require.NoError(t, cycleDomain.SelectWinner(ctx, raffle.ID))

	_, err = raffleDomain.Purchase(userCtx, &model.PurchaseRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)

	got, err := repository.NewUserRepository().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1050), got.XP)
	require.Equal(t, entity.LevelEnthusiast, got.Level)
}

func Test_raffleDomain_AdminOperations(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	admin, err := testutil.SampleUser(ctx, &entity.User{Role: entity.AdminRole})
	require.NoError(t, err)
	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	userCtx := testutil.MockContextWithUserID(ctx, user.ID)
	_, err = raffleDomain.Create(userCtx, &model.CreateRaffleRequest{
		Title:         "AJ1 Chicago",
		RequiredLevel: "hobbyist",
	})
	require.Equal(t, "Permission denied", err.Error())

	adminCtx := testutil.MockContextWithUserID(ctx, admin.ID)
	resp, err := raffleDomain.Create(adminCtx, &model.CreateRaffleRequest{
		Title:         "AJ1 Chicago",
		SneakerSKU:    "DZ5485-612",
		RetailPrice:   180,
		Status:        "active",
		RequiredLevel: "hobbyist",
		XPReward:      100,
	})
	require.NoError(t, err)

	_, err = raffleDomain.Update(adminCtx, &model.UpdateRaffleRequest{
		ID:     resp.ID,
		Status: "ended",
	})
	require.NoError(t, err)

	got, err := repository.NewRaffleRepository().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RaffleEnded, got.Status)

	_, err = raffleDomain.Delete(adminCtx, &model.DeleteRaffleRequest{ID: resp.ID})
	require.NoError(t, err)

	_, err = raffleDomain.Update(adminCtx, &model.UpdateRaffleRequest{ID: resp.ID})
	require.Equal(t, "Not found raffle", err.Error())
}

func Test_raffleDomain_Create_Validation(t *testing.T) {
	ctx := testutil.MockContext()
	raffleDomain, _ := newTestRaffleDomain()

	admin, err := testutil.SampleUser(ctx, &entity.User{Role: entity.AdminRole})
	require.NoError(t, err)
	adminCtx := testutil.MockContextWithUserID(ctx, admin.ID)

	_, err = raffleDomain.Create(adminCtx, &model.CreateRaffleRequest{RequiredLevel: "hobbyist"})
	require.Equal(t, "Require a title", err.Error())

	_, err = raffleDomain.Create(adminCtx, &model.CreateRaffleRequest{
		Title:         "AJ1 Chicago",
		RequiredLevel: "vip",
	})
	require.Equal(t, "Invalid required level", err.Error())

	_, err = raffleDomain.Create(adminCtx, &model.CreateRaffleRequest{
		Title:         "AJ1 Chicago",
		RequiredLevel: "hobbyist",
		XPReward:      -1,
	})
	require.Equal(t, "The xp reward must not be negative", err.Error())
}
