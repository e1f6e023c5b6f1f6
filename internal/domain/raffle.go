package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/model"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/enum"
	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	GetList(context.Context, *model.GetRafflesRequest) (*model.GetRafflesResponse, error)
	Enter(context.Context, *model.EnterRaffleRequest) (*model.EnterRaffleResponse, error)
	GetMyEntries(context.Context, *model.GetMyRaffleEntriesRequest) (*model.GetMyRaffleEntriesResponse, error)
	Purchase(context.Context, *model.PurchaseRaffleRequest) (*model.PurchaseRaffleResponse, error)

	Create(context.Context, *model.CreateRaffleRequest) (*model.CreateRaffleResponse, error)
	Update(context.Context, *model.UpdateRaffleRequest) (*model.UpdateRaffleResponse, error)
	Delete(context.Context, *model.DeleteRaffleRequest) (*model.DeleteRaffleResponse, error)
}

type raffleDomain struct {
	raffleRepo  repository.RaffleRepository
	entryRepo   repository.RaffleEntryRepository
	userRepo    repository.UserRepository
	userService UserService
}

func NewRaffleDomain(
	raffleRepo repository.RaffleRepository,
	entryRepo repository.RaffleEntryRepository,
	userRepo repository.UserRepository,
	userService UserService,
) *raffleDomain {
	return &raffleDomain{
		raffleRepo:  raffleRepo,
		entryRepo:   entryRepo,
		userRepo:    userRepo,
		userService: userService,
	}
}

func (d *raffleDomain) GetList(
	ctx context.Context, req *model.GetRafflesRequest,
) (*model.GetRafflesResponse, error) {
	filter := repository.GetListRaffleFilter{Offset: req.Offset, Limit: req.Limit}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.RaffleStatus](req.Status)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid raffle status: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid status filter")
		}

		filter.Statuses = []entity.RaffleStatus{status}
	}

	// An authenticated caller only sees raffles their level qualifies for.
	if userID := xcontext.RequestUserID(ctx); userID != "" {
		user, err := d.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found user")
			}

			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		for _, level := range enum.Members[entity.UserLevel]() {
			if user.Level.Eligible(level) {
				filter.RequiredLevels = append(filter.RequiredLevels, level)
			}
		}
	}

	raffles, err := d.raffleRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles: %v", err)
		return nil, errorx.Unknown
	}

	clientRaffles := []model.Raffle{}
	for i := range raffles {
		clientRaffles = append(clientRaffles, convertRaffle(&raffles[i]))
	}

	return &model.GetRafflesResponse{Raffles: clientRaffles}, nil
}

func (d *raffleDomain) Enter(
	ctx context.Context, req *model.EnterRaffleRequest,
) (*model.EnterRaffleResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.Status != entity.RaffleActive {
		return nil, errorx.New(errorx.Unavailable, "The raffle is not open for entries")
	}

	if !user.Level.Eligible(raffle.RequiredLevel) {
		return nil, errorx.New(errorx.PermissionDenied,
			"This raffle requires %s level", raffle.RequiredLevel)
	}

	_, err = d.entryRepo.GetActive(ctx, raffle.ID, userID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "You already entered this raffle")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check existing entry: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	entry := &entity.RaffleEntry{
		Base:     entity.Base{ID: uuid.NewString()},
		RaffleID: raffle.ID,
		UserID:   userID,
	}

	if err := d.entryRepo.Create(ctx, entry); err != nil {
		// The unique index on live entries rejects a concurrent duplicate that
		// slipped past the check above.
		if _, activeErr := d.entryRepo.GetActive(ctx, raffle.ID, userID); activeErr == nil {
			return nil, errorx.New(errorx.AlreadyExists, "You already entered this raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot create entry: %v", err)
		return nil, errorx.Unknown
	}

	// The first admission of a cycle arms the selection deadline. The
	// conditional update decides the owner, so two simultaneous first
	// entrants can never arm the cycle twice.
	err = d.raffleRepo.CheckAndArmSelection(ctx, raffle.ID, time.Now())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot arm winner selection: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	return &model.EnterRaffleResponse{Entry: convertRaffleEntry(entry)}, nil
}

func (d *raffleDomain) GetMyEntries(
	ctx context.Context, req *model.GetMyRaffleEntriesRequest,
) (*model.GetMyRaffleEntriesResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	entries, err := d.entryRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries: %v", err)
		return nil, errorx.Unknown
	}

	clientEntries := []model.RaffleEntry{}
	for i := range entries {
		clientEntries = append(clientEntries, convertRaffleEntry(&entries[i]))
	}

	return &model.GetMyRaffleEntriesResponse{Entries: clientEntries}, nil
}

func (d *raffleDomain) Purchase(
	ctx context.Context, req *model.PurchaseRaffleRequest,
) (*model.PurchaseRaffleResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if !raffle.CurrentWinnerID.Valid || raffle.CurrentWinnerID.String != userID {
		return nil, errorx.New(errorx.PermissionDenied, "You are not the current winner")
	}

	entry, err := d.entryRepo.GetWinningEntry(ctx, raffle.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found winning entry")
		}

		xcontext.Logger(ctx).Errorf("Cannot get winning entry: %v", err)
		return nil, errorx.Unknown
	}

	if entry.PurchasedAt.Valid {
		return nil, errorx.New(errorx.AlreadyExists, "You already purchased this raffle")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	now := time.Now()
	if err := d.entryRepo.CheckAndMarkPurchased(ctx, raffle.ID, userID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "You already purchased this raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot mark entry purchased: %v", err)
		return nil, errorx.Unknown
	}

	// The purchase and the timeout race for the same winner slot. Whichever
	// commits this transition first wins; the loser becomes a no-op.
	if err := d.raffleRepo.CheckAndResolvePurchase(ctx, raffle.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "The purchase window has closed")
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve raffle purchase: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userService.AwardXP(ctx, userID, raffle.XPReward); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot award xp: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	entry.PurchasedAt.Valid = true
	entry.PurchasedAt.Time = now
	return &model.PurchaseRaffleResponse{Entry: convertRaffleEntry(entry)}, nil
}

func (d *raffleDomain) Create(
	ctx context.Context, req *model.CreateRaffleRequest,
) (*model.CreateRaffleResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a title")
	}

	if req.XPReward < 0 {
		return nil, errorx.New(errorx.BadRequest, "The xp reward must not be negative")
	}

	status := entity.RaffleUpcoming
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.RaffleStatus](req.Status)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid raffle status: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid status")
		}
	}

	level, err := enum.ToEnum[entity.UserLevel](req.RequiredLevel)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid required level: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid required level")
	}

	raffle := &entity.Raffle{
		Base:          entity.Base{ID: uuid.NewString()},
		Title:         req.Title,
		SneakerSKU:    req.SneakerSKU,
		RetailPrice:   req.RetailPrice,
		Status:        status,
		RequiredLevel: level,
		XPReward:      req.XPReward,
		CycleState:    entity.CycleOpen,
	}

	if err := d.raffleRepo.Create(ctx, raffle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateRaffleResponse{ID: raffle.ID}, nil
}

func (d *raffleDomain) Update(
	ctx context.Context, req *model.UpdateRaffleRequest,
) (*model.UpdateRaffleResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	if _, err := d.raffleRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	updates := &entity.Raffle{
		Title:       req.Title,
		SneakerSKU:  req.SneakerSKU,
		RetailPrice: req.RetailPrice,
		XPReward:    req.XPReward,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.RaffleStatus](req.Status)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid raffle status: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid status")
		}

		updates.Status = status
	}

	if err := d.raffleRepo.Update(ctx, req.ID, updates); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update raffle: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateRaffleResponse{}, nil
}

func (d *raffleDomain) Delete(
	ctx context.Context, req *model.DeleteRaffleRequest,
) (*model.DeleteRaffleResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	if err := d.raffleRepo.DeleteByID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete raffle: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteRaffleResponse{}, nil
}

func (d *raffleDomain) verifyAdmin(ctx context.Context) error {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return errorx.Unknown
	}

	if user.Role != entity.AdminRole {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
