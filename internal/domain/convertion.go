package domain

import (
	"time"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/model"
)

func convertUser(user *entity.User) model.User {
	if user == nil {
		return model.User{}
	}

	return model.User{
		ID:    user.ID,
		Name:  user.Name,
		Level: string(user.Level),
		XP:    user.XP,
	}
}

func convertRaffle(raffle *entity.Raffle) model.Raffle {
	if raffle == nil {
		return model.Raffle{}
	}

	result := model.Raffle{
		ID:            raffle.ID,
		Title:         raffle.Title,
		SneakerSKU:    raffle.SneakerSKU,
		RetailPrice:   raffle.RetailPrice,
		Status:        string(raffle.Status),
		RequiredLevel: string(raffle.RequiredLevel),
		XPReward:      raffle.XPReward,
		CycleState:    string(raffle.CycleState),
	}

	if raffle.CurrentWinnerID.Valid {
		result.CurrentWinnerID = raffle.CurrentWinnerID.String
	}

	result.WinnerPurchaseDeadline = nullTimePtr(raffle.WinnerPurchaseDeadline.Valid, raffle.WinnerPurchaseDeadline.Time)
	result.WinnerSelectionStartedAt = nullTimePtr(raffle.WinnerSelectionStartedAt.Valid, raffle.WinnerSelectionStartedAt.Time)
	return result
}

func convertRaffleEntry(entry *entity.RaffleEntry) model.RaffleEntry {
	if entry == nil {
		return model.RaffleEntry{}
	}

	return model.RaffleEntry{
		ID:               entry.ID,
		RaffleID:         entry.RaffleID,
		UserID:           entry.UserID,
		EnteredAt:        entry.CreatedAt,
		IsWinner:         entry.IsWinner,
		WinnerSelectedAt: nullTimePtr(entry.WinnerSelectedAt.Valid, entry.WinnerSelectedAt.Time),
		PurchasedAt:      nullTimePtr(entry.PurchasedAt.Valid, entry.PurchasedAt.Time),
		RemovedFromPool:  entry.RemovedFromPool,
	}
}

func nullTimePtr(valid bool, t time.Time) *time.Time {
	if !valid {
		return nil
	}

	return &t
}
