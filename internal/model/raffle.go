package model

import "time"

type Raffle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SneakerSKU  string `json:"sneaker_sku"`
	RetailPrice int64  `json:"retail_price"`

	Status        string `json:"status"`
	RequiredLevel string `json:"required_level"`
	XPReward      int64  `json:"xp_reward"`

	CycleState               string     `json:"cycle_state"`
	CurrentWinnerID          string     `json:"current_winner_id,omitempty"`
	WinnerPurchaseDeadline   *time.Time `json:"winner_purchase_deadline,omitempty"`
	WinnerSelectionStartedAt *time.Time `json:"winner_selection_started_at,omitempty"`
}

type RaffleEntry struct {
	ID       string `json:"id"`
	RaffleID string `json:"raffle_id"`
	UserID   string `json:"user_id"`

	EnteredAt        time.Time  `json:"entered_at"`
	IsWinner         bool       `json:"is_winner"`
	WinnerSelectedAt *time.Time `json:"winner_selected_at,omitempty"`
	PurchasedAt      *time.Time `json:"purchased_at,omitempty"`
	RemovedFromPool  bool       `json:"removed_from_pool"`
}

type GetRafflesRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type EnterRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
}

type EnterRaffleResponse struct {
	Entry RaffleEntry `json:"entry"`
}

type GetMyRaffleEntriesRequest struct{}

type GetMyRaffleEntriesResponse struct {
	Entries []RaffleEntry `json:"entries"`
}

type PurchaseRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
}

type PurchaseRaffleResponse struct {
	Entry RaffleEntry `json:"entry"`
}

type CreateRaffleRequest struct {
	Title         string `json:"title"`
	SneakerSKU    string `json:"sneaker_sku"`
	RetailPrice   int64  `json:"retail_price"`
	Status        string `json:"status"`
	RequiredLevel string `json:"required_level"`
	XPReward      int64  `json:"xp_reward"`
}

type CreateRaffleResponse struct {
	ID string `json:"id"`
}

type UpdateRaffleRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SneakerSKU  string `json:"sneaker_sku"`
	RetailPrice int64  `json:"retail_price"`
	Status      string `json:"status"`
	XPReward    int64  `json:"xp_reward"`
}

type UpdateRaffleResponse struct{}

type DeleteRaffleRequest struct {
	ID string `json:"id"`
}

type DeleteRaffleResponse struct{}
