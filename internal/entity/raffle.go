package entity

import (
	"database/sql"

	"github.com/kickslab/backend/pkg/enum"
)

type RaffleStatus string

var (
	RaffleUpcoming = enum.New(RaffleStatus("upcoming"))
	RaffleActive   = enum.New(RaffleStatus("active"))
	RaffleEnded    = enum.New(RaffleStatus("ended"))
)

// RaffleCycleState is the persisted state of the winner cycle. Every
// transition is a conditional update on the previous state, so concurrent
// admissions, purchases, and timeouts cannot double-drive the cycle.
//
//	open -> armed            first admission arms the selection deadline
//	armed -> winner_selected the draw picked a winner, purchase deadline set
//	armed -> open            empty pool, required level lowered one step
//	armed -> exhausted       empty pool at the floor level, cycle is terminal
//	winner_selected -> resolved confirmed purchase
//	winner_selected -> armed    purchase window expired, winner forfeited
type RaffleCycleState string

var (
	CycleOpen           = enum.New(RaffleCycleState("open"))
	CycleArmed          = enum.New(RaffleCycleState("armed"))
	CycleWinnerSelected = enum.New(RaffleCycleState("winner_selected"))
	CycleResolved       = enum.New(RaffleCycleState("resolved"))
	CycleExhausted      = enum.New(RaffleCycleState("exhausted"))
)

type Raffle struct {
	Base

	Title       string
	SneakerSKU  string
	RetailPrice int64

	Status        RaffleStatus
	RequiredLevel UserLevel
	XPReward      int64

	// CurrentWinnerID and WinnerPurchaseDeadline are both set while an entrant
	// holds the purchase window and both null otherwise.
	CycleState               RaffleCycleState `gorm:"default:open"`
	CurrentWinnerID          sql.NullString
	WinnerPurchaseDeadline   sql.NullTime
	WinnerSelectionStartedAt sql.NullTime
}
