package entity

import "database/sql"

// RaffleEntry records one user's participation in one raffle. Entries are
// never deleted; RemovedFromPool marks a forfeited entry that can no longer
// win, while the row itself stays as an audit trail.
type RaffleEntry struct {
	Base

	RaffleID string `gorm:"uniqueIndex:idx_raffle_entries_live"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	UserID string `gorm:"uniqueIndex:idx_raffle_entries_live"`
	User   User   `gorm:"foreignKey:UserID"`

	IsWinner         bool
	WinnerSelectedAt sql.NullTime
	PurchasedAt      sql.NullTime
	RemovedFromPool  bool

	// Live is non-null only while the entry is still in the pool. Forfeited
	// rows carry NULL, so the unique index keeps one live entry per user per
	// raffle while any number of audit rows may pile up.
	Live sql.NullString `gorm:"uniqueIndex:idx_raffle_entries_live"`
}
