package entity

import "github.com/kickslab/backend/pkg/enum"

// UserLevel is the ordinal membership tier gating raffle visibility and entry.
type UserLevel string

var (
	LevelHobbyist    = enum.New(UserLevel("hobbyist"))
	LevelEnthusiast  = enum.New(UserLevel("enthusiast"))
	LevelSneakerhead = enum.New(UserLevel("sneakerhead"))
)

var levelOrdinal = map[UserLevel]int{
	LevelHobbyist:    0,
	LevelEnthusiast:  1,
	LevelSneakerhead: 2,
}

func (l UserLevel) Ordinal() int {
	return levelOrdinal[l]
}

// Eligible reports whether a user of this level may enter a raffle with the
// given required level.
func (l UserLevel) Eligible(required UserLevel) bool {
	return l.Ordinal() >= required.Ordinal()
}

// Lower returns the level one step below, or false if already at the floor.
func (l UserLevel) Lower() (UserLevel, bool) {
	switch l {
	case LevelSneakerhead:
		return LevelEnthusiast, true
	case LevelEnthusiast:
		return LevelHobbyist, true
	default:
		return l, false
	}
}

// LevelForXP returns the highest level the given XP qualifies for.
func LevelForXP(xp, enthusiastXP, sneakerheadXP int64) UserLevel {
	switch {
	case xp >= sneakerheadXP:
		return LevelSneakerhead
	case xp >= enthusiastXP:
		return LevelEnthusiast
	default:
		return LevelHobbyist
	}
}

const (
	AdminRole = "ADMIN"
	UserRole  = "USER"
)

type User struct {
	Base

	Name  string `gorm:"unique"`
	Role  string `gorm:"default:USER"`
	Level UserLevel
	XP    int64
}
