package model

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
	XP    int64  `json:"xp"`
}

type UserStatistic struct {
	User        User  `json:"user"`
	Value       int64 `json:"value"`
	CurrentRank int   `json:"current_rank"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`

	// CurrentRank is the caller's 1-based xp leaderboard position, 0 when
	// outside the tracked top.
	CurrentRank int `json:"current_rank"`
}

type GetLeaderboardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []UserStatistic `json:"leaderboard"`
}

// AccessToken is the object embedded in the JWT access token.
type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
