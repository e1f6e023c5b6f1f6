package statistic

// Single sorted set holding every user's XP. Rebuilt lazily from the database
// whenever the key is missing, so redis can be flushed at any time.
const xpLeaderboardKey = "leaderboard:xp"
