package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Raffle    RaffleConfigs
	Level     LevelConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string

	AllowedOrigins []string
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration Duration
}

type RedisConfigs struct {
	Addr string
}

// RaffleConfigs controls the winner cycle timing. SelectionDelay is the wait
// between the first admission and the draw, PurchaseWindow is how long a
// selected winner holds the purchase slot, and SweepInterval is how often the
// cron sweep re-derives due deadlines from the database.
type RaffleConfigs struct {
	SelectionDelay Duration
	PurchaseWindow Duration
	SweepInterval  Duration

	LeaderboardSize int
}

// LevelConfigs holds the XP thresholds at which a user is promoted.
type LevelConfigs struct {
	EnthusiastXP  int64
	SneakerheadXP int64
}

// Duration wraps time.Duration so TOML files can use values like "60s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}
