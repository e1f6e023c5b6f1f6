package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configs from the TOML file at path, then overrides secrets from
// the environment so they never need to live on disk.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	return cfg, nil
}

func Default() Configs {
	return Configs{
		Env: "local",
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "kickslab",
			User:     "root",
		},
		ApiServer: ServerConfigs{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Auth: AuthConfigs{
			TokenSecret: "token-secret",
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: Duration{24 * time.Hour},
			},
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Raffle: RaffleConfigs{
			SelectionDelay:  Duration{time.Minute},
			PurchaseWindow:  Duration{time.Minute},
			SweepInterval:   Duration{5 * time.Second},
			LeaderboardSize: 50,
		},
		Level: LevelConfigs{
			EnthusiastXP:  1000,
			SneakerheadXP: 5000,
		},
	}
}
