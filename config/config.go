package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything read from the environment at startup.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        string `envconfig:"PORT" default:"4000"`

	StakeTiers []int `envconfig:"STAKE_TIERS" default:"10,20,50,100"`
	MinPlayers int   `envconfig:"MIN_PLAYERS" default:"2"`

	MinDeposit    float64 `envconfig:"MIN_DEPOSIT" default:"10"`
	MaxDeposit    float64 `envconfig:"MAX_DEPOSIT" default:"1000"`
	MinWithdrawal float64 `envconfig:"MIN_WITHDRAWAL" default:"100"`

	PendingDepositTTL  time.Duration `envconfig:"PENDING_DEPOSIT_TTL" default:"24h"`
	FinishedSessionTTL time.Duration `envconfig:"FINISHED_SESSION_TTL" default:"1h"`

	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000"`
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
