package configs

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/randomPoison/hangry-river-horse/internal/game"
)

type Envs struct {
	Addr             string   `env:"ADDR" envDefault:":6767"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	PostgresURL      string   `env:"POSTGRES_URL"`
	StaticDir        string   `env:"STATIC_DIR" envDefault:"www"`
	Debug            bool     `env:"DEBUG"`
	LogFormat        string   `env:"LOG_FORMAT" envDefault:"console"`
	SubscriberBuffer int      `env:"SUBSCRIBER_BUFFER" envDefault:"256"`

	TickInterval       time.Duration `env:"TICK_INTERVAL" envDefault:"100ms"`
	NoseGoesDuration   time.Duration `env:"NOSE_GOES_DURATION" envDefault:"10s"`
	NoseGoesInterval   time.Duration `env:"NOSE_GOES_INTERVAL" envDefault:"30s"`
	NoseGoesFirstDelay time.Duration `env:"NOSE_GOES_FIRST_DELAY" envDefault:"10s"`
	NoseGoesBonus      uint64        `env:"NOSE_GOES_BONUS" envDefault:"5"`
	EliminationPolicy  string        `env:"ELIMINATION_POLICY" envDefault:"all"`

	EatInterval     time.Duration `env:"EAT_INTERVAL" envDefault:"3s"`
	StartingMarbles int           `env:"STARTING_MARBLES" envDefault:"20"`
	MaxMarbles      int           `env:"MAX_MARBLES" envDefault:"20"`
	FeedRate        float64       `env:"FEED_RATE" envDefault:"15"`
	FeedBurst       int           `env:"FEED_BURST" envDefault:"30"`
}

// Load reads the process environment and checks the values the engine relies on.
func Load() (Envs, error) {
	var envs Envs
	if err := env.Parse(&envs); err != nil {
		return Envs{}, fmt.Errorf("parse env: %w", err)
	}
	if err := envs.validate(); err != nil {
		return Envs{}, err
	}
	return envs, nil
}

func (e Envs) validate() error {
	switch game.EliminationPolicyName(e.EliminationPolicy) {
	case game.EliminateAll, game.EliminateRandom:
	default:
		return fmt.Errorf("ELIMINATION_POLICY must be %q or %q, got %q", game.EliminateAll, game.EliminateRandom, e.EliminationPolicy)
	}
	if e.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive")
	}
	if e.NoseGoesDuration <= 0 {
		return fmt.Errorf("NOSE_GOES_DURATION must be positive")
	}
	if e.NoseGoesInterval <= 0 {
		return fmt.Errorf("NOSE_GOES_INTERVAL must be positive")
	}
	if e.NoseGoesFirstDelay <= 0 {
		return fmt.Errorf("NOSE_GOES_FIRST_DELAY must be positive")
	}
	if e.EatInterval <= 0 {
		return fmt.Errorf("EAT_INTERVAL must be positive")
	}
	if e.MaxMarbles < 1 || e.StartingMarbles > e.MaxMarbles {
		return fmt.Errorf("STARTING_MARBLES (%d) must not exceed MAX_MARBLES (%d)", e.StartingMarbles, e.MaxMarbles)
	}
	if e.FeedRate < 0 {
		return fmt.Errorf("FEED_RATE cannot be negative")
	}
	return nil
}

func (e Envs) Game() game.Config {
	return game.Config{
		TickInterval:       e.TickInterval,
		NoseGoesDuration:   e.NoseGoesDuration,
		NoseGoesInterval:   e.NoseGoesInterval,
		NoseGoesFirstDelay: e.NoseGoesFirstDelay,
		NoseGoesBonus:      e.NoseGoesBonus,
		EliminationPolicy:  game.EliminationPolicyName(e.EliminationPolicy),
		EatInterval:        e.EatInterval,
		StartingMarbles:    e.StartingMarbles,
		MaxMarbles:         e.MaxMarbles,
		FeedRate:           e.FeedRate,
		FeedBurst:          e.FeedBurst,
	}
}
