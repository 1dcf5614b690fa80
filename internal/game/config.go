package game

import "time"

type EliminationPolicyName string

const (
	EliminateAll    EliminationPolicyName = "all"
	EliminateRandom EliminationPolicyName = "random"
)

type Config struct {
	TickInterval time.Duration

	NoseGoesDuration   time.Duration
	NoseGoesInterval   time.Duration
	NoseGoesFirstDelay time.Duration
	NoseGoesBonus      uint64
	EliminationPolicy  EliminationPolicyName

	EatInterval     time.Duration
	StartingMarbles int
	MaxMarbles      int

	// FeedRate is taps per second allowed per player, 0 disables the limiter.
	FeedRate  float64
	FeedBurst int
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       100 * time.Millisecond,
		NoseGoesDuration:   10 * time.Second,
		NoseGoesInterval:   30 * time.Second,
		NoseGoesFirstDelay: 10 * time.Second,
		NoseGoesBonus:      5,
		EliminationPolicy:  EliminateAll,
		EatInterval:        3 * time.Second,
		StartingMarbles:    20,
		MaxMarbles:         20,
		FeedRate:           15,
		FeedBurst:          30,
	}
}
