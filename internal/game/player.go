package game

import (
	"time"

	"golang.org/x/time/rate"
)

type Player struct {
	Id          PlayerId
	Name        string
	Score       uint64
	NumMarbles  int
	NextEatTime time.Time

	limiter *rate.Limiter
}

// PlayerData is the public, lock-free copy of a player.
type PlayerData struct {
	Id         PlayerId `json:"id"`
	Name       string   `json:"name"`
	Score      uint64   `json:"score"`
	NumMarbles int      `json:"num_marbles"`
	HasCrown   bool     `json:"has_crown"`
}

type FeedResult struct {
	Score      uint64 `json:"score"`
	NumMarbles int    `json:"num_marbles"`
}

func newFeedLimiter(cfg Config) *rate.Limiter {
	if cfg.FeedRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(cfg.FeedRate), max(cfg.FeedBurst, 1))
}

func (p *Player) data(winner PlayerId) PlayerData {
	return PlayerData{
		Id:         p.Id,
		Name:       p.Name,
		Score:      p.Score,
		NumMarbles: p.NumMarbles,
		HasCrown:   p.Id == winner,
	}
}
