package game

import "time"

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type ticker struct{}

// Create starts a ticker that lives as long as its channel is referenced.
func (t *ticker) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}

func NewTickerGen() ticker {
	return ticker{}
}
