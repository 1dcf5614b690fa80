package domain

import (
	"errors"
	"time"
)

var UnexpectedDatabaseError = errors.New("unexpected-database-error")

type FinishCause string

const (
	CauseNoseGoes FinishCause = "nose-goes"
	CauseStarved  FinishCause = "starved"
	// CauseUnknown marks a hippo that left while its finish went unobserved.
	CauseUnknown  FinishCause = "unknown"
)

// FinalScore is the archived result of a hippo that left the game.
type FinalScore struct {
	PlayerId   string      `json:"player_id"`
	Name       string      `json:"name"`
	Score      uint64      `json:"score"`
	Cause      FinishCause `json:"cause"`
	FinishedAt time.Time   `json:"finished_at"`
}
