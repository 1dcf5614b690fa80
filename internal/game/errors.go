package game

import "errors"

var (
	ErrInvalidPlayer     = errors.New("invalid-player")
	ErrInvalidNoseGoes   = errors.New("invalid-nose-goes")
	ErrRateLimited       = errors.New("rate-limited")
	ErrMalformedPlayerId = errors.New("malformed-player-id")
)
