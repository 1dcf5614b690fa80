package game

import "math/rand/v2"

// RandomSource picks uniformly in [0, n). Callers hold the registry write
// lock, so implementations don't need their own synchronisation.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

func NewRandomSource() RandomSource {
	return globalRandom{}
}
