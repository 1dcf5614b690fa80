package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry owns every live player. Readers share the lock, every mutation
// takes it exclusively.
//
// Register, Feed, Remove, Len and Winner make it usable on its own, without
// broadcasting. Game instead calls the *Locked helpers under its own hold of
// mu so that events leave in the same critical section as the change.
type Registry struct {
	mu      sync.RWMutex
	players map[PlayerId]*Player
	winner  PlayerId
	idGen   *IdGenerator
	cfg     Config
}

func NewRegistry(idGen *IdGenerator, cfg Config) *Registry {
	return &Registry{
		players: make(map[PlayerId]*Player),
		idGen:   idGen,
		cfg:     cfg,
	}
}

func (r *Registry) Register(name string, now time.Time) Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.registerLocked(name, now)
	r.recomputeWinnerLocked()
	return *p
}

func (r *Registry) Feed(id PlayerId, now time.Time) (FeedResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.feedLocked(id, now)
	if err == nil {
		r.recomputeWinnerLocked()
	}
	return res, err
}

// Remove is idempotent: a missing id returns false.
func (r *Registry) Remove(id PlayerId) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.removeLocked(id)
	if !ok {
		return Player{}, false
	}
	r.recomputeWinnerLocked()
	return *p, true
}

// Snapshot returns every live player ordered by id.
func (r *Registry) Snapshot() []PlayerData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]PlayerData, 0, len(r.players))
	for _, id := range r.idsLocked() {
		players = append(players, r.players[id].data(r.winner))
	}
	return players
}

func (r *Registry) Get(id PlayerId) (PlayerData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return PlayerData{}, fmt.Errorf("%w: %s", ErrInvalidPlayer, id)
	}
	return p.data(r.winner), nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func (r *Registry) Winner() PlayerId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.winner
}

func (r *Registry) registerLocked(name string, now time.Time) *Player {
	id := r.idGen.Next()
	if _, exists := r.players[id]; exists {
		log.Fatal().Stringer("player", id).Msg("player id allocated twice")
	}

	p := &Player{
		Id:          id,
		Name:        name,
		NumMarbles:  r.cfg.StartingMarbles,
		NextEatTime: now.Add(r.cfg.EatInterval),
		limiter:     newFeedLimiter(r.cfg),
	}
	r.players[id] = p
	return p
}

func (r *Registry) feedLocked(id PlayerId, now time.Time) (FeedResult, error) {
	p, ok := r.players[id]
	if !ok {
		return FeedResult{}, fmt.Errorf("%w: %s", ErrInvalidPlayer, id)
	}
	if !p.limiter.AllowN(now, 1) {
		return FeedResult{}, fmt.Errorf("%w: %s", ErrRateLimited, id)
	}

	p.Score++
	if p.NumMarbles < r.cfg.MaxMarbles {
		p.NumMarbles++
	}
	return FeedResult{Score: p.Score, NumMarbles: p.NumMarbles}, nil
}

func (r *Registry) removeLocked(id PlayerId) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}
	delete(r.players, id)
	return p, true
}

func (r *Registry) idsLocked() []PlayerId {
	ids := make([]PlayerId, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// recomputeWinnerLocked keeps the current holder on a tie, otherwise the
// lowest id among the top scores wins. It reports whether the holder changed.
func (r *Registry) recomputeWinnerLocked() bool {
	best := NoPlayer
	if current, ok := r.players[r.winner]; ok {
		best = current.Id
	}
	for _, id := range r.idsLocked() {
		p := r.players[id]
		if best == NoPlayer || p.Score > r.players[best].Score {
			best = id
		}
	}

	changed := best != r.winner
	r.winner = best
	return changed
}
