package game

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type NoseGoesResult string

const (
	Survived NoseGoesResult = "Survived"
	Died     NoseGoesResult = "Died"
)

type noseGoesState interface {
	isNoseGoesState()
}

type noseGoesInactive struct {
	nextStartTime time.Time
}

type noseGoesInProgress struct {
	startTime        time.Time
	endTime          time.Time
	remainingPlayers map[PlayerId]struct{}
	bonusWinner      PlayerId
}

func (noseGoesInactive) isNoseGoesState()    {}
func (*noseGoesInProgress) isNoseGoesState() {}

// Scheduler holds the nose-goes round. Its lock is always taken after the
// registry's write lock.
type Scheduler struct {
	mu     sync.Mutex
	state  noseGoesState
	policy EliminationPolicy
}

func NewScheduler(firstStart time.Time, policy EliminationPolicy) *Scheduler {
	return &Scheduler{
		state:  noseGoesInactive{nextStartTime: firstStart},
		policy: policy,
	}
}

type NoseGoesStatus struct {
	Active           bool       `json:"active"`
	NextStartTime    time.Time  `json:"next_start_time,omitzero"`
	EndTime          time.Time  `json:"end_time,omitzero"`
	RemainingPlayers []PlayerId `json:"remaining_players"`
}

func (s *Scheduler) Status() NoseGoesStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st := s.state.(type) {
	case noseGoesInactive:
		return NoseGoesStatus{NextStartTime: st.nextStartTime, RemainingPlayers: []PlayerId{}}
	case *noseGoesInProgress:
		return NoseGoesStatus{
			Active:           true,
			EndTime:          st.endTime,
			RemainingPlayers: st.remaining(),
		}
	}
	return NoseGoesStatus{}
}

func (st *noseGoesInProgress) remaining() []PlayerId {
	return slices.Sorted(maps.Keys(st.remainingPlayers))
}

// EliminationPolicy decides who loses when a round times out.
type EliminationPolicy interface {
	Losers(remaining []PlayerId) []PlayerId
}

type eliminateAll struct{}

func (eliminateAll) Losers(remaining []PlayerId) []PlayerId {
	return remaining
}

type eliminateOneAtRandom struct {
	rng RandomSource
}

func (p eliminateOneAtRandom) Losers(remaining []PlayerId) []PlayerId {
	if len(remaining) <= 1 {
		return remaining
	}
	return []PlayerId{remaining[p.rng.IntN(len(remaining))]}
}

func NewEliminationPolicy(name EliminationPolicyName, rng RandomSource) EliminationPolicy {
	if name == EliminateRandom {
		return eliminateOneAtRandom{rng: rng}
	}
	return eliminateAll{}
}

// advanceNoseGoes is one evaluation of the round state machine. Callers hold
// the registry write lock and the scheduler lock.
func (g *Game) advanceNoseGoes(state noseGoesState, now time.Time) noseGoesState {
	switch st := state.(type) {
	case noseGoesInactive:
		if now.Before(st.nextStartTime) {
			return st
		}
		if len(g.players.players) <= 1 {
			return noseGoesInactive{nextStartTime: st.nextStartTime.Add(g.cfg.NoseGoesInterval)}
		}
		return g.beginNoseGoesLocked(st.nextStartTime)

	case *noseGoesInProgress:
		if now.Before(st.endTime) && len(st.remainingPlayers) > 1 {
			return st
		}
		return g.endNoseGoesLocked(st, g.noseGoes.policy.Losers(st.remaining()))
	}

	log.Fatal().Msgf("unknown nose-goes state %T", state)
	return nil
}

func (g *Game) beginNoseGoesLocked(start time.Time) noseGoesState {
	st := &noseGoesInProgress{
		startTime:        start,
		endTime:          start.Add(g.cfg.NoseGoesDuration),
		remainingPlayers: make(map[PlayerId]struct{}, len(g.players.players)),
	}
	for id := range g.players.players {
		st.remainingPlayers[id] = struct{}{}
	}
	players := st.remaining()

	log.Debug().Int("players", len(players)).Time("end", st.endTime).Msg("nose-goes started")
	g.hosts.Send(BeginNoseGoes{Duration: g.cfg.NoseGoesDuration, Players: players})
	g.clients.Send(NoseGoesStarted{})
	return st
}

// endNoseGoesLocked removes the losers, pays the speedy bonus and announces
// the result, all inside the caller's critical section.
func (g *Game) endNoseGoesLocked(st *noseGoesInProgress, losers []PlayerId) noseGoesState {
	lost := make([]*Player, 0, len(losers))
	for _, id := range losers {
		if _, ok := st.remainingPlayers[id]; !ok {
			log.Fatal().Stringer("player", id).Msg("nose-goes loser is not a participant")
		}
		p, ok := g.players.removeLocked(id)
		if !ok {
			log.Fatal().Stringer("player", id).Msg("nose-goes participant missing from registry")
		}
		lost = append(lost, p)
	}

	var bonus *BonusAward
	if p, ok := g.players.players[st.bonusWinner]; ok {
		p.Score += g.cfg.NoseGoesBonus
		bonus = &BonusAward{Id: p.Id, Score: p.Score}
	}
	winnerChanged := g.players.recomputeWinnerLocked()

	log.Debug().Int("losers", len(lost)).Msg("nose-goes ended")
	g.hosts.Send(EndNoseGoes{Losers: losers, BonusWinner: bonus})
	for _, p := range lost {
		g.clients.Send(PlayerLose{Id: p.Id, Score: p.Score})
	}
	if bonus != nil {
		g.clients.Send(HippoEat{Id: bonus.Id, Score: bonus.Score, NumMarbles: g.players.players[bonus.Id].NumMarbles})
	}
	g.clients.Send(NoseGoesEnded{})
	if winnerChanged {
		g.announceWinnerLocked()
	}

	return noseGoesInactive{nextStartTime: st.endTime.Add(g.cfg.NoseGoesInterval)}
}

// ResolveNoseGoes records a participant tapping the poison marble. Everyone
// but the last one to tap survives; the last one ends the round.
func (g *Game) ResolveNoseGoes(id PlayerId) (NoseGoesResult, error) {
	g.players.mu.Lock()
	defer g.players.mu.Unlock()
	g.noseGoes.mu.Lock()
	defer g.noseGoes.mu.Unlock()

	st, ok := g.noseGoes.state.(*noseGoesInProgress)
	if !ok {
		return "", fmt.Errorf("%w: no round in progress", ErrInvalidNoseGoes)
	}
	if _, participant := st.remainingPlayers[id]; !participant {
		return "", fmt.Errorf("%w: %s is not a participant", ErrInvalidNoseGoes, id)
	}

	if len(st.remainingPlayers) > 1 {
		delete(st.remainingPlayers, id)
		if st.bonusWinner == NoPlayer {
			st.bonusWinner = id
			g.hosts.Send(BonusWinner{Id: id})
		}
		return Survived, nil
	}

	g.noseGoes.state = g.endNoseGoesLocked(st, []PlayerId{id})
	return Died, nil
}

func (g *Game) NoseGoesStatus() NoseGoesStatus {
	return g.noseGoes.Status()
}
