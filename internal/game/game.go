package game

import (
	"time"

	"github.com/rs/zerolog/log"
)

type HostSink interface {
	Send(HostBroadcast)
}

type PlayerSink interface {
	Send(PlayerBroadcast)
}

// Game ties the registry and the nose-goes scheduler to the two broadcast
// channels. Events are sent while the locks are held so that subscribers see
// them in the order the transitions were decided; Send only enqueues.
type Game struct {
	cfg      Config
	players  *Registry
	noseGoes *Scheduler
	rng      RandomSource
	hosts    HostSink
	clients  PlayerSink
}

func NewGame(cfg Config, idGen *IdGenerator, rng RandomSource, hosts HostSink, clients PlayerSink, start time.Time) *Game {
	return &Game{
		cfg:      cfg,
		players:  NewRegistry(idGen, cfg),
		noseGoes: NewScheduler(start.Add(cfg.NoseGoesFirstDelay), NewEliminationPolicy(cfg.EliminationPolicy, rng)),
		rng:      rng,
		hosts:    hosts,
		clients:  clients,
	}
}

func (g *Game) RegisterPlayer(now time.Time) PlayerData {
	g.players.mu.Lock()
	defer g.players.mu.Unlock()

	p := g.players.registerLocked(randomName(g.rng), now)
	winnerChanged := g.players.recomputeWinnerLocked()
	data := p.data(g.players.winner)

	log.Debug().Stringer("player", p.Id).Str("name", p.Name).Msg("player registered")
	g.hosts.Send(PlayerRegister{PlayerData: data})
	if winnerChanged {
		g.announceWinnerLocked()
	}
	return data
}

func (g *Game) FeedPlayer(id PlayerId, now time.Time) (FeedResult, error) {
	g.players.mu.Lock()
	defer g.players.mu.Unlock()

	res, err := g.players.feedLocked(id, now)
	if err != nil {
		return FeedResult{}, err
	}

	ev := HippoEat{Id: id, Score: res.Score, NumMarbles: res.NumMarbles}
	g.hosts.Send(ev)
	g.clients.Send(ev)
	if g.players.recomputeWinnerLocked() {
		g.announceWinnerLocked()
	}
	return res, nil
}

func (g *Game) ListPlayers() []PlayerData {
	return g.players.Snapshot()
}

func (g *Game) GetPlayer(id PlayerId) (PlayerData, error) {
	return g.players.Get(id)
}

// Tick runs one step of the game clock: hippos eat or starve, then the
// nose-goes round advances. Both happen in one critical section.
func (g *Game) Tick(now time.Time) {
	g.players.mu.Lock()
	defer g.players.mu.Unlock()
	g.noseGoes.mu.Lock()
	defer g.noseGoes.mu.Unlock()

	g.feedHipposLocked(now)
	g.noseGoes.state = g.advanceNoseGoes(g.noseGoes.state, now)
}

func (g *Game) announceWinnerLocked() {
	if g.players.winner == NoPlayer {
		return
	}
	ev := UpdateWinner{Id: g.players.winner}
	g.hosts.Send(ev)
	g.clients.Send(ev)
}
