package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// GameLoop drives Game.Tick from a periodic ticker for the life of the
// process, or until ctx is cancelled.
type GameLoop struct {
	game          *Game
	tickerCreator PeriodicTickerChannelCreator
	interval      time.Duration
}

func NewGameLoop(game *Game, tickerCreator PeriodicTickerChannelCreator, interval time.Duration) *GameLoop {
	return &GameLoop{
		game:          game,
		tickerCreator: tickerCreator,
		interval:      interval,
	}
}

func (l *GameLoop) Run(ctx context.Context, started chan struct{}) {
	ticker := l.tickerCreator.Create(l.interval)
	close(started)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker:
			l.game.Tick(now)
		}
	}
}

// feedHipposLocked lets every hungry hippo eat one marble. A hippo with an
// empty pile starves and its player is out, including out of any running
// nose-goes round.
func (g *Game) feedHipposLocked(now time.Time) {
	changed := false
	for _, id := range g.players.idsLocked() {
		p := g.players.players[id]
		if now.Before(p.NextEatTime) {
			continue
		}

		if p.NumMarbles > 0 {
			p.NumMarbles--
			p.Score++
			p.NextEatTime = p.NextEatTime.Add(g.cfg.EatInterval)
			changed = true

			ev := HippoEat{Id: p.Id, Score: p.Score, NumMarbles: p.NumMarbles}
			g.hosts.Send(ev)
			g.clients.Send(ev)
			continue
		}

		g.players.removeLocked(id)
		if st, ok := g.noseGoes.state.(*noseGoesInProgress); ok {
			delete(st.remainingPlayers, id)
		}
		changed = true

		log.Debug().Stringer("player", id).Uint64("score", p.Score).Msg("hippo starved")
		g.hosts.Send(PlayerStarve{Id: id, Score: p.Score})
		g.clients.Send(PlayerLose{Id: id, Score: p.Score})
	}

	if changed && g.players.recomputeWinnerLocked() {
		g.announceWinnerLocked()
	}
}
