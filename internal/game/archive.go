package game

import (
	"context"
	"sync"
	"time"

	"github.com/randomPoison/hangry-river-horse/internal/broadcast"
	"github.com/randomPoison/hangry-river-horse/internal/domain"
	"github.com/rs/zerolog/log"
)

type ScoreArchive interface {
	RecordFinish(ctx context.Context, score domain.FinalScore) error
	TopScores(ctx context.Context, limit int) ([]domain.FinalScore, error)
}

type PlayerLister interface {
	ListPlayers() []PlayerData
}

type archivedPlayer struct {
	name  string
	score uint64
}

// Archiver follows the host channel and stores the final score of every
// hippo that leaves the game. It only sees what a host display sees.
// Writes go through a queue drained by a single writer, so a slow database
// does not hold up the host subscription.
type Archiver struct {
	archive      ScoreArchive
	hosts        *broadcast.Broadcaster[HostBroadcast]
	players      PlayerLister
	writeTimeout time.Duration
	queueSize    int
	clock        func() time.Time

	known  map[PlayerId]archivedPlayer
	writes chan domain.FinalScore
}

func NewArchiver(archive ScoreArchive, hosts *broadcast.Broadcaster[HostBroadcast], players PlayerLister) *Archiver {
	return &Archiver{
		archive:      archive,
		hosts:        hosts,
		players:      players,
		writeTimeout: 5 * time.Second,
		queueSize:    256,
		clock:        time.Now,
		known:        make(map[PlayerId]archivedPlayer),
	}
}

// Run consumes host events until ctx is cancelled or the broadcaster closes,
// then waits for queued writes. Falling behind only costs a resubscription:
// hippos that left while unobserved are recorded from their last known score.
func (a *Archiver) Run(ctx context.Context) {
	a.writes = make(chan domain.FinalScore, a.queueSize)
	var wg sync.WaitGroup
	wg.Go(func() { a.writeLoop(ctx) })
	defer func() {
		close(a.writes)
		wg.Wait()
	}()

	for {
		sub := a.hosts.Subscribe()
		a.seed(ctx)

		lagged := a.consume(ctx, sub)
		sub.Close()
		if !lagged {
			return
		}
		log.Warn().Msg("archiver fell behind the host channel, resubscribing")
	}
}

// seed replaces what the archiver knows with a fresh snapshot. Anyone known
// before but missing now finished without us seeing the event.
func (a *Archiver) seed(ctx context.Context) {
	fresh := make(map[PlayerId]archivedPlayer)
	for _, p := range a.players.ListPlayers() {
		fresh[p.Id] = archivedPlayer{name: p.Name, score: p.Score}
	}

	for id, p := range a.known {
		if _, ok := fresh[id]; !ok {
			a.record(ctx, id, p.score, domain.CauseUnknown)
		}
	}
	a.known = fresh
}

func (a *Archiver) consume(ctx context.Context, sub *broadcast.Subscription[HostBroadcast]) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.Events():
			if !ok {
				return sub.Lagged()
			}
			a.apply(ctx, ev)
		}
	}
}

func (a *Archiver) apply(ctx context.Context, ev HostBroadcast) {
	switch ev := ev.(type) {
	case PlayerRegister:
		a.known[ev.Id] = archivedPlayer{name: ev.Name, score: ev.Score}
	case HippoEat:
		a.updateScore(ev.Id, ev.Score)
	case EndNoseGoes:
		if ev.BonusWinner != nil {
			a.updateScore(ev.BonusWinner.Id, ev.BonusWinner.Score)
		}
		for _, id := range ev.Losers {
			if p, ok := a.known[id]; ok {
				a.record(ctx, id, p.score, domain.CauseNoseGoes)
			}
		}
	case PlayerStarve:
		if _, ok := a.known[ev.Id]; ok {
			a.record(ctx, ev.Id, ev.Score, domain.CauseStarved)
		}
	}
}

// Scores only go up, so a replayed event never lowers what we know.
func (a *Archiver) updateScore(id PlayerId, score uint64) {
	p, ok := a.known[id]
	if !ok || score < p.score {
		return
	}
	p.score = score
	a.known[id] = p
}

// record forgets the player and queues its finish. A full queue blocks the
// consumer, which at worst makes it lag and reconcile through seed.
func (a *Archiver) record(ctx context.Context, id PlayerId, score uint64, cause domain.FinishCause) {
	p := a.known[id]
	delete(a.known, id)

	finish := domain.FinalScore{
		PlayerId:   id.String(),
		Name:       p.name,
		Score:      score,
		Cause:      cause,
		FinishedAt: a.clock(),
	}
	select {
	case a.writes <- finish:
	case <-ctx.Done():
		log.Warn().Stringer("player", id).Msg("shutting down, final score not archived")
	}
}

// writeLoop outlives ctx so that finishes queued before shutdown still land.
func (a *Archiver) writeLoop(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for finish := range a.writes {
		writeCtx, cancel := context.WithTimeout(base, a.writeTimeout)
		err := a.archive.RecordFinish(writeCtx, finish)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("player", finish.PlayerId).Msg("failed to archive final score")
		}
	}
}
