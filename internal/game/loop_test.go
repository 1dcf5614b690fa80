package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHippoEatsThenStarves(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.EatInterval = 3 * time.Second
	cfg.StartingMarbles = 1
	g, hosts, clients := newTestGame(cfg, &scriptedRandom{})

	p := g.RegisterPlayer(t0)
	hosts.Reset()
	clients.Reset()

	g.Tick(t0.Add(2 * time.Second))
	assert.Empty(t, hosts.Events(), "not hungry yet")

	g.Tick(t0.Add(3 * time.Second))
	assert.Equal(t, []HostBroadcast{HippoEat{Id: p.Id, Score: 1, NumMarbles: 0}}, hosts.Events())
	assert.Equal(t, []PlayerBroadcast{HippoEat{Id: p.Id, Score: 1, NumMarbles: 0}}, clients.Events())

	hosts.Reset()
	clients.Reset()
	g.Tick(t0.Add(6 * time.Second))

	assert.Equal(t, []HostBroadcast{PlayerStarve{Id: p.Id, Score: 1}}, hosts.Events())
	assert.Equal(t, []PlayerBroadcast{PlayerLose{Id: p.Id, Score: 1}}, clients.Events())
	assert.Empty(t, g.ListPlayers())
	assert.Equal(t, NoPlayer, g.players.Winner())
}

func TestFedHippoKeepsEating(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.EatInterval = time.Second
	cfg.StartingMarbles = 0
	g, _, _ := newTestGame(cfg, &scriptedRandom{})

	p := g.RegisterPlayer(t0)
	for range 3 {
		_, err := g.FeedPlayer(p.Id, t0)
		require.NoError(t, err)
	}

	for i := 1; i <= 3; i++ {
		g.Tick(t0.Add(time.Duration(i) * time.Second))
	}
	data, err := g.GetPlayer(p.Id)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), data.Score)
	assert.Equal(t, 0, data.NumMarbles)

	g.Tick(t0.Add(4 * time.Second))
	_, err = g.GetPlayer(p.Id)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestStarvedPlayerLeavesRound(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.StartingMarbles = 0
	cfg.EatInterval = 15 * time.Second
	g, hosts, _ := newTestGame(cfg, &scriptedRandom{})

	for range 3 {
		g.RegisterPlayer(t0)
	}
	for _, id := range []PlayerId{1, 3} {
		_, err := g.FeedPlayer(id, t0)
		require.NoError(t, err)
	}

	g.Tick(t0.Add(cfg.NoseGoesFirstDelay))
	require.Equal(t, []PlayerId{1, 2, 3}, g.NoseGoesStatus().RemainingPlayers)

	hosts.Reset()
	g.Tick(t0.Add(cfg.EatInterval))

	assert.Equal(t, []HostBroadcast{
		HippoEat{Id: 1, Score: 2, NumMarbles: 0},
		PlayerStarve{Id: 2, Score: 0},
		HippoEat{Id: 3, Score: 2, NumMarbles: 0},
	}, hosts.Events())

	status := g.NoseGoesStatus()
	assert.True(t, status.Active)
	assert.Equal(t, []PlayerId{1, 3}, status.RemainingPlayers)

	_, err := g.ResolveNoseGoes(2)
	assert.ErrorIs(t, err, ErrInvalidNoseGoes)
}

func TestGameLoopRun(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	g, _, _ := newTestGame(cfg, &scriptedRandom{})
	g.RegisterPlayer(t0)
	g.RegisterPlayer(t0)

	ticks := make(chan time.Time)
	tickerCreator := &MockPeriodicTickerChannelCreator{}
	tickerCreator.On("Create", cfg.TickInterval).Return(ticks)

	loop := NewGameLoop(g, tickerCreator, cfg.TickInterval)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		loop.Run(ctx, started)
		close(done)
	}()
	<-started

	ticks <- t0.Add(cfg.NoseGoesFirstDelay)
	// The loop takes the next tick only after finishing the previous one.
	ticks <- t0.Add(cfg.NoseGoesFirstDelay + cfg.TickInterval)
	assert.True(t, g.NoseGoesStatus().Active)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	tickerCreator.AssertExpectations(t)
}
