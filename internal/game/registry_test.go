package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterThree(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewIdGenerator(), testConfig())

	for _, name := range []string{"Gloria", "Hugo", "Peggy"} {
		r.Register(name, t0)
	}

	want := []PlayerData{
		{Id: 1, Name: "Gloria", Score: 0, NumMarbles: 20, HasCrown: true},
		{Id: 2, Name: "Hugo", Score: 0, NumMarbles: 20},
		{Id: 3, Name: "Peggy", Score: 0, NumMarbles: 20},
	}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryFeed(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.StartingMarbles = 17
	r := NewRegistry(NewIdGenerator(), cfg)
	p := r.Register("Gloria", t0)

	for want := uint64(1); want <= 5; want++ {
		res, err := r.Feed(p.Id, t0)
		require.NoError(t, err)
		assert.Equal(t, want, res.Score)
	}

	res, err := r.Feed(p.Id, t0)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxMarbles, res.NumMarbles, "pile is capped")

	_, ok := r.Remove(p.Id)
	require.True(t, ok)

	_, err = r.Feed(p.Id, t0)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestRegistryFeedUnknownDoesNotMutate(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewIdGenerator(), testConfig())
	r.Register("Gloria", t0)
	r.Register("Hugo", t0)
	before := r.Snapshot()

	_, err := r.Feed(99, t0)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
	assert.Equal(t, before, r.Snapshot())
}

func TestRegistryFeedRateLimited(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.FeedRate = 1
	cfg.FeedBurst = 2
	r := NewRegistry(NewIdGenerator(), cfg)
	p := r.Register("Gloria", t0)

	_, err := r.Feed(p.Id, t0)
	require.NoError(t, err)
	_, err = r.Feed(p.Id, t0)
	require.NoError(t, err)

	_, err = r.Feed(p.Id, t0)
	assert.ErrorIs(t, err, ErrRateLimited)
	data, _ := r.Get(p.Id)
	assert.Equal(t, uint64(2), data.Score)

	_, err = r.Feed(p.Id, t0.Add(time.Second))
	assert.NoError(t, err, "bucket refills")
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewIdGenerator(), testConfig())
	p := r.Register("Gloria", t0)
	r.Feed(p.Id, t0)

	removed, ok := r.Remove(p.Id)
	require.True(t, ok)
	assert.Equal(t, uint64(1), removed.Score)

	_, ok = r.Remove(p.Id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryWinner(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewIdGenerator(), testConfig())
	a := r.Register("Gloria", t0)
	b := r.Register("Hugo", t0)
	assert.Equal(t, a.Id, r.Winner(), "lowest id wins an all-zero board")

	r.Feed(b.Id, t0)
	assert.Equal(t, b.Id, r.Winner())

	r.Feed(a.Id, t0)
	assert.Equal(t, b.Id, r.Winner(), "holder keeps the crown on a tie")

	r.Remove(b.Id)
	assert.Equal(t, a.Id, r.Winner())

	r.Remove(a.Id)
	assert.Equal(t, NoPlayer, r.Winner())
}

func TestRegistryConcurrentMutations(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewIdGenerator(), testConfig())

	const workers, perWorker = 8, 100
	var removed sync.Map
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range perWorker {
				p := r.Register("Hippo", t0)
				r.Feed(p.Id, t0)
				r.Snapshot()
				if i%3 == 0 {
					if _, ok := r.Remove(p.Id); ok {
						removed.Store(p.Id, struct{}{})
					}
				}
			}
		})
	}
	wg.Wait()

	removedCount := 0
	removed.Range(func(_, _ any) bool {
		removedCount++
		return true
	})

	snapshot := r.Snapshot()
	assert.Equal(t, workers*perWorker-removedCount, r.Len())
	assert.Len(t, snapshot, r.Len())

	ids := make(map[PlayerId]struct{}, len(snapshot))
	for _, p := range snapshot {
		ids[p.Id] = struct{}{}
		assert.Equal(t, uint64(1), p.Score)
	}
	assert.Len(t, ids, len(snapshot), "ids are unique")
}
