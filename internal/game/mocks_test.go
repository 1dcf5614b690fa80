package game

import (
	"context"
	"sync"
	"time"

	"github.com/randomPoison/hangry-river-horse/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- Engine ---

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) RegisterPlayer(now time.Time) PlayerData {
	args := m.Called(now)
	return args.Get(0).(PlayerData)
}

func (m *MockEngine) FeedPlayer(id PlayerId, now time.Time) (FeedResult, error) {
	args := m.Called(id, now)
	return args.Get(0).(FeedResult), args.Error(1)
}

func (m *MockEngine) ListPlayers() []PlayerData {
	args := m.Called()
	return args.Get(0).([]PlayerData)
}

func (m *MockEngine) GetPlayer(id PlayerId) (PlayerData, error) {
	args := m.Called(id)
	return args.Get(0).(PlayerData), args.Error(1)
}

func (m *MockEngine) ResolveNoseGoes(id PlayerId) (NoseGoesResult, error) {
	args := m.Called(id)
	return args.Get(0).(NoseGoesResult), args.Error(1)
}

func (m *MockEngine) NoseGoesStatus() NoseGoesStatus {
	args := m.Called()
	return args.Get(0).(NoseGoesStatus)
}

// --- ScoreArchive ---

type MockScoreArchive struct {
	mock.Mock
}

func (m *MockScoreArchive) RecordFinish(ctx context.Context, score domain.FinalScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreArchive) TopScores(ctx context.Context, limit int) ([]domain.FinalScore, error) {
	args := m.Called(ctx, limit)
	scores, _ := args.Get(0).([]domain.FinalScore)
	return scores, args.Error(1)
}

// --- sinks ---

type recorder[T any] struct {
	mu     sync.Mutex
	events []T
}

func (r *recorder[T]) Send(ev T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder[T]) Events() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.events...)
}

func (r *recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// --- RandomSource ---

// scriptedRandom replays picks, wrapping each into [0, n).
type scriptedRandom struct {
	picks []int
	next  int
}

func (s *scriptedRandom) IntN(n int) int {
	if len(s.picks) == 0 {
		return 0
	}
	v := s.picks[s.next%len(s.picks)]
	s.next++
	return v % n
}

var t0 = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

// newTestGame starts a game at t0 with recording sinks.
func newTestGame(cfg Config, rng RandomSource) (*Game, *recorder[HostBroadcast], *recorder[PlayerBroadcast]) {
	hosts := &recorder[HostBroadcast]{}
	clients := &recorder[PlayerBroadcast]{}
	return NewGame(cfg, NewIdGenerator(), rng, hosts, clients, t0), hosts, clients
}

// testConfig disables feed limiting and keeps hippos from eating during
// nose-goes tests unless a test asks for it.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FeedRate = 0
	cfg.EatInterval = time.Hour
	return cfg
}
