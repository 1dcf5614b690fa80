package game

import (
	"encoding/json"
	"time"
)

// Broadcast is a fact about a transition that already happened. Kind is the
// tag the event carries on the wire.
type Broadcast interface {
	Kind() string
}

// HostBroadcast goes to the shared host displays.
type HostBroadcast interface {
	Broadcast
	hostBroadcast()
}

// PlayerBroadcast goes to every player's phone.
type PlayerBroadcast interface {
	Broadcast
	playerBroadcast()
}

type unitBroadcast interface {
	unit()
}

type PlayerRegister struct {
	PlayerData
}

// HippoEat reports a score or pile change, from a tap, the hippo eating on
// its own or a nose-goes bonus.
type HippoEat struct {
	Id         PlayerId `json:"id"`
	Score      uint64   `json:"score"`
	NumMarbles int      `json:"num_marbles"`
}

type BeginNoseGoes struct {
	Duration time.Duration
	Players  []PlayerId
}

type BonusWinner struct {
	Id PlayerId `json:"id"`
}

type BonusAward struct {
	Id    PlayerId
	Score uint64
}

type EndNoseGoes struct {
	Losers      []PlayerId
	BonusWinner *BonusAward
}

type PlayerStarve struct {
	Id    PlayerId `json:"id"`
	Score uint64   `json:"score"`
}

type UpdateWinner struct {
	Id PlayerId `json:"id"`
}

type NoseGoesStarted struct{}

type NoseGoesEnded struct{}

type PlayerLose struct {
	Id    PlayerId `json:"id"`
	Score uint64   `json:"score"`
}

func (PlayerRegister) Kind() string  { return "PlayerRegister" }
func (HippoEat) Kind() string        { return "HippoEat" }
func (BeginNoseGoes) Kind() string   { return "BeginNoseGoes" }
func (BonusWinner) Kind() string     { return "BonusWinner" }
func (EndNoseGoes) Kind() string     { return "EndNoseGoes" }
func (PlayerStarve) Kind() string    { return "PlayerStarve" }
func (UpdateWinner) Kind() string    { return "UpdateWinner" }
func (NoseGoesStarted) Kind() string { return "BeginNoseGoes" }
func (NoseGoesEnded) Kind() string   { return "EndNoseGoes" }
func (PlayerLose) Kind() string      { return "PlayerLose" }

func (PlayerRegister) hostBroadcast() {}
func (HippoEat) hostBroadcast()       {}
func (BeginNoseGoes) hostBroadcast()  {}
func (BonusWinner) hostBroadcast()    {}
func (EndNoseGoes) hostBroadcast()    {}
func (PlayerStarve) hostBroadcast()   {}
func (UpdateWinner) hostBroadcast()   {}

func (HippoEat) playerBroadcast()        {}
func (UpdateWinner) playerBroadcast()    {}
func (NoseGoesStarted) playerBroadcast() {}
func (NoseGoesEnded) playerBroadcast()   {}
func (PlayerLose) playerBroadcast()      {}

func (NoseGoesStarted) unit() {}
func (NoseGoesEnded) unit()   {}

func (e BeginNoseGoes) MarshalJSON() ([]byte, error) {
	players := e.Players
	if players == nil {
		players = []PlayerId{}
	}
	return json.Marshal(struct {
		DurationMs int64      `json:"duration_ms"`
		Players    []PlayerId `json:"players"`
	}{
		DurationMs: e.Duration.Milliseconds(),
		Players:    players,
	})
}

// MarshalJSON writes bonus_winner as an [id, score] pair, or null.
func (e EndNoseGoes) MarshalJSON() ([]byte, error) {
	losers := e.Losers
	if losers == nil {
		losers = []PlayerId{}
	}
	var bonus []any
	if e.BonusWinner != nil {
		bonus = []any{e.BonusWinner.Id, e.BonusWinner.Score}
	}
	return json.Marshal(struct {
		Losers      []PlayerId `json:"losers"`
		BonusWinner []any      `json:"bonus_winner"`
	}{
		Losers:      losers,
		BonusWinner: bonus,
	})
}

// EncodeBroadcast renders an event in its externally tagged form: a bare
// string for events without data, {"Kind": {...}} otherwise.
func EncodeBroadcast(ev Broadcast) ([]byte, error) {
	if _, ok := ev.(unitBroadcast); ok {
		return json.Marshal(ev.Kind())
	}
	return json.Marshal(map[string]Broadcast{ev.Kind(): ev})
}
