package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// PlayerId identifies a registered player. It travels as a JSON string so
// browser clients never treat it as a float.
type PlayerId uint64

// NoPlayer is never handed out by IdGenerator.
const NoPlayer PlayerId = 0

func ParsePlayerId(s string) (PlayerId, error) {
	raw, err := strconv.ParseUint(s, 10, 64)
	if err != nil || raw == 0 {
		return NoPlayer, fmt.Errorf("%w: %q", ErrMalformedPlayerId, s)
	}
	return PlayerId(raw), nil
}

func (id PlayerId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id PlayerId) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

func (id *PlayerId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedPlayerId, data)
	}
	parsed, err := ParsePlayerId(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IdGenerator hands out increasing ids, safe for concurrent use.
type IdGenerator struct {
	last atomic.Uint64
}

func NewIdGenerator() *IdGenerator {
	return &IdGenerator{}
}

func (g *IdGenerator) Next() PlayerId {
	id := g.last.Add(1)
	if id == 0 {
		log.Fatal().Msg("player id space exhausted")
	}
	return PlayerId(id)
}
