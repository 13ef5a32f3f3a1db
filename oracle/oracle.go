// Package oracle decides moves for computer-controlled seats. An Oracle only
// ever proposes PLAY moves; Policy wraps it with the fixed rules for the other
// phases and a fallback for when the oracle has nothing useful to say.
package oracle

import (
	"context"
	"errors"

	"go-cubirds/engine"
)

// ErrNoSuggestion means the oracle ran but declined to propose a move.
var ErrNoSuggestion = errors.New("oracle has no suggestion")

type Oracle interface {
	Suggest(ctx context.Context, roomID string, view engine.View) (*engine.PlayMove, error)
}

// suggestion is the answer shape shared by the HTTP and Lua oracles.
type suggestion struct {
	Species engine.Species `json:"species"`
	Row     int            `json:"row"`
	Side    engine.Side    `json:"side"`
}

func (s suggestion) move() *engine.PlayMove {
	return &engine.PlayMove{Species: s.Species, Row: s.Row, Side: s.Side}
}
