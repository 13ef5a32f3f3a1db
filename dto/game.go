package dto

import (
	"errors"
	"fmt"
	"strings"

	"go-cubirds/engine"
)

var ErrBadMove = errors.New("malformed move")

// MoveRequest is the wire form of a move, shared by the HTTP and websocket
// APIs. Type accepts the engine kinds (PLAY, DRAW_CARDS, ...) in any case.
type MoveRequest struct {
	Type    string `json:"type" mapstructure:"type"`
	Species string `json:"species" mapstructure:"species"`
	Row     *int   `json:"rowIndex" mapstructure:"rowIndex"`
	Side    string `json:"side" mapstructure:"side"`
}

// ToMove converts r into an engine move. Only the fields the kind needs are
// checked here; game rules are left to the engine.
func (r MoveRequest) ToMove() (engine.Move, error) {
	switch engine.MoveKind(strings.ToUpper(r.Type)) {
	case engine.KindPlay:
		species, err := engine.ParseSpecies(r.Species)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMove, err)
		}
		if r.Row == nil {
			return nil, fmt.Errorf("%w: rowIndex is required", ErrBadMove)
		}
		return engine.PlayMove{
			Species: species,
			Row:     *r.Row,
			Side:    engine.Side(strings.ToUpper(r.Side)),
		}, nil
	case engine.KindDrawCards:
		return engine.DrawCardsMove{}, nil
	case engine.KindSkipDraw:
		return engine.SkipDrawMove{}, nil
	case engine.KindFlock:
		species, err := engine.ParseSpecies(r.Species)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMove, err)
		}
		return engine.FlockMove{Species: species}, nil
	case engine.KindPass:
		return engine.PassMove{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadMove, r.Type)
	}
}

// WSMessage is an inbound websocket frame.
type WSMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// SyncMessage pushes a room snapshot to a websocket client.
type SyncMessage struct {
	Type    string   `json:"type"`
	RoomID  string   `json:"roomID"`
	Seat    int      `json:"seat"`
	Version int64    `json:"version"`
	State   GameView `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GameView is the client-facing form of a game state. The deck order is
// hidden; only its size is sent.
type GameView struct {
	engine.GameState
	Deck     []engine.Species `json:"deck"`
	DeckSize int              `json:"deckSize"`
}

// Redact turns s into a GameView.
func Redact(s engine.GameState) GameView {
	view := GameView{
		GameState: s.Clone(),
		Deck:      []engine.Species{},
		DeckSize:  len(s.Deck),
	}
	view.GameState.Deck = nil
	return view
}

// MoveResult is engine.Outcome with the state redacted.
type MoveResult struct {
	State    GameView         `json:"newState"`
	Captured []engine.Species `json:"captured"`
	Drawn    int              `json:"drawn"`
	Flocked  int              `json:"flockedAmount"`
	Valid    bool             `json:"isValid"`
	Message  string           `json:"message"`
}

func NewMoveResult(out engine.Outcome) MoveResult {
	return MoveResult{
		State:    Redact(out.State),
		Captured: out.Captured,
		Drawn:    out.Drawn,
		Flocked:  out.Flocked,
		Valid:    out.Valid,
		Message:  out.Message,
	}
}
