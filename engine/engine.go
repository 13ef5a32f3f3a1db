// Package engine holds the Cubirds rules: deck handling, the turn state
// machine, capture, flocking, rounds and victory. It is synchronous and free
// of I/O; every transition returns a fresh GameState.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// Engine applies moves. Its only state is the random source used for
// shuffling, so one Engine may serve many games.
type Engine struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes shuffles reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = newLockedRand(seed)
	}
}

// WithRand injects a random source. The caller owns its concurrency safety.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithLogger sets the logger used for rejected moves.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New constructs an Engine. Without WithSeed or WithRand it is time seeded.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newLockedRand(uint64(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

func newLockedRand(seed uint64) *rand.Rand {
	src := &rand.LockedSource{}
	src.Seed(seed)
	return rand.New(src)
}

// InitializeGame builds a fresh game: shuffled deck, four rows of three
// distinct species, eight-card hands and one random banked card per player.
// Seat 1 is computer controlled when aiEnabled is set.
func (e *Engine) InitializeGame(names [PlayerCount]string, aiEnabled bool) GameState {
	s := GameState{
		CurrentPlayer: 0,
		Deck:          e.shuffle(NewDeck()),
		DiscardPile:   []Species{},
		Status:        StatusPlaying,
		Phase:         PhasePlay,
		Round:         1,
		Log:           []string{"Game started! Round 1."},
	}

	for i := range s.Rows {
		row := make([]Species, 0, InitialRowCards)
		for len(row) < InitialRowCards {
			card, ok := e.draw(&s)
			if !ok {
				break
			}
			if containsSpecies(row, card) {
				s.DiscardPile = append(s.DiscardPile, card)
				continue
			}
			row = append(row, card)
		}
		s.Rows[i] = row
	}

	s.Players = make([]Player, PlayerCount)
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		s.Players[i] = Player{
			ID:   i,
			Name: name,
			IsAI: aiEnabled && i == 1,
			Hand: []Species{},
		}
	}
	e.dealHands(&s)

	for i := range s.Players {
		if card, ok := e.draw(&s); ok {
			s.Players[i].Collection[card] = 1
		}
	}

	return s
}

// ApplyMove validates move against state and returns the resulting state.
// It never mutates state. Invalid moves come back with Valid=false and an
// unchanged copy of state. A CurrentPlayer that does not index Players is a
// caller bug and panics.
func (e *Engine) ApplyMove(state GameState, move Move) Outcome {
	if state.CurrentPlayer < 0 || state.CurrentPlayer >= len(state.Players) {
		panic(fmt.Sprintf("engine: current player %d out of range (%d players)", state.CurrentPlayer, len(state.Players)))
	}

	next := state.Clone()
	out := Outcome{Captured: []Species{}}

	var err error
	switch {
	case move == nil:
		err = ErrNilMove
	case state.Status == StatusGameOver:
		err = ErrGameOver
	default:
		switch m := move.(type) {
		case PlayMove:
			err = e.play(&next, m, &out)
		case DrawCardsMove:
			err = e.drawCards(&next, &out)
		case SkipDrawMove:
			err = e.skipDraw(&next, &out)
		case FlockMove:
			err = e.flock(&next, m, &out)
		case PassMove:
			err = e.pass(&next, &out)
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownMove, move)
		}
	}

	if err != nil {
		e.logger.Debug("move rejected",
			zap.Int("player", state.CurrentPlayer),
			zap.String("phase", string(state.Phase)),
			zap.Error(err),
		)
		return Outcome{
			State:    state.Clone(),
			Captured: []Species{},
			Message:  err.Error(),
			Err:      err,
		}
	}

	out.State = next
	out.Valid = true
	return out
}

func requirePhase(s *GameState, want Phase, kind MoveKind) error {
	if s.Phase != want {
		return fmt.Errorf("%w: %s is only legal in %s, not %s", ErrWrongPhase, kind, want, s.Phase)
	}
	return nil
}

func containsSpecies(cards []Species, s Species) bool {
	for _, c := range cards {
		if c == s {
			return true
		}
	}
	return false
}
