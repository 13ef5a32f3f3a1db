package oracle

import (
	"context"
	"errors"

	"go-cubirds/engine"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// Policy picks a move for the seat whose turn it is:
//
//	PLAY           ask the oracle; fall back to the first hand card on a random row and side
//	DRAW_DECISION  always draw
//	FLOCK_OR_PASS  flock the first eligible species, otherwise pass
type Policy struct {
	oracle Oracle
	rng    *rand.Rand
	logger *zap.Logger
}

// NewPolicy builds a Policy. oracle may be nil, in which case PLAY always
// uses the fallback. rng must be safe for concurrent use if the Policy is
// shared between rooms.
func NewPolicy(oracle Oracle, rng *rand.Rand, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{oracle: oracle, rng: rng, logger: logger}
}

// Decide returns nil only when the current player holds no cards in PLAY,
// which a well-formed game never reaches.
func (p *Policy) Decide(ctx context.Context, roomID string, s engine.GameState) engine.Move {
	player := s.Current()
	switch s.Phase {
	case engine.PhaseDrawDecision:
		return engine.DrawCardsMove{}
	case engine.PhaseFlockOrPass:
		if opts := engine.FlockOptions(*player); len(opts) > 0 {
			return engine.FlockMove{Species: opts[0]}
		}
		return engine.PassMove{}
	}

	if len(player.Hand) == 0 {
		return nil
	}
	if m := p.suggest(ctx, roomID, s); m != nil {
		return *m
	}
	side := engine.Left
	if p.rng.Intn(2) == 1 {
		side = engine.Right
	}
	return engine.PlayMove{
		Species: player.Hand[0],
		Row:     p.rng.Intn(engine.RowCount),
		Side:    side,
	}
}

// suggest consults the oracle and discards answers the engine would reject.
func (p *Policy) suggest(ctx context.Context, roomID string, s engine.GameState) *engine.PlayMove {
	if p.oracle == nil {
		return nil
	}
	log := p.logger.With(zap.String("room", roomID), zap.Int("seat", s.CurrentPlayer))

	m, err := p.oracle.Suggest(ctx, roomID, engine.ViewFor(s, s.CurrentPlayer))
	switch {
	case errors.Is(err, ErrNoSuggestion):
		log.Debug("oracle declined")
		return nil
	case err != nil:
		log.Warn("oracle failed, using fallback", zap.Error(err))
		return nil
	case m == nil:
		return nil
	}

	held := engine.CountOf(s.Current().Hand)
	if !m.Species.Valid() || held[m.Species] == 0 ||
		m.Row < 0 || m.Row >= engine.RowCount || !m.Side.Valid() {
		log.Warn("oracle suggested an unplayable move, using fallback",
			zap.Stringer("species", m.Species),
			zap.Int("row", m.Row),
			zap.String("side", string(m.Side)),
		)
		return nil
	}
	return m
}
