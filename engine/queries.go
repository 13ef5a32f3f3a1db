package engine

import "fmt"

// FlockOptions lists the species p could flock right now, in table order.
func FlockOptions(p Player) []Species {
	counts := CountOf(p.Hand)
	var out []Species
	for _, s := range AllSpecies() {
		if counts[s] >= s.Info().SmallFlock {
			out = append(out, s)
		}
	}
	return out
}

// FlockableCount is len(FlockOptions(p)).
func FlockableCount(p Player) int {
	return len(FlockOptions(p))
}

// RowValid reports whether a row holds at least two distinct species.
func RowValid(row []Species) bool {
	return CountOf(row).Distinct() >= 2
}

// CardTotal counts every card in the game: hands, rows, deck, discard pile
// and banked collections. It stays equal to TotalCards() for any state the
// engine produces.
func CardTotal(s GameState) int {
	n := len(s.Deck) + len(s.DiscardPile)
	for _, row := range s.Rows {
		n += len(row)
	}
	for _, p := range s.Players {
		n += len(p.Hand) + p.Collection.Total()
	}
	return n
}

// View is the read-only projection handed to move-suggestion oracles.
type View struct {
	Seat               int                 `json:"seat"`
	Phase              Phase               `json:"turnPhase"`
	Hand               []Species           `json:"myHand"`
	Collection         Counts              `json:"myCollection"`
	OpponentCollection Counts              `json:"opponentCollection"`
	Rows               [RowCount][]Species `json:"rows"`
}

// ViewFor projects s for the player in seat.
func ViewFor(s GameState, seat int) View {
	c := s.Clone()
	v := View{
		Seat:       seat,
		Phase:      c.Phase,
		Hand:       c.Players[seat].Hand,
		Collection: c.Players[seat].Collection,
		Rows:       c.Rows,
	}
	for i, p := range c.Players {
		if i != seat {
			v.OpponentCollection = p.Collection
			break
		}
	}
	return v
}

// Normalize fills in defaults for anything a replication store may have
// dropped: nil slices, empty status, phase or round. It does not touch
// values that are present.
func Normalize(s GameState) GameState {
	out := s.Clone()
	if out.Players == nil {
		out.Players = []Player{}
	}
	for i := range out.Players {
		if out.Players[i].Hand == nil {
			out.Players[i].Hand = []Species{}
		}
	}
	for i := range out.Rows {
		if out.Rows[i] == nil {
			out.Rows[i] = []Species{}
		}
	}
	if out.Deck == nil {
		out.Deck = []Species{}
	}
	if out.DiscardPile == nil {
		out.DiscardPile = []Species{}
	}
	if out.Log == nil {
		out.Log = []string{}
	}
	if out.Status == "" {
		out.Status = StatusPlaying
		if out.Winner != nil {
			out.Status = StatusGameOver
		}
	}
	if out.Phase == "" {
		out.Phase = PhasePlay
	}
	if out.Round == 0 {
		out.Round = 1
	}
	return out
}

// Validate checks the structural invariants ApplyMove relies on.
func Validate(s GameState) error {
	if len(s.Players) != PlayerCount {
		return fmt.Errorf("%w: %d players", ErrCorruptState, len(s.Players))
	}
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return fmt.Errorf("%w: current player %d", ErrCorruptState, s.CurrentPlayer)
	}
	switch s.Phase {
	case PhasePlay, PhaseDrawDecision, PhaseFlockOrPass:
	default:
		return fmt.Errorf("%w: phase %q", ErrCorruptState, s.Phase)
	}
	switch s.Status {
	case StatusPlaying, StatusGameOver:
	default:
		return fmt.Errorf("%w: status %q", ErrCorruptState, s.Status)
	}
	if s.Winner != nil && (*s.Winner < 0 || *s.Winner >= len(s.Players)) {
		return fmt.Errorf("%w: winner %d", ErrCorruptState, *s.Winner)
	}
	return nil
}
