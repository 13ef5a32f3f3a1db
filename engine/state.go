package engine

const (
	// PlayerCount is fixed: the game is for two players.
	PlayerCount = 2
	// RowCount is the number of rows on the board.
	RowCount = 4
	// HandSize is the size of a freshly dealt hand.
	HandSize = 8
	// InitialRowCards is the number of distinct species each row starts with.
	InitialRowCards = 3
	// DrawCount is the number of cards taken by a DRAW_CARDS move.
	DrawCount = 2
)

// Phase is the position in the turn state machine.
type Phase string

const (
	PhasePlay         Phase = "PLAY"
	PhaseDrawDecision Phase = "DRAW_DECISION"
	PhaseFlockOrPass  Phase = "FLOCK_OR_PASS"
)

// Status is the lifecycle of the match as a whole.
type Status string

const (
	StatusPlaying  Status = "PLAYING"
	StatusGameOver Status = "GAME_OVER"
)

// Side is the end of a row cards are played onto.
type Side string

const (
	Left  Side = "LEFT"
	Right Side = "RIGHT"
)

// Valid reports whether side is LEFT or RIGHT.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Player is one seat at the table.
type Player struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	IsAI       bool      `json:"isAi"`
	Hand       []Species `json:"hand"`
	Collection Counts    `json:"collection"`
}

// GameState is the aggregate root. Values returned by the engine are never
// shared with the input state, so callers may keep or discard either freely.
type GameState struct {
	Players       []Player            `json:"players"`
	CurrentPlayer int                 `json:"currentPlayerIndex"`
	Rows          [RowCount][]Species `json:"rows"`
	Deck          []Species           `json:"deck"`
	DiscardPile   []Species           `json:"discardPile"`
	Winner        *int                `json:"winner"`
	Status        Status              `json:"status"`
	Phase         Phase               `json:"turnPhase"`
	Round         int                 `json:"round"`
	Log           []string            `json:"lastActionLog"`
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = cloneCards(p.Hand)
		out.Players[i] = p
	}
	for i := range s.Rows {
		out.Rows[i] = cloneCards(s.Rows[i])
	}
	out.Deck = cloneCards(s.Deck)
	out.DiscardPile = cloneCards(s.DiscardPile)
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	if s.Log != nil {
		out.Log = make([]string, len(s.Log))
		copy(out.Log, s.Log)
	}
	return out
}

// Current returns the player whose turn it is.
func (s *GameState) Current() *Player {
	return &s.Players[s.CurrentPlayer]
}

func (s *GameState) logf(msg string) {
	s.Log = append(s.Log, msg)
}

func cloneCards(cards []Species) []Species {
	if cards == nil {
		return nil
	}
	out := make([]Species, len(cards))
	copy(out, cards)
	return out
}
