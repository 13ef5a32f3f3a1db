package engine

// MoveKind names a move variant on the wire.
type MoveKind string

const (
	KindPlay      MoveKind = "PLAY"
	KindDrawCards MoveKind = "DRAW_CARDS"
	KindSkipDraw  MoveKind = "SKIP_DRAW"
	KindFlock     MoveKind = "FLOCK"
	KindPass      MoveKind = "PASS"
)

// Move is a sealed sum type; each variant carries exactly its own fields.
type Move interface {
	Kind() MoveKind
	isMove()
}

// PlayMove plays every copy of Species onto one end of row Row.
type PlayMove struct {
	Species Species `json:"species"`
	Row     int     `json:"rowIndex"`
	Side    Side    `json:"side"`
}

// DrawCardsMove takes two replacement cards after a capture-free play.
type DrawCardsMove struct{}

// SkipDrawMove declines the replacement draw.
type SkipDrawMove struct{}

// FlockMove banks a qualifying set of Species from the hand.
type FlockMove struct {
	Species Species `json:"species"`
}

// PassMove ends the turn without flocking.
type PassMove struct{}

func (PlayMove) Kind() MoveKind      { return KindPlay }
func (DrawCardsMove) Kind() MoveKind { return KindDrawCards }
func (SkipDrawMove) Kind() MoveKind  { return KindSkipDraw }
func (FlockMove) Kind() MoveKind     { return KindFlock }
func (PassMove) Kind() MoveKind      { return KindPass }

func (PlayMove) isMove()      {}
func (DrawCardsMove) isMove() {}
func (SkipDrawMove) isMove()  {}
func (FlockMove) isMove()     {}
func (PassMove) isMove()      {}

// Outcome is the result of ApplyMove. When Valid is false, State is an
// unchanged copy of the input and Err says why.
type Outcome struct {
	State    GameState `json:"newState"`
	Captured []Species `json:"captured"`
	Drawn    int       `json:"drawn"`
	Flocked  int       `json:"flockedAmount"`
	Valid    bool      `json:"isValid"`
	Message  string    `json:"message"`
	Err      error     `json:"-"`
}
