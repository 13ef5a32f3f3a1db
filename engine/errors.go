package engine

import "errors"

// Rejection reasons carried by Outcome.Err. None of these are fatal: the
// caller gets an unchanged copy of the state back.
var (
	ErrNilMove             = errors.New("move is nil")
	ErrUnknownMove         = errors.New("unknown move kind")
	ErrGameOver            = errors.New("game is over")
	ErrWrongPhase          = errors.New("move not allowed in current phase")
	ErrUnknownSpecies      = errors.New("unknown species")
	ErrRowOutOfRange       = errors.New("row index out of range")
	ErrInvalidSide         = errors.New("side must be LEFT or RIGHT")
	ErrNoCards             = errors.New("no cards of that species in hand")
	ErrBelowFlockThreshold = errors.New("not enough cards to flock")
)

// ErrCorruptState is returned by Validate for snapshots the engine cannot run.
var ErrCorruptState = errors.New("corrupt game state")
