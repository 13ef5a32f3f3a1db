package engine

import "fmt"

// Win thresholds.
const (
	winDistinctSpecies = 7
	winBigSets         = 2
	winBigSetSize      = 3
)

func (e *Engine) flock(s *GameState, m FlockMove, out *Outcome) error {
	if err := requirePhase(s, PhaseFlockOrPass, KindFlock); err != nil {
		return err
	}
	if !m.Species.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSpecies, int(m.Species))
	}

	p := s.Current()
	info := m.Species.Info()
	held := CountOf(p.Hand)[m.Species]
	bank := BankAmount(m.Species, held)
	if bank == 0 {
		return fmt.Errorf("%w: %d %s held, %d needed", ErrBelowFlockThreshold, held, m.Species, info.SmallFlock)
	}

	_, p.Hand = takeAll(p.Hand, m.Species)
	p.Collection[m.Species] += bank
	for i := 0; i < held-bank; i++ {
		s.DiscardPile = append(s.DiscardPile, m.Species)
	}

	out.Flocked = bank
	out.Message = fmt.Sprintf("%s flocked %d %s (banked %d).", p.Name, held, m.Species, bank)
	s.logf(out.Message)

	if CheckWin(p.Collection) {
		winner := s.CurrentPlayer
		s.Winner = &winner
		s.Status = StatusGameOver
		s.logf(fmt.Sprintf("%s WINS!", p.Name))
		return nil
	}

	if len(p.Hand) == 0 {
		e.endRound(s, s.CurrentPlayer)
		return nil
	}
	endTurn(s)
	return nil
}

func (e *Engine) pass(s *GameState, out *Outcome) error {
	if err := requirePhase(s, PhaseFlockOrPass, KindPass); err != nil {
		return err
	}
	p := s.Current()
	out.Message = fmt.Sprintf("%s passed.", p.Name)
	s.logf(out.Message)

	if len(p.Hand) == 0 {
		e.endRound(s, s.CurrentPlayer)
		return nil
	}
	endTurn(s)
	return nil
}

// BankAmount is what flocking held copies of s would bank: 2 at the big
// threshold, 1 at the small one, otherwise 0.
func BankAmount(s Species, held int) int {
	info := s.Info()
	switch {
	case held >= info.BigFlock:
		return 2
	case held >= info.SmallFlock:
		return 1
	default:
		return 0
	}
}

// CheckWin reports whether a collection meets either victory clause: seven
// distinct species, or two species banked at least three times each.
func CheckWin(c Counts) bool {
	if c.Distinct() >= winDistinctSpecies {
		return true
	}
	big := 0
	for _, n := range c {
		if n >= winBigSetSize {
			big++
		}
	}
	return big >= winBigSets
}
