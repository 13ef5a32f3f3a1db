package engine

import "fmt"

func (e *Engine) play(s *GameState, m PlayMove, out *Outcome) error {
	if err := requirePhase(s, PhasePlay, KindPlay); err != nil {
		return err
	}
	if !m.Species.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSpecies, int(m.Species))
	}
	if m.Row < 0 || m.Row >= RowCount {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, m.Row)
	}
	if !m.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, m.Side)
	}

	p := s.Current()
	played, rest := takeAll(p.Hand, m.Species)
	if len(played) == 0 {
		return fmt.Errorf("%w: %s", ErrNoCards, m.Species)
	}
	p.Hand = rest

	row, captured := PlaceAndCapture(s.Rows[m.Row], played, m.Side)
	s.Rows[m.Row] = e.refillRow(s, row)

	if len(captured) > 0 {
		p.Hand = append(p.Hand, captured...)
		sortHand(p.Hand)
		out.Captured = captured
		out.Message = fmt.Sprintf("%s played %d %s on row %d (%s), captured %d.",
			p.Name, len(played), m.Species, m.Row+1, m.Side, len(captured))
		s.Phase = PhaseFlockOrPass
		s.logf(out.Message)
		return nil
	}

	out.Message = fmt.Sprintf("%s played %d %s on row %d (%s), no capture.",
		p.Name, len(played), m.Species, m.Row+1, m.Side)
	s.logf(out.Message)

	if len(p.Hand) == 0 {
		e.endRound(s, s.CurrentPlayer)
		return nil
	}
	s.Phase = PhaseDrawDecision
	return nil
}

// PlaceAndCapture puts played on the given end of row and returns the new
// row together with the cards enclosed between the played block and the
// nearest existing card of the same species. Nothing is captured when no such
// card exists or when it sits right next to the block. row is not modified.
func PlaceAndCapture(row, played []Species, side Side) (newRow, captured []Species) {
	if len(played) == 0 {
		return cloneCards(row), nil
	}
	species := played[0]

	switch side {
	case Left:
		match := -1
		for i, c := range row {
			if c == species {
				match = i
				break
			}
		}
		if match > 0 {
			captured = cloneCards(row[:match])
			row = row[match:]
		}
		newRow = make([]Species, 0, len(played)+len(row))
		newRow = append(newRow, played...)
		newRow = append(newRow, row...)

	case Right:
		match := -1
		for i := len(row) - 1; i >= 0; i-- {
			if row[i] == species {
				match = i
				break
			}
		}
		if match >= 0 && match < len(row)-1 {
			captured = cloneCards(row[match+1:])
			row = row[:match+1]
		}
		newRow = make([]Species, 0, len(row)+len(played))
		newRow = append(newRow, row...)
		newRow = append(newRow, played...)
	}

	return newRow, captured
}

// refillRow draws onto the end of row until it holds two distinct species or
// the supply runs out.
func (e *Engine) refillRow(s *GameState, row []Species) []Species {
	for !RowValid(row) {
		card, ok := e.draw(s)
		if !ok {
			break
		}
		row = append(row, card)
	}
	return row
}

func (e *Engine) drawCards(s *GameState, out *Outcome) error {
	if err := requirePhase(s, PhaseDrawDecision, KindDrawCards); err != nil {
		return err
	}
	p := s.Current()
	drawn := e.drawN(s, DrawCount)
	p.Hand = append(p.Hand, drawn...)
	sortHand(p.Hand)

	out.Drawn = len(drawn)
	out.Message = fmt.Sprintf("%s chose to draw %d cards.", p.Name, len(drawn))
	s.logf(out.Message)
	s.Phase = PhaseFlockOrPass
	return nil
}

func (e *Engine) skipDraw(s *GameState, out *Outcome) error {
	if err := requirePhase(s, PhaseDrawDecision, KindSkipDraw); err != nil {
		return err
	}
	p := s.Current()
	out.Message = fmt.Sprintf("%s skipped drawing.", p.Name)
	s.logf(out.Message)

	if len(p.Hand) == 0 {
		e.endRound(s, s.CurrentPlayer)
		return nil
	}
	s.Phase = PhaseFlockOrPass
	return nil
}
