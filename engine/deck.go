package engine

import (
	"fmt"
	"slices"
)

// NewDeck returns an unshuffled deck holding every copy of every species.
func NewDeck() []Species {
	deck := make([]Species, 0, TotalCards())
	for _, s := range AllSpecies() {
		for i := 0; i < s.Info().Total; i++ {
			deck = append(deck, s)
		}
	}
	return deck
}

// shuffle returns a shuffled copy of cards.
func (e *Engine) shuffle(cards []Species) []Species {
	out := make([]Species, len(cards))
	copy(out, cards)
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// draw pops one card off the deck, reshuffling the discard pile into a new
// deck first when the deck is empty. ok is false once both are exhausted.
func (e *Engine) draw(s *GameState) (card Species, ok bool) {
	if len(s.Deck) == 0 {
		if len(s.DiscardPile) == 0 {
			return 0, false
		}
		s.Deck = e.shuffle(s.DiscardPile)
		s.DiscardPile = []Species{}
		s.logf("Deck reshuffled.")
	}
	last := len(s.Deck) - 1
	card = s.Deck[last]
	s.Deck = s.Deck[:last]
	return card, true
}

// drawN draws up to n cards and returns what it could get.
func (e *Engine) drawN(s *GameState, n int) []Species {
	out := make([]Species, 0, n)
	for i := 0; i < n; i++ {
		card, ok := e.draw(s)
		if !ok {
			break
		}
		out = append(out, card)
	}
	return out
}

func (e *Engine) dealHands(s *GameState) {
	for i := range s.Players {
		s.Players[i].Hand = e.drawN(s, HandSize)
		sortHand(s.Players[i].Hand)
	}
}

// endRound discards every hand, deals fresh ones and hands initiative to the
// seat after finisher. Collections are left alone. When the supply cannot give
// every player at least one card the game is over with no winner.
func (e *Engine) endRound(s *GameState, finisher int) {
	s.logf(fmt.Sprintf("Round over! %s emptied their hand.", s.Players[finisher].Name))

	for i := range s.Players {
		s.DiscardPile = append(s.DiscardPile, s.Players[i].Hand...)
		s.Players[i].Hand = []Species{}
	}
	e.dealHands(s)

	s.CurrentPlayer = (finisher + 1) % len(s.Players)
	s.Phase = PhasePlay
	s.Round++

	for _, p := range s.Players {
		if len(p.Hand) == 0 {
			s.Status = StatusGameOver
			s.logf(fmt.Sprintf("Not enough cards left to deal %s a hand. The game ends with no winner.", p.Name))
			return
		}
	}
	s.logf(fmt.Sprintf("Round %d begins. %s starts.", s.Round, s.Current().Name))
}

// endTurn passes play to the next seat.
func endTurn(s *GameState) {
	s.logf(fmt.Sprintf("%s ended their turn.", s.Current().Name))
	s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
	s.Phase = PhasePlay
}

func sortHand(hand []Species) {
	slices.Sort(hand)
}

// takeAll splits hand into every copy of s and the rest.
func takeAll(hand []Species, s Species) (taken, rest []Species) {
	rest = make([]Species, 0, len(hand))
	for _, c := range hand {
		if c == s {
			taken = append(taken, c)
			continue
		}
		rest = append(rest, c)
	}
	return taken, rest
}
