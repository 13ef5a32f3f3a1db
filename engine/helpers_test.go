package engine

import "testing"

// repeat returns n copies of s.
func repeat(s Species, n int) []Species {
	out := make([]Species, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func cards(groups ...[]Species) []Species {
	var out []Species
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// fixture is a small hand-built two player game in the PLAY phase.
func fixture() GameState {
	return GameState{
		Players: []Player{
			{ID: 0, Name: "Ada", Hand: cards(repeat(Sparrow, 2), repeat(Hoopoe, 1))},
			{ID: 1, Name: "Grace", Hand: cards(repeat(Peacock, 3), repeat(Swallow, 2))},
		},
		Rows: [RowCount][]Species{
			{Swallow, Swallow, Kingfisher, Sparrow},
			{Hoopoe, Peacock, Kingfisher},
			{TitWarbler, MandarinDuck, Hoopoe},
			{RedCrownedCrane, Swallow, Peacock},
		},
		Deck:        []Species{TitWarbler, MandarinDuck, Kingfisher, Swallow, Peacock, Hoopoe},
		DiscardPile: []Species{},
		Status:      StatusPlaying,
		Phase:       PhasePlay,
		Round:       1,
		Log:         []string{},
	}
}

func seeded(t *testing.T) *Engine {
	t.Helper()
	return New(WithSeed(42))
}
