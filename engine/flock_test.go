package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flockState(hand []Species) GameState {
	s := fixture()
	s.Phase = PhaseFlockOrPass
	s.Players[0].Hand = hand
	return s
}

func TestFlockBanking(t *testing.T) {
	tests := []struct {
		name        string
		hand        []Species
		species     Species
		wantBank    int
		wantDiscard int
	}{
		{"small sparrow flock", cards(repeat(Sparrow, 6), repeat(Hoopoe, 1)), Sparrow, 1, 5},
		{"big sparrow flock", cards(repeat(Sparrow, 9), repeat(Hoopoe, 1)), Sparrow, 2, 7},
		{"crane pair", cards(repeat(RedCrownedCrane, 2), repeat(Hoopoe, 1)), RedCrownedCrane, 1, 1},
		{"crane trio", cards(repeat(RedCrownedCrane, 3), repeat(Hoopoe, 1)), RedCrownedCrane, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := flockState(tt.hand)
			out := seeded(t).ApplyMove(s, FlockMove{Species: tt.species})
			require.True(t, out.Valid, out.Message)

			next := out.State
			assert.Equal(t, tt.wantBank, out.Flocked)
			assert.Equal(t, tt.wantBank, next.Players[0].Collection[tt.species])
			assert.Len(t, next.DiscardPile, tt.wantDiscard)
			assert.NotContains(t, next.Players[0].Hand, tt.species)
			assert.Equal(t, []Species{Hoopoe}, next.Players[0].Hand)

			assert.Equal(t, 1, next.CurrentPlayer, "turn passes")
			assert.Equal(t, PhasePlay, next.Phase)
			assert.Equal(t, CardTotal(s), CardTotal(next))
		})
	}
}

func TestFlockBelowThreshold(t *testing.T) {
	s := flockState(repeat(Sparrow, 5))
	out := seeded(t).ApplyMove(s, FlockMove{Species: Sparrow})
	assert.False(t, out.Valid)
	assert.ErrorIs(t, out.Err, ErrBelowFlockThreshold)
	assert.Equal(t, s, out.State)

	out = seeded(t).ApplyMove(s, FlockMove{Species: Species(-1)})
	assert.ErrorIs(t, out.Err, ErrUnknownSpecies)
}

func TestFlockOrPassScenario(t *testing.T) {
	e := seeded(t)
	s := flockState(cards(repeat(MandarinDuck, 4), repeat(Kingfisher, 1)))

	play := e.ApplyMove(s, PlayMove{Species: Kingfisher, Row: 0, Side: Left})
	assert.False(t, play.Valid)
	assert.ErrorIs(t, play.Err, ErrWrongPhase)

	out := e.ApplyMove(s, FlockMove{Species: MandarinDuck})
	require.True(t, out.Valid, out.Message)
	assert.Equal(t, 1, out.Flocked)
	assert.Equal(t, 1, out.State.Players[0].Collection[MandarinDuck])
	assert.Equal(t, []Species{MandarinDuck, MandarinDuck, MandarinDuck}, out.State.DiscardPile)
}

func TestFlockEmptyingHandEndsRound(t *testing.T) {
	s := flockState(repeat(Peacock, 3))
	out := seeded(t).ApplyMove(s, FlockMove{Species: Peacock})
	require.True(t, out.Valid, out.Message)

	next := out.State
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, 1, next.CurrentPlayer)
	assert.Equal(t, PhasePlay, next.Phase)
	assert.Equal(t, 1, next.Players[0].Collection[Peacock])
	assert.Len(t, next.Players[0].Hand, HandSize)
}

func TestFlockWinEndsGame(t *testing.T) {
	s := flockState(cards(repeat(Peacock, 5), repeat(Hoopoe, 1)))
	s.Players[0].Collection[Sparrow] = 3
	s.Players[0].Collection[Peacock] = 1

	out := seeded(t).ApplyMove(s, FlockMove{Species: Peacock})
	require.True(t, out.Valid, out.Message)

	next := out.State
	require.NotNil(t, next.Winner)
	assert.Equal(t, 0, *next.Winner)
	assert.Equal(t, StatusGameOver, next.Status)
	assert.Equal(t, 0, next.CurrentPlayer, "no turn advance after a win")
	assert.Equal(t, "Ada WINS!", next.Log[len(next.Log)-1])

	after := seeded(t).ApplyMove(next, PassMove{})
	assert.False(t, after.Valid)
	assert.ErrorIs(t, after.Err, ErrGameOver)
}

func TestPass(t *testing.T) {
	t.Run("advances turn", func(t *testing.T) {
		s := flockState(cards(repeat(Sparrow, 2)))
		out := seeded(t).ApplyMove(s, PassMove{})
		require.True(t, out.Valid, out.Message)
		assert.Equal(t, 1, out.State.CurrentPlayer)
		assert.Equal(t, PhasePlay, out.State.Phase)
		assert.Equal(t, 1, out.State.Round)
		assert.Equal(t, s.Players[0].Hand, out.State.Players[0].Hand)
	})
	t.Run("empty hand ends round", func(t *testing.T) {
		s := flockState([]Species{})
		s.CurrentPlayer = 0
		out := seeded(t).ApplyMove(s, PassMove{})
		require.True(t, out.Valid, out.Message)
		assert.Equal(t, 2, out.State.Round)
		assert.Equal(t, 1, out.State.CurrentPlayer)
	})
	t.Run("second seat wraps to first", func(t *testing.T) {
		s := fixture()
		s.Phase = PhaseFlockOrPass
		s.CurrentPlayer = 1
		out := seeded(t).ApplyMove(s, PassMove{})
		require.True(t, out.Valid, out.Message)
		assert.Equal(t, 0, out.State.CurrentPlayer)
	})
}

func TestCheckWin(t *testing.T) {
	tests := []struct {
		name string
		c    Counts
		want bool
	}{
		{"seven distinct", Counts{1, 1, 1, 1, 1, 1, 1, 0}, true},
		{"two trios", Counts{3, 3}, true},
		{"three pairs", Counts{2, 2, 2}, false},
		{"six distinct", Counts{1, 1, 1, 1, 1, 1}, false},
		{"one trio", Counts{5, 1}, false},
		{"empty", Counts{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckWin(tt.c))
		})
	}
}

func TestFlockOptions(t *testing.T) {
	p := Player{Hand: cards(repeat(Sparrow, 6), repeat(Kingfisher, 2), repeat(RedCrownedCrane, 2))}
	assert.Equal(t, []Species{Sparrow, RedCrownedCrane}, FlockOptions(p))
	assert.Equal(t, 2, FlockableCount(p))
	assert.Zero(t, FlockableCount(Player{}))
}
