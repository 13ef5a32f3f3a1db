package engine

import (
	"fmt"
	"strings"
)

// Species is one of the fixed bird kinds. A card is just its species.
type Species int

const (
	Sparrow Species = iota
	Swallow
	TitWarbler
	MandarinDuck
	Hoopoe
	Kingfisher
	Peacock
	RedCrownedCrane
)

// SpeciesCount is the size of the closed species set.
const SpeciesCount = 8

// SpeciesInfo is the static configuration of a species.
type SpeciesInfo struct {
	Name       string `json:"name"`
	Total      int    `json:"total"`
	SmallFlock int    `json:"smallFlock"`
	BigFlock   int    `json:"bigFlock"`
}

var speciesTable = [SpeciesCount]SpeciesInfo{
	Sparrow:         {Name: "Sparrow", Total: 20, SmallFlock: 6, BigFlock: 9},
	Swallow:         {Name: "Swallow", Total: 20, SmallFlock: 6, BigFlock: 9},
	TitWarbler:      {Name: "Tit-warbler", Total: 17, SmallFlock: 5, BigFlock: 7},
	MandarinDuck:    {Name: "Mandarin Duck", Total: 13, SmallFlock: 4, BigFlock: 6},
	Hoopoe:          {Name: "Hoopoe", Total: 13, SmallFlock: 4, BigFlock: 6},
	Kingfisher:      {Name: "Kingfisher", Total: 10, SmallFlock: 3, BigFlock: 5},
	Peacock:         {Name: "Peacock", Total: 10, SmallFlock: 3, BigFlock: 5},
	RedCrownedCrane: {Name: "Red-crowned Crane", Total: 7, SmallFlock: 2, BigFlock: 3},
}

// AllSpecies returns every species in table order.
func AllSpecies() []Species {
	out := make([]Species, SpeciesCount)
	for i := range out {
		out[i] = Species(i)
	}
	return out
}

// TotalCards is the number of physical cards in a full game.
func TotalCards() int {
	n := 0
	for _, info := range speciesTable {
		n += info.Total
	}
	return n
}

// Valid reports whether s belongs to the species set.
func (s Species) Valid() bool {
	return s >= 0 && s < SpeciesCount
}

// Info returns the static configuration of s. It panics on an invalid species.
func (s Species) Info() SpeciesInfo {
	if !s.Valid() {
		panic(fmt.Sprintf("engine: invalid species %d", int(s)))
	}
	return speciesTable[s]
}

func (s Species) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Species(%d)", int(s))
	}
	return speciesTable[s].Name
}

// MarshalText encodes a species by its display name.
func (s Species) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpecies, int(s))
	}
	return []byte(speciesTable[s].Name), nil
}

// UnmarshalText accepts anything ParseSpecies accepts.
func (s *Species) UnmarshalText(text []byte) error {
	parsed, err := ParseSpecies(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpecies resolves a species name. Matching ignores case, spaces, hyphens
// and underscores, so "Red-crowned Crane" and "RED_CROWNED_CRANE" both work.
func ParseSpecies(name string) (Species, error) {
	key := speciesKey(name)
	for i, info := range speciesTable {
		if speciesKey(info.Name) == key {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
}

func speciesKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Counts is a per-species tally indexed by Species. Collections use it
// directly; hands and rows are tallied on demand.
type Counts [SpeciesCount]int

// CountOf tallies a slice of cards.
func CountOf(cards []Species) Counts {
	var c Counts
	for _, s := range cards {
		if s.Valid() {
			c[s]++
		}
	}
	return c
}

// Distinct is the number of species with a non-zero count.
func (c Counts) Distinct() int {
	n := 0
	for _, v := range c {
		if v > 0 {
			n++
		}
	}
	return n
}

// Total sums all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
