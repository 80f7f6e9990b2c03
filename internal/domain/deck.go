package domain

import (
	"fmt"
	"math/rand"
)

// NewDeck returns an unshuffled full deck in rank order.
func NewDeck() []CardKind {
	deck := make([]CardKind, 0, TotalCards())
	for _, info := range catalog[1:] {
		for i := 0; i < info.Count; i++ {
			deck = append(deck, info.Kind)
		}
	}
	return deck
}

// BuildDeck returns a freshly shuffled full deck.
// Draws pop from the end of the slice.
func BuildDeck(rng *rand.Rand) []CardKind {
	deck := NewDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// StackedDeck returns a full deck whose first draws come out in the given order.
// The remaining cards sit underneath in rank order. It panics when the requested
// cards exceed the catalog counts, so it is meant for fixtures and simulations.
func StackedDeck(draws ...CardKind) []CardKind {
	remaining := make(map[CardKind]int, KindCount)
	for _, info := range catalog[1:] {
		remaining[info.Kind] = info.Count
	}
	for _, k := range draws {
		if remaining[k] == 0 {
			panic(fmt.Sprintf("stacked deck: no %s left", k))
		}
		remaining[k]--
	}

	deck := make([]CardKind, 0, TotalCards())
	for _, k := range AllKinds() {
		for i := 0; i < remaining[k]; i++ {
			deck = append(deck, k)
		}
	}
	for i := len(draws) - 1; i >= 0; i-- {
		deck = append(deck, draws[i])
	}
	return deck
}

// CountKinds tallies how many copies of each kind appear in cards.
func CountKinds(cards []CardKind) map[CardKind]int {
	counts := make(map[CardKind]int, KindCount)
	for _, c := range cards {
		counts[c]++
	}
	return counts
}
