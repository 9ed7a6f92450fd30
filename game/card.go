package game

import "math/rand"

const (
	// DeckSize is the number of cards in a full deck, valued 1..DeckSize.
	DeckSize = 104

	// StackCount is the number of visible stacks on the table.
	StackCount = 4

	// StackCapacity is the maximum number of cards a stack may hold. A
	// sixth card claims the stack instead of landing on it.
	StackCapacity = 5
)

// Card is a dealt card. Value is unique across the whole deck; CattleHead
// is the penalty weight it carries into a discard pile.
type Card struct {
	Value      int `json:"value"`
	CattleHead int `json:"cattleHead"`
}

// CattleHeadFor returns the penalty weight for a card value.
func CattleHeadFor(value int) int {
	switch {
	case value == 55:
		return 7
	case value%11 == 0:
		return 5
	case value%10 == 0:
		return 3
	case value%5 == 0:
		return 2
	default:
		return 1
	}
}

// NewDeck builds a full shuffled deck. Pass a seeded source for
// reproducible deals in tests.
func NewDeck(rng *rand.Rand) []Card {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card{Value: i + 1, CattleHead: CattleHeadFor(i + 1)}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
