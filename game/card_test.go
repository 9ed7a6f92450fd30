package game

import (
	"math/rand"
	"testing"
)

func TestCattleHeadFor(t *testing.T) {
	cases := []struct {
		value int
		want  int
	}{
		{55, 7},  // the double hit
		{11, 5},  // multiple of 11
		{22, 5},
		{99, 5},
		{10, 3},  // multiple of 10
		{100, 3},
		{5, 2},   // multiple of 5
		{85, 2},
		{1, 1},
		{58, 1},
		{104, 1},
	}
	for _, c := range cases {
		if got := CattleHeadFor(c.value); got != c.want {
			t.Errorf("CattleHeadFor(%d) = %d, want %d", c.value, got, c.want)
		}
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(1)))
	if len(deck) != DeckSize {
		t.Fatalf("Expected %d cards, got %d", DeckSize, len(deck))
	}

	seen := make(map[int]bool, DeckSize)
	for _, c := range deck {
		if c.Value < 1 || c.Value > DeckSize {
			t.Errorf("Card value %d out of range", c.Value)
		}
		if seen[c.Value] {
			t.Errorf("Duplicate card value %d", c.Value)
		}
		seen[c.Value] = true
		if c.CattleHead != CattleHeadFor(c.Value) {
			t.Errorf("Card %d carries %d heads, want %d", c.Value, c.CattleHead, CattleHeadFor(c.Value))
		}
	}

	// The whole deck carries a fixed penalty total.
	total := 0
	for _, c := range deck {
		total += c.CattleHead
	}
	want := 0
	for v := 1; v <= DeckSize; v++ {
		want += CattleHeadFor(v)
	}
	if total != want {
		t.Errorf("Deck carries %d heads, want %d", total, want)
	}
}

func TestStackClaim(t *testing.T) {
	s := &Stack{}
	for _, v := range []int{10, 20, 30} {
		s.Push(Card{Value: v, CattleHead: CattleHeadFor(v)})
	}
	if s.CattleHeads() != 3+3+3 {
		t.Errorf("Expected 9 heads on the stack, got %d", s.CattleHeads())
	}

	claimed := s.Claim(Card{Value: 5, CattleHead: 2})
	if len(claimed) != 3 {
		t.Fatalf("Expected 3 claimed cards, got %d", len(claimed))
	}
	if s.Len() != 1 || s.Top().Value != 5 {
		t.Errorf("Expected stack to restart with [5], got %v", s.Cards)
	}
}

func TestPlayerHand(t *testing.T) {
	p := &Player{Cards: []Card{{Value: 30}, {Value: 7}, {Value: 51}}}

	if !p.HasCard(7) || p.HasCard(8) {
		t.Error("HasCard mismatch")
	}

	lowest, ok := p.LowestCard()
	if !ok || lowest.Value != 7 {
		t.Errorf("Expected lowest card 7, got %v", lowest)
	}

	if _, ok := p.RemoveCard(8); ok {
		t.Error("Removing an absent card must fail")
	}
	c, ok := p.RemoveCard(7)
	if !ok || c.Value != 7 {
		t.Errorf("Expected to remove card 7, got %v", c)
	}
	if len(p.Cards) != 2 || p.HasCard(7) {
		t.Errorf("Hand not updated after removal: %v", p.Cards)
	}

	empty := &Player{}
	if _, ok := empty.LowestCard(); ok {
		t.Error("LowestCard on an empty hand must fail")
	}
}
