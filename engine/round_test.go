package engine

import (
	"testing"

	"github.com/wfunc/worserver/game"
)

// mkStack builds a stack from card values, bottom first.
func mkStack(values ...int) *game.Stack {
	s := &game.Stack{}
	for _, v := range values {
		s.Push(game.Card{Value: v, CattleHead: game.CattleHeadFor(v)})
	}
	return s
}

// mkPlayer builds a player with an unresolved played card.
func mkPlayer(id string, played int) *game.Player {
	c := game.Card{Value: played, CattleHead: game.CattleHeadFor(played)}
	return &game.Player{ID: id, PlayedCard: &c}
}

func mkGame(stacks []*game.Stack, players ...*game.Player) *game.Game {
	g := game.New("test-game")
	g.Stacks = stacks
	g.Players = players
	return g
}

func TestResolveBestFitPlacement(t *testing.T) {
	stacks := []*game.Stack{mkStack(10), mkStack(35), mkStack(58), mkStack(80)}
	g := mkGame(stacks, mkPlayer("p1", 40))

	pending, err := resolvePlays(g)
	if err != nil {
		t.Fatalf("resolvePlays returned error: %v", err)
	}
	if pending.Type != game.ActionNextRound {
		t.Fatalf("Expected NEXT_ROUND pending, got %s", pending.Type)
	}

	// 40 must land on the stack topped 35: the largest top <= 40.
	if got := stacks[1].Top().Value; got != 40 {
		t.Errorf("Expected stack 2 top to be 40, got %d", got)
	}
	if stacks[1].Len() != 2 {
		t.Errorf("Expected stack 2 to hold 2 cards, got %d", stacks[1].Len())
	}
	for _, i := range []int{0, 2, 3} {
		if stacks[i].Len() != 1 {
			t.Errorf("Stack %d should be untouched, has %d cards", i+1, stacks[i].Len())
		}
	}
}

func TestResolveForcedChoiceWhenNoFit(t *testing.T) {
	stacks := []*game.Stack{mkStack(10), mkStack(35), mkStack(58), mkStack(80)}
	p := mkPlayer("p1", 3)
	g := mkGame(stacks, p)

	pending, err := resolvePlays(g)
	if err != nil {
		t.Fatalf("resolvePlays returned error: %v", err)
	}
	if pending.Type != game.ActionChooseStackCard {
		t.Fatalf("Expected CHOOSE_STACK_CARD pending, got %s", pending.Type)
	}
	if pending.PlayerID != "p1" {
		t.Errorf("Expected pending owner p1, got %s", pending.PlayerID)
	}
	if pending.Card.Value != 3 {
		t.Errorf("Expected pending card 3, got %d", pending.Card.Value)
	}

	// No automatic placement may have happened.
	for i, s := range stacks {
		if s.Len() != 1 {
			t.Errorf("Stack %d was mutated, has %d cards", i+1, s.Len())
		}
	}
	if p.PlayedCard == nil {
		t.Error("Played card must stay unresolved until the choice is settled")
	}
}

func TestResolveOverflowClaim(t *testing.T) {
	full := mkStack(10, 12, 15, 18, 20)
	stacks := []*game.Stack{full, mkStack(35), mkStack(58), mkStack(80)}
	p := mkPlayer("p1", 22)
	g := mkGame(stacks, p)

	wantHeads := 0
	for _, c := range full.Cards {
		wantHeads += c.CattleHead
	}

	pending, err := resolvePlays(g)
	if err != nil {
		t.Fatalf("resolvePlays returned error: %v", err)
	}
	if pending.Type != game.ActionNextRound {
		t.Fatalf("Expected NEXT_ROUND pending, got %s", pending.Type)
	}

	if full.Len() != 1 || full.Top().Value != 22 {
		t.Errorf("Expected overflowed stack to restart with [22], got %v", full.Cards)
	}
	if len(p.Discard) != 5 {
		t.Errorf("Expected 5 claimed cards in discard, got %d", len(p.Discard))
	}
	if p.CattleHeads != wantHeads {
		t.Errorf("Expected %d cattle heads, got %d", wantHeads, p.CattleHeads)
	}
}

func TestResolveAscendingOrder(t *testing.T) {
	// p2's 36 must be placed before p1's 57: both land on the stack
	// topped 35, so the final top is 57 with 36 underneath.
	stacks := []*game.Stack{mkStack(10), mkStack(35), mkStack(58), mkStack(80)}
	g := mkGame(stacks, mkPlayer("p1", 57), mkPlayer("p2", 36))

	pending, err := resolvePlays(g)
	if err != nil {
		t.Fatalf("resolvePlays returned error: %v", err)
	}
	if pending.Type != game.ActionNextRound {
		t.Fatalf("Expected NEXT_ROUND pending, got %s", pending.Type)
	}

	want := []int{35, 36, 57}
	if len(stacks[1].Cards) != len(want) {
		t.Fatalf("Expected stack 2 to hold %v, got %v", want, stacks[1].Cards)
	}
	for i, v := range want {
		if stacks[1].Cards[i].Value != v {
			t.Fatalf("Expected stack 2 to hold %v, got %v", want, stacks[1].Cards)
		}
	}
}

func TestResolveDuplicateTopsRejected(t *testing.T) {
	stacks := []*game.Stack{mkStack(10), mkStack(10), mkStack(58), mkStack(80)}
	g := mkGame(stacks, mkPlayer("p1", 40))

	if _, err := resolvePlays(g); err == nil {
		t.Fatal("Expected an error for duplicate stack tops")
	}
}

func TestApplyStackChoice(t *testing.T) {
	stacks := []*game.Stack{mkStack(10, 12), mkStack(35), mkStack(58), mkStack(80)}
	p := mkPlayer("p1", 3)
	g := mkGame(stacks, p)
	g.Pending = &game.PendingAction{
		Type:     game.ActionChooseStackCard,
		PlayerID: "p1",
		Card:     *p.PlayedCard,
	}

	if err := applyStackChoice(g, 0); err != game.ErrStackNotFound {
		t.Errorf("Expected ErrStackNotFound for stack 0, got %v", err)
	}
	if err := applyStackChoice(g, 5); err != game.ErrStackNotFound {
		t.Errorf("Expected ErrStackNotFound for stack 5, got %v", err)
	}
	if len(p.Discard) != 0 {
		t.Fatal("A rejected choice must not mutate the game")
	}

	if err := applyStackChoice(g, 1); err != nil {
		t.Fatalf("applyStackChoice failed: %v", err)
	}
	if stacks[0].Len() != 1 || stacks[0].Top().Value != 3 {
		t.Errorf("Expected chosen stack to restart with [3], got %v", stacks[0].Cards)
	}
	if len(p.Discard) != 2 {
		t.Errorf("Expected 2 claimed cards, got %d", len(p.Discard))
	}
	if g.Pending != nil {
		t.Error("Pending action should be cleared after the claim")
	}
	if p.PlayedCard != nil {
		t.Error("Played card should be resolved after the claim")
	}
}

func TestDefaultStackPicksLowestPenalty(t *testing.T) {
	// Stack heads: 1+1=2, 7, 1, 3. Stack 3 carries the fewest.
	stacks := []*game.Stack{mkStack(1, 2), mkStack(55), mkStack(58), mkStack(80)}
	g := mkGame(stacks)

	if got := defaultStack(g); got != 3 {
		t.Errorf("Expected default stack 3, got %d", got)
	}
}
