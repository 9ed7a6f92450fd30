package engine

import (
	"errors"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/score"
)

// errDuplicateStackTops flags a corrupt table: the best-fit rule keeps all
// stack tops distinct, so two equal tops can only come from a bad deck or a
// bug. It is never silently resolved by picking one.
var errDuplicateStackTops = errors.New("two stacks share the same top card value")

// resolvePlays places the round's played cards in ascending value order
// until every card is placed or a card fits no stack. It returns the
// pending action the round is now blocked on: a forced stack choice, or
// the next-round gate once all cards are resolved.
func resolvePlays(g *game.Game) (*game.PendingAction, error) {
	for {
		owner := lowestUnresolved(g)
		if owner == nil {
			return &game.PendingAction{Type: game.ActionNextRound}, nil
		}

		card := *owner.PlayedCard
		idx, err := bestFitStack(g.Stacks, card.Value)
		if err != nil {
			return nil, err
		}

		if idx < 0 {
			// Lower than every stack top: the owner must pick a stack to
			// claim before resolution can continue.
			return &game.PendingAction{
				Type:     game.ActionChooseStackCard,
				PlayerID: owner.ID,
				Card:     card,
			}, nil
		}

		stack := g.Stacks[idx]
		if stack.Len() >= game.StackCapacity {
			score.AddClaim(owner, stack.Claim(card))
		} else {
			stack.Push(card)
		}
		owner.PlayedCard = nil
	}
}

// lowestUnresolved returns the player owning the lowest-valued card that
// still awaits placement. Values are unique, so the order is total.
func lowestUnresolved(g *game.Game) *game.Player {
	var owner *game.Player
	for _, p := range g.UnresolvedPlayers() {
		if owner == nil || p.PlayedCard.Value < owner.PlayedCard.Value {
			owner = p
		}
	}
	return owner
}

// bestFitStack returns the index of the stack whose top card is the
// largest value still <= the played value, or -1 when no stack fits.
func bestFitStack(stacks []*game.Stack, value int) (int, error) {
	seen := make(map[int]bool, len(stacks))
	best := -1
	bestTop := -1
	for i, s := range stacks {
		top := s.Top().Value
		if seen[top] {
			return 0, errDuplicateStackTops
		}
		seen[top] = true
		if top <= value && top > bestTop {
			best = i
			bestTop = top
		}
	}
	return best, nil
}

// applyStackChoice settles an outstanding CHOOSE_STACK_CARD action: the
// chosen stack is claimed whole into the owner's discard pile and restarts
// with the blocked card.
func applyStackChoice(g *game.Game, chosen int) error {
	if chosen < 1 || chosen > len(g.Stacks) {
		return game.ErrStackNotFound
	}

	pending := g.Pending
	owner, ok := g.FindPlayer(pending.PlayerID)
	if !ok {
		return game.ErrPlayerNotFound
	}

	score.AddClaim(owner, g.Stacks[chosen-1].Claim(pending.Card))
	owner.PlayedCard = nil
	g.Pending = nil
	return nil
}

// defaultStack is the deterministic stack picked when a stack-choice
// deadline fires: the one carrying the fewest cattle heads, lowest index
// on a tie. Returns a 1-based index.
func defaultStack(g *game.Game) int {
	best := 0
	bestHeads := -1
	for i, s := range g.Stacks {
		heads := s.CattleHeads()
		if bestHeads < 0 || heads < bestHeads {
			best = i
			bestHeads = heads
		}
	}
	return best + 1
}
