// Package score accumulates discard-pile penalties and computes the final
// ranking. Totals are kept incrementally as claims happen, never recomputed
// from scratch.
package score

import (
	"sort"

	"github.com/wfunc/worserver/game"
)

// AddClaim moves claimed cards into the player's discard pile and adds
// their cattle heads to the running total.
func AddClaim(p *game.Player, cards []game.Card) {
	p.Discard = append(p.Discard, cards...)
	for _, c := range cards {
		p.CattleHeads += c.CattleHead
	}
}

// Finalize assigns rankings ascending by total penalty, lowest penalty
// first. Ties keep the players' join order (stable sort).
func Finalize(players []*game.Player) {
	ranked := make([]*game.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CattleHeads != ranked[j].CattleHeads {
			return ranked[i].CattleHeads < ranked[j].CattleHeads
		}
		return ranked[i].JoinOrder < ranked[j].JoinOrder
	})
	for i, p := range ranked {
		p.Ranking = i + 1
	}
}
