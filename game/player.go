package game

// Player is one seated phone client.
type Player struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	IsLogged      bool   `json:"is_logged"`
	JoinOrder     int    `json:"join_order"`
	Cards         []Card `json:"cards"`
	PlayedCard    *Card  `json:"played_card"`
	HadPlayedTurn bool   `json:"had_played_turn"`
	Discard       []Card `json:"player_discard"`
	CattleHeads   int    `json:"cattle_heads"`
	Ranking       int    `json:"ranking"` // 0 until the game ends
}

// HasCard reports whether the player still holds the given card value.
func (p *Player) HasCard(value int) bool {
	for _, c := range p.Cards {
		if c.Value == value {
			return true
		}
	}
	return false
}

// RemoveCard takes the given card value out of the player's hand.
func (p *Player) RemoveCard(value int) (Card, bool) {
	for i, c := range p.Cards {
		if c.Value == value {
			p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// LowestCard returns the lowest-valued card in the player's hand, used for
// the automatic play on a card-choice timeout.
func (p *Player) LowestCard() (Card, bool) {
	if len(p.Cards) == 0 {
		return Card{}, false
	}
	lowest := p.Cards[0]
	for _, c := range p.Cards[1:] {
		if c.Value < lowest.Value {
			lowest = c
		}
	}
	return lowest, true
}
