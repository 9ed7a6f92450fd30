package game

// Stack is one of the four visible card piles. It holds between 1 and
// StackCapacity cards while a game is in progress.
type Stack struct {
	Cards []Card `json:"cards"`
}

// Top returns the highest (most recently placed) card of the stack.
func (s *Stack) Top() Card {
	return s.Cards[len(s.Cards)-1]
}

// Len returns the number of cards on the stack.
func (s *Stack) Len() int {
	return len(s.Cards)
}

// Push appends a card to the stack.
func (s *Stack) Push(c Card) {
	s.Cards = append(s.Cards, c)
}

// Claim empties the stack into the caller's hands and restarts it with the
// triggering card. The claim and the reset happen in one step so a stack
// over StackCapacity is never observable.
func (s *Stack) Claim(c Card) []Card {
	claimed := s.Cards
	s.Cards = []Card{c}
	return claimed
}

// CattleHeads returns the summed penalty weight currently on the stack.
func (s *Stack) CattleHeads() int {
	total := 0
	for _, c := range s.Cards {
		total += c.CattleHead
	}
	return total
}
