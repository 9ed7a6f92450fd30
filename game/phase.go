package game

// Phase is the lifecycle state of a game.
type Phase string

const (
	PhaseLobby               Phase = "LOBBY"
	PhaseDealing             Phase = "DEALING"
	PhaseRoundInProgress     Phase = "ROUND_IN_PROGRESS"
	PhaseRoundResolution     Phase = "ROUND_RESOLUTION"
	PhaseAwaitingStackChoice Phase = "AWAITING_STACK_CHOICE"
	PhaseRoundComplete       Phase = "ROUND_COMPLETE"
	PhaseGameOver            Phase = "GAME_OVER"
)

// phaseTransitions is the closed set of legal phase changes. A timer firing
// after the game moved on fails this check and becomes a no-op.
var phaseTransitions = map[Phase][]Phase{
	PhaseLobby:               {PhaseDealing},
	PhaseDealing:             {PhaseRoundInProgress},
	PhaseRoundInProgress:     {PhaseRoundResolution},
	PhaseRoundResolution:     {PhaseAwaitingStackChoice, PhaseRoundComplete},
	PhaseAwaitingStackChoice: {PhaseRoundResolution},
	PhaseRoundComplete:       {PhaseDealing, PhaseGameOver},
	PhaseGameOver:            {},
}

// CanTransition reports whether the phase machine allows from -> to.
func CanTransition(from, to Phase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
