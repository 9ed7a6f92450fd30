package game

import "errors"

// Recoverable game errors. Every rejected action maps onto exactly one of
// these; the orchestrator matches them with errors.Is at its boundary and
// logs anything else as an unexpected error.
var (
	ErrGameNotFound            = errors.New("game not found")
	ErrPlayerNotFound          = errors.New("player not found")
	ErrUserNotFoundWhenJoining = errors.New("user not found when joining game")
	ErrNotEnoughPlayers        = errors.New("not enough players for starting game")
	ErrPlayerAlreadyPlayedCard = errors.New("player already played a card this round")
	ErrPlayerDontHaveCard      = errors.New("player does not have that card")
	ErrStackNotFound           = errors.New("stack not found")

	// ErrTransitionNotAllowed rejects an action arriving in a phase it is
	// not valid for.
	ErrTransitionNotAllowed = errors.New("phase transition not allowed")
)

// Recoverable reports whether err belongs to the closed set of game errors
// above. Anything outside the set signals a genuine bug.
func Recoverable(err error) bool {
	for _, known := range []error{
		ErrGameNotFound,
		ErrPlayerNotFound,
		ErrUserNotFoundWhenJoining,
		ErrNotEnoughPlayers,
		ErrPlayerAlreadyPlayedCard,
		ErrPlayerDontHaveCard,
		ErrStackNotFound,
		ErrTransitionNotAllowed,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
