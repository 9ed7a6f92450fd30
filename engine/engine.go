package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/models"
	"github.com/wfunc/worserver/network"
	"github.com/wfunc/worserver/persistence"
	"github.com/wfunc/worserver/score"
	"github.com/wfunc/worserver/scheduler"
)

// Engine drives one table's game lifecycle. All inbound events — player
// actions, table commands and deadline firings — funnel through its mutex,
// so each game sees exactly one in-flight mutation at a time. The aggregate
// is loaded, mutated, saved and only then broadcast; notifications never
// precede the commit.
type Engine struct {
	tableID  string
	repo     Repository
	notifier Notifier
	sched    DeadlineScheduler
	cfg      config.GameConfig

	records RecordSink // optional
	metrics Metrics    // optional
	rng     *rand.Rand

	mu sync.Mutex
}

// New creates the engine for a table.
func New(tableID string, repo Repository, notifier Notifier, sched DeadlineScheduler, cfg config.GameConfig) *Engine {
	return &Engine{
		tableID:  tableID,
		repo:     repo,
		notifier: notifier,
		sched:    sched,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRecordSink wires an archive for finished games.
func (e *Engine) SetRecordSink(sink RecordSink) {
	e.records = sink
}

// SetMetrics wires engine counters.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

// SetRand replaces the deal's randomness source, for reproducible tests.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// CreateNewGame resets the table to an empty lobby. Valid when no game
// exists yet, from the lobby, or after a finished game.
func (e *Engine) CreateNewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundary("createNewGame", e.createNewGameLocked())
}

// PlayerJoinGame seats a pre-registered player at the lobby. An unknown id
// is rejected and that client alone is told so.
func (e *Engine) PlayerJoinGame(playerID, username string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.playerJoinGameLocked(playerID, username)
	if errors.Is(err, game.ErrUserNotFoundWhenJoining) {
		if nerr := e.notifier.ErrorToPlayer(playerID, network.PlayerMsgWrongID); nerr != nil {
			logger.Log.Errorf("Failed to notify player %s of join rejection: %v", playerID, nerr)
		}
	}
	return e.boundary("playerJoinGame", err)
}

// StartGame deals hands and opens the first round.
func (e *Engine) StartGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundary("startGame", e.startGameLocked())
}

// PlayerPlayedCard records one player's card for the current round.
func (e *Engine) PlayerPlayedCard(playerID string, cardValue int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundary("playerPlayedCard", e.playerPlayedCardLocked(playerID, cardValue))
}

// CheckAllPlayersPlayed starts round resolution once every player has a
// played card. Re-entrant calls while resolution is already in progress or
// complete are no-ops, which absorbs a timer firing after a manual play
// already advanced the phase.
func (e *Engine) CheckAllPlayersPlayed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundary("checkAllPlayersPlayed", e.checkAllPlayersPlayedLocked())
}

// NextRoundResultAction settles an outstanding stack choice (when chosen
// is non-nil) and drives resolution forward until the round either blocks
// on another choice or completes. On completion it advances to the next
// round, or finalizes the ranking after the last one.
func (e *Engine) NextRoundResultAction(chosen *int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundary("nextRoundResultAction", e.nextRoundResultActionLocked(chosen))
}

// CurrentGame returns the current aggregate, for read-only callers.
func (e *Engine) CurrentGame() (*game.Game, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadGame()
}

// TableID returns the table this engine serves.
func (e *Engine) TableID() string {
	return e.tableID
}

// boundary is the single error dispatch point: recoverable game errors are
// logged and handed back for the caller to drop, anything else is logged
// as a genuine bug. No event ever halts the table.
func (e *Engine) boundary(op string, err error) error {
	if err == nil {
		return nil
	}
	if game.Recoverable(err) {
		logger.Log.Warnf("%s rejected: %v", op, err)
	} else {
		logger.Log.Errorf("%s unexpected error: %v", op, err)
	}
	return err
}

func (e *Engine) loadGame() (*game.Game, error) {
	g, err := e.repo.GetCurrent()
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return nil, game.ErrGameNotFound
	}
	return g, err
}

func (e *Engine) createNewGameLocked() error {
	prev, err := e.loadGame()
	if err == nil {
		if prev.Phase != game.PhaseLobby && prev.Phase != game.PhaseGameOver {
			return game.ErrTransitionNotAllowed
		}
		e.sched.CancelAll(prev.ID)
	} else if !errors.Is(err, game.ErrGameNotFound) {
		return err
	}

	g := game.New(uuid.New().String())
	if err := e.repo.Save(g); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.IncGamesCreated()
	}
	logger.Log.Infof("Created new game %s for table %s", g.ID, e.tableID)
	return e.notifier.ToTable(network.TableMsgCreateNewGame, g)
}

func (e *Engine) playerJoinGameLocked(playerID, username string) error {
	g, err := e.loadGame()
	if err != nil {
		return err
	}
	if g.Phase != game.PhaseLobby {
		return game.ErrTransitionNotAllowed
	}

	user, err := e.repo.FindUser(playerID)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return game.ErrUserNotFoundWhenJoining
	}
	if err != nil {
		return err
	}
	if username == "" {
		username = user.Username
	}

	player, seated := g.FindPlayer(playerID)
	if seated {
		player.IsLogged = true
		player.Username = username
	} else {
		if len(g.Players) >= e.cfg.MaxPlayers {
			return game.ErrTransitionNotAllowed
		}
		player = &game.Player{
			ID:        playerID,
			Username:  username,
			IsLogged:  true,
			JoinOrder: len(g.Players),
			Cards:     []game.Card{},
			Discard:   []game.Card{},
		}
		g.Players = append(g.Players, player)
	}

	g.Version++
	if err := e.repo.Save(g); err != nil {
		return err
	}

	if err := e.notifier.ToPlayer(playerID, network.PlayerMsgLoggedInGame, player); err != nil {
		logger.Log.Errorf("Failed to notify player %s of login: %v", playerID, err)
	}
	return e.notifier.ToTable(network.TableMsgPlayerJoin, g)
}

func (e *Engine) startGameLocked() error {
	g, err := e.loadGame()
	if err != nil {
		return err
	}
	if len(g.Players) < e.cfg.MinPlayers {
		return game.ErrNotEnoughPlayers
	}
	if err := g.Transition(game.PhaseDealing); err != nil {
		return err
	}

	if err := e.deal(g); err != nil {
		return err
	}
	g.CurrentRound = 1

	if err := g.Transition(game.PhaseRoundInProgress); err != nil {
		return err
	}
	if err := e.repo.Save(g); err != nil {
		return err
	}

	if err := e.notifier.ToTable(network.TableMsgStartGame, g); err != nil {
		logger.Log.Errorf("Failed to notify table of game start: %v", err)
	}
	for _, p := range g.Players {
		if err := e.notifier.ToPlayer(p.ID, network.PlayerMsgStartGame, p); err != nil {
			logger.Log.Errorf("Failed to notify player %s of game start: %v", p.ID, err)
		}
	}

	e.armCardDeadline(g)
	return nil
}

// deal shuffles a fresh deck, seeds the four stacks and hands every player
// one card per round of the game.
func (e *Engine) deal(g *game.Game) error {
	handSize := e.cfg.MaxRounds
	needed := game.StackCount + len(g.Players)*handSize
	if needed > game.DeckSize {
		return fmt.Errorf("deck exhausted: %d players with %d-card hands need %d cards", len(g.Players), handSize, needed)
	}

	deck := game.NewDeck(e.rng)

	g.Stacks = make([]*game.Stack, game.StackCount)
	for i := range g.Stacks {
		g.Stacks[i] = &game.Stack{Cards: []game.Card{deck[0]}}
		deck = deck[1:]
	}

	for _, p := range g.Players {
		p.Cards = append([]game.Card{}, deck[:handSize]...)
		deck = deck[handSize:]
		p.PlayedCard = nil
		p.HadPlayedTurn = false
		p.Discard = []game.Card{}
		p.CattleHeads = 0
		p.Ranking = 0
	}
	return nil
}

func (e *Engine) playerPlayedCardLocked(playerID string, cardValue int) error {
	g, err := e.loadGame()
	if err != nil {
		return err
	}
	if g.Phase != game.PhaseRoundInProgress {
		return game.ErrTransitionNotAllowed
	}

	player, ok := g.FindPlayer(playerID)
	if !ok {
		return game.ErrPlayerNotFound
	}
	if player.HadPlayedTurn {
		return game.ErrPlayerAlreadyPlayedCard
	}

	card, ok := player.RemoveCard(cardValue)
	if !ok {
		return game.ErrPlayerDontHaveCard
	}
	player.PlayedCard = &card
	player.HadPlayedTurn = true

	g.Version++
	if err := e.repo.Save(g); err != nil {
		return err
	}

	if err := e.notifier.ToTable(network.TableMsgNewPlayedCard, g); err != nil {
		logger.Log.Errorf("Failed to notify table of played card: %v", err)
	}
	return e.notifier.ToPlayer(playerID, network.PlayerMsgCardPlayed, player)
}

func (e *Engine) checkAllPlayersPlayedLocked() error {
	g, err := e.loadGame()
	if err != nil {
		return err
	}
	if g.Phase != game.PhaseRoundInProgress {
		// Resolution already started or finished, nothing to do.
		return nil
	}
	if !g.AllPlayersPlayed() {
		return nil
	}

	e.sched.CancelAll(g.ID)

	if err := g.Transition(game.PhaseRoundResolution); err != nil {
		return err
	}
	if err := e.repo.Save(g); err != nil {
		return err
	}
	if err := e.notifier.ToTable(network.TableMsgFlipCardOrder, g); err != nil {
		logger.Log.Errorf("Failed to notify table of card flip: %v", err)
	}

	return e.advanceResolutionLocked(g)
}

// advanceResolutionLocked runs the resolver from the round-resolution
// phase and parks the game on whatever pending action comes out of it.
func (e *Engine) advanceResolutionLocked(g *game.Game) error {
	pending, err := resolvePlays(g)
	if err != nil {
		return err
	}

	pending.Deadline = time.Now().Add(e.cfg.ChooseStackTimeout())
	g.Pending = pending

	if pending.Type == game.ActionChooseStackCard {
		if err := g.Transition(game.PhaseAwaitingStackChoice); err != nil {
			return err
		}
		if err := e.repo.Save(g); err != nil {
			return err
		}
		if err := e.notifier.ToTable(network.TableMsgNewResultAction, g); err != nil {
			logger.Log.Errorf("Failed to notify table of result action: %v", err)
		}
		e.armStackDeadline(g)
		return nil
	}

	if err := g.Transition(game.PhaseRoundComplete); err != nil {
		return err
	}
	if err := e.repo.Save(g); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.IncRoundsResolved()
	}
	return e.notifier.ToTable(network.TableMsgNewResultAction, g)
}

func (e *Engine) nextRoundResultActionLocked(chosen *int) error {
	g, err := e.loadGame()
	if err != nil {
		return err
	}

	switch g.Phase {
	case game.PhaseAwaitingStackChoice, game.PhaseRoundResolution, game.PhaseRoundComplete:
	default:
		return game.ErrTransitionNotAllowed
	}

	e.sched.CancelAll(g.ID)

	if g.Pending != nil && g.Pending.Type == game.ActionChooseStackCard {
		if chosen == nil {
			// A table poke without a choice: re-announce the pending
			// action and put the default back on the clock.
			if err := e.notifier.ToTable(network.TableMsgNewResultAction, g); err != nil {
				logger.Log.Errorf("Failed to notify table of result action: %v", err)
			}
			e.armStackDeadline(g)
			return nil
		}

		if err := applyStackChoice(g, *chosen); err != nil {
			// The aggregate is untouched; rearm so the automatic default
			// still fires if no valid choice ever arrives.
			e.armStackDeadline(g)
			return err
		}
		if err := g.Transition(game.PhaseRoundResolution); err != nil {
			return err
		}
		if err := e.advanceResolutionLocked(g); err != nil {
			return err
		}
		if g.Pending == nil || g.Pending.Type != game.ActionNextRound {
			// Blocked on another forced choice.
			return nil
		}
	}

	if g.Pending == nil || g.Pending.Type != game.ActionNextRound {
		return game.ErrTransitionNotAllowed
	}

	if g.CurrentRound >= e.cfg.MaxRounds {
		return e.finishGameLocked(g)
	}
	return e.advanceRoundLocked(g)
}

// advanceRoundLocked opens the next round. The phase transition makes the
// advance exactly-once: a second attempt for the same round finds the game
// already in progress and is rejected before any NEW_ROUND goes out.
func (e *Engine) advanceRoundLocked(g *game.Game) error {
	if err := g.Transition(game.PhaseDealing); err != nil {
		return err
	}
	g.CurrentRound++
	g.ResetTurn()
	if err := g.Transition(game.PhaseRoundInProgress); err != nil {
		return err
	}
	if err := e.repo.Save(g); err != nil {
		return err
	}

	logger.Log.Infof("Game %s advanced to round %d", g.ID, g.CurrentRound)
	if err := e.notifier.ToTable(network.TableMsgNewRound, g); err != nil {
		logger.Log.Errorf("Failed to notify table of new round: %v", err)
	}
	for _, p := range g.Players {
		if err := e.notifier.ToPlayer(p.ID, network.PlayerMsgNewRound, p); err != nil {
			logger.Log.Errorf("Failed to notify player %s of new round: %v", p.ID, err)
		}
	}

	e.armCardDeadline(g)
	return nil
}

func (e *Engine) finishGameLocked(g *game.Game) error {
	score.Finalize(g.Players)
	g.Pending = nil
	if err := g.Transition(game.PhaseGameOver); err != nil {
		return err
	}
	if err := e.repo.Save(g); err != nil {
		return err
	}

	e.sched.CancelAll(g.ID)
	logger.Log.Infof("Game %s finished after %d rounds", g.ID, g.CurrentRound)

	if err := e.notifier.ToTable(network.TableMsgEndGameResults, g); err != nil {
		logger.Log.Errorf("Failed to notify table of game results: %v", err)
	}
	for _, p := range g.Players {
		if err := e.notifier.ToPlayer(p.ID, network.PlayerMsgEndGameResults, p); err != nil {
			logger.Log.Errorf("Failed to notify player %s of game results: %v", p.ID, err)
		}
	}

	if e.records != nil {
		rec := &models.GameRecord{
			GameID:    g.ID,
			TableID:   e.tableID,
			Rounds:    g.CurrentRound,
			CreatedAt: time.Now(),
		}
		for _, p := range g.Players {
			rec.Results = append(rec.Results, models.PlayerResult{
				PlayerID:    p.ID,
				Username:    p.Username,
				CattleHeads: p.CattleHeads,
				Ranking:     p.Ranking,
			})
		}
		if err := e.records.SaveGameRecord(rec); err != nil {
			logger.Log.Errorf("Failed to archive game %s: %v", g.ID, err)
		}
	}
	return nil
}

// armCardDeadline schedules the automatic card play for the current round.
// The callback re-checks phase and round on fire, so a deadline that lost
// the race against manual plays is a no-op.
func (e *Engine) armCardDeadline(g *game.Game) {
	gameID := g.ID
	round := g.CurrentRound
	e.sched.Arm(gameID, scheduler.ClassChooseCard, e.cfg.ChooseCardTimeout(), func() {
		e.onChooseCardDeadline(gameID, round)
	})
}

// armStackDeadline schedules the automatic default for an outstanding
// stack choice. The callback re-checks the aggregate version on fire, so
// it only settles the exact pending action it was armed for.
func (e *Engine) armStackDeadline(g *game.Game) {
	gameID := g.ID
	version := g.Version
	e.sched.Arm(gameID, scheduler.ClassChooseStack, e.cfg.ChooseStackTimeout(), func() {
		e.onChooseStackDeadline(gameID, version)
	})
}

func (e *Engine) onChooseCardDeadline(gameID string, round int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.loadGame()
	if err != nil {
		return
	}
	if g.ID != gameID || g.Phase != game.PhaseRoundInProgress || g.CurrentRound != round {
		// The round already resolved, or a new game took over.
		return
	}

	if e.metrics != nil {
		e.metrics.IncDeadlineFired(scheduler.ClassChooseCard.String())
	}
	logger.Log.Infof("Card-choice deadline fired for game %s round %d", gameID, round)

	for _, p := range g.Players {
		if p.HadPlayedTurn {
			continue
		}
		card, ok := p.LowestCard()
		if !ok {
			continue
		}
		if err := e.playerPlayedCardLocked(p.ID, card.Value); err != nil {
			logger.Log.Errorf("Automatic play for player %s failed: %v", p.ID, err)
		}
	}

	if err := e.checkAllPlayersPlayedLocked(); err != nil {
		e.boundary("checkAllPlayersPlayed", err)
	}
}

func (e *Engine) onChooseStackDeadline(gameID string, version uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.loadGame()
	if err != nil {
		return
	}
	if g.ID != gameID || g.Phase != game.PhaseAwaitingStackChoice || g.Version != version {
		return
	}
	if g.Pending == nil || g.Pending.Type != game.ActionChooseStackCard {
		return
	}

	if e.metrics != nil {
		e.metrics.IncDeadlineFired(scheduler.ClassChooseStack.String())
	}

	choice := defaultStack(g)
	logger.Log.Infof("Stack-choice deadline fired for game %s, defaulting to stack %d", gameID, choice)
	if err := e.nextRoundResultActionLocked(&choice); err != nil {
		e.boundary("nextRoundResultAction", err)
	}
}
