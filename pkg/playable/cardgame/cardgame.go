package cardgame

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"leviathan-server/pkg/deck"
	"leviathan-server/pkg/playable"
)

// Phase is the phase of the game
type Phase string

// Phase constants
const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

const logChanSize = 256

// Game is a turn-based card game played under a template's rules
// A Game is not safe for concurrent use; the owner serializes calls.
type Game struct {
	config     Config
	players    []*Player
	idToPlayer map[string]*Player

	deck     *deck.Deck
	field    deck.Hand
	discards deck.Hand

	phase              Phase
	currentPlayerIndex int
	turn               int
	winner             *Player
	lastAction         *Action

	// consecutivePasses counts passes since the last action that wasn't a pass
	consecutivePasses int

	logger  logrus.FieldLogger
	logChan chan []*playable.LogMessage
}

// NewGame returns a new game in the setup phase with a shuffled deck
// If seed is 0, a random seed is used. Players are seated in the order given.
func NewGame(logger logrus.FieldLogger, playerIDs []string, config Config, seed int64) (*Game, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(playerIDs) < minPlayers || len(playerIDs) > config.NumPlayers {
		return nil, PlayerCountError{
			Min: minPlayers,
			Max: config.NumPlayers,
			Got: len(playerIDs),
		}
	}

	players := make([]*Player, len(playerIDs))
	idToPlayer := make(map[string]*Player)
	for i, id := range playerIDs {
		if _, found := idToPlayer[id]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}

		p := newPlayer(id, i)
		players[i] = p
		idToPlayer[id] = p
	}

	d, err := deck.New(config.Deck, config.JokerRule)
	if err != nil {
		return nil, err
	}

	seed = d.Shuffle(seed)

	return &Game{
		config:     config,
		players:    players,
		idToPlayer: idToPlayer,
		deck:       d,
		field:      make(deck.Hand, 0),
		discards:   make(deck.Hand, 0),
		phase:      PhaseSetup,
		logger:     logger.WithField("seed", seed),
		logChan:    make(chan []*playable.LogMessage, logChanSize),
	}, nil
}

// Initialize deals the opening hands round-robin, one card per player per round, then the field
func (g *Game) Initialize() error {
	if g.phase != PhaseSetup {
		return ErrAlreadyDealt
	}

	if err := g.config.checkDeal(len(g.players)); err != nil {
		return err
	}

	for i := 0; i < g.config.InitialCardsInHand; i++ {
		for _, player := range g.players {
			card, err := g.deck.Draw()
			if err != nil {
				return err
			}

			player.hand.AddCard(card)
		}
	}

	for i := 0; i < g.config.InitialCardsOnField; i++ {
		card, err := g.deck.Draw()
		if err != nil {
			return err
		}

		g.field.AddCard(card)
	}

	g.phase = PhasePlaying
	g.currentPlayerIndex = 0
	g.turn = 1
	g.updateScores()

	g.logger.WithField("players", len(g.players)).Debug("cards dealt")
	g.sendLogMessages(newLogMessage("", "Dealt %d cards to each player", g.config.InitialCardsInHand))

	return nil
}

// ValidateAction returns nil if the action would be accepted
// It never mutates the game.
func (g *Game) ValidateAction(a Action) error {
	if g.phase != PhasePlaying {
		return ErrNotInProgress
	}

	player, ok := g.idToPlayer[a.PlayerID]
	if !ok {
		return ErrPlayerNotFound
	}

	if player.folded {
		return ErrPlayerFolded
	}

	if g.players[g.currentPlayerIndex] != player {
		return ErrIsNotPlayersTurn
	}

	if a.Move == nil || !a.Type().valid() {
		return fmt.Errorf("%w: %s", ErrUnknownAction, string(a.Type()))
	}

	if !g.config.Allows(a.Type()) {
		return fmt.Errorf("%w: %s", ErrActionNotAllowed, string(a.Type()))
	}

	switch m := a.Move.(type) {
	case Draw:
		if g.deck.CardsLeft() == 0 {
			return ErrDeckEmpty
		}
	case Play:
		if !player.hand.HasCard(m.CardID) {
			return ErrCardNotInPlayersHand
		}
	case Discard:
		if !player.hand.HasCard(m.CardID) {
			return ErrCardNotInPlayersHand
		}
	case Swap:
		if !player.hand.HasCard(m.CardID) {
			return ErrCardNotInPlayersHand
		}

		if !g.field.HasCard(m.FieldCardID) {
			return ErrCardNotOnField
		}
	}

	return nil
}

// ExecuteAction validates and applies an action, advances the turn and checks for a winner
// A rejected action leaves the game untouched.
func (g *Game) ExecuteAction(a Action) error {
	if err := g.ValidateAction(a); err != nil {
		return err
	}

	player := g.idToPlayer[a.PlayerID]
	log := g.logger.WithField("playerID", player.PlayerID)

	var message *playable.LogMessage
	switch m := a.Move.(type) {
	case Draw:
		n := g.config.drawCount()
		if left := g.deck.CardsLeft(); left < n {
			n = left
		}

		for i := 0; i < n; i++ {
			card, _ := g.deck.Draw()
			player.hand.AddCard(card)
		}

		message = newLogMessage(player.PlayerID, "{} drew %d", n)
	case Play:
		card, _ := player.hand.Remove(m.CardID)
		g.field.AddCard(card)
		message = newLogMessage(player.PlayerID, "{} played %s", card)
		message.CardIDs = []string{card.ID}
	case Discard:
		card, _ := player.hand.Remove(m.CardID)
		g.discards.AddCard(card)
		message = newLogMessage(player.PlayerID, "{} discarded a card")
	case Swap:
		fieldCard, _ := g.field.Find(m.FieldCardID)
		handCard, _ := player.hand.Replace(m.CardID, fieldCard)
		_, _ = g.field.Replace(m.FieldCardID, handCard)
		message = newLogMessage(player.PlayerID, "{} swapped %s for %s", handCard, fieldCard)
		message.CardIDs = []string{handCard.ID, fieldCard.ID}
	case Pass:
		message = newLogMessage(player.PlayerID, "{} passed")
	case Fold:
		player.folded = true
		message = newLogMessage(player.PlayerID, "{} folded")
	}

	if a.Type() == ActionPass {
		g.consecutivePasses++
	} else {
		g.consecutivePasses = 0
	}

	action := a
	g.lastAction = &action
	log.WithField("action", a.Type()).Debug("action executed")
	g.sendLogMessages(message)

	g.advanceTurn()
	g.updateScores()
	g.checkWinConditions()

	if g.phase == PhasePlaying && g.config.TurnLimit > 0 && g.turn > g.config.TurnLimit {
		log.WithField("turn", g.turn).Debug("turn limit reached")
		g.DetermineWinner()
	}

	return nil
}

// advanceTurn moves to the next player who hasn't folded
// The turn counter goes up whenever the rotation wraps past the last seat.
func (g *Game) advanceTurn() {
	n := len(g.players)
	for step := 1; step <= n; step++ {
		next := (g.currentPlayerIndex + step) % n
		if g.players[next].folded {
			continue
		}

		if g.currentPlayerIndex+step >= n {
			g.turn++
		}

		g.currentPlayerIndex = next
		return
	}
}

func (g *Game) activePlayers() []*Player {
	active := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if !p.folded {
			active = append(active, p)
		}
	}

	return active
}

func (g *Game) updateScores() {
	target := 0
	if g.config.WinCondition == WinClosestSum {
		target = g.config.Target()
	}

	for _, p := range g.players {
		p.score = g.CalculateHandValue(p.hand, target)
	}
}

// finish ends the game, winner may be nil
func (g *Game) finish(winner *Player) {
	g.phase = PhaseFinished
	g.winner = winner

	if winner == nil {
		g.logger.Info("game ended without a winner")
		g.sendLogMessages(newLogMessage("", "The game ends without a winner"))
		return
	}

	winner.hasWon = true
	g.logger.WithField("winner", winner.PlayerID).Info("game ended")
	g.sendLogMessages(newLogMessage(winner.PlayerID, "{} won"))
}

// Phase returns the current phase
func (g *Game) Phase() Phase {
	return g.phase
}

// WinnerID returns the winner's ID, or an empty string
func (g *Game) WinnerID() string {
	if g.winner == nil {
		return ""
	}

	return g.winner.PlayerID
}

// CurrentPlayerID returns the ID of the player whose turn it is
func (g *Game) CurrentPlayerID() string {
	return g.players[g.currentPlayerIndex].PlayerID
}

// Seed returns the seed the deck was shuffled with
func (g *Game) Seed() int64 {
	return g.deck.Seed()
}

// LastAction returns the last action that was executed, or nil
func (g *Game) LastAction() *Action {
	if g.lastAction == nil {
		return nil
	}

	a := *g.lastAction
	return &a
}
