package cardgame

import (
	"leviathan-server/pkg/deck"
	"leviathan-server/pkg/playable"
)

// GameState is a snapshot of the game
// The canonical snapshot holds every card. Use GetVisibleState() for anything sent to a player.
type GameState struct {
	Seed               int64          `json:"seed,omitempty"`
	Players            []*PlayerState `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	CurrentPlayerID    string         `json:"currentPlayerId"`
	Turn               int            `json:"turn"`
	Deck               []*deck.Card   `json:"deck,omitempty"`
	DeckSize           int            `json:"deckSize"`
	Field              []*deck.Card   `json:"field"`
	FieldSize          int            `json:"fieldSize"`
	DiscardSize        int            `json:"discardSize"`
	Phase              Phase          `json:"phase"`
	Winner             string         `json:"winner,omitempty"`
	Config             Config         `json:"config"`
	LastAction         *Action        `json:"lastAction,omitempty"`
}

// PlayerState is the state of an individual player
type PlayerState struct {
	PlayerID  string       `json:"playerId"`
	Hand      []*deck.Card `json:"hand"`
	HandSize  int          `json:"handSize"`
	Score     int          `json:"score"`
	HasWon    bool         `json:"hasWon"`
	HasFolded bool         `json:"hasFolded"`
}

// State returns the canonical snapshot, including the deck and every hand
func (g *Game) State() *GameState {
	gs := g.baseState()
	gs.Deck = append([]*deck.Card{}, g.deck.Cards...)

	for i, p := range g.players {
		gs.Players[i].Hand = p.hand.Clone()
	}

	gs.Field = g.field.Clone()
	return gs
}

// GetVisibleState returns the snapshot as seen by the player
// Other players' hands are replaced by placeholders when hands are private, and the field is left
// out entirely when the field is private. The deck order is never shown, and neither is the seed
// that would rebuild it until the game is finished.
func (g *Game) GetVisibleState(playerID string) *GameState {
	gs := g.baseState()
	if g.phase != PhaseFinished {
		gs.Seed = 0
	}

	for i, p := range g.players {
		if p.PlayerID == playerID || !g.config.handsPrivate() || g.phase == PhaseFinished {
			gs.Players[i].Hand = p.hand.Clone()
			continue
		}

		hidden := make([]*deck.Card, len(p.hand))
		for j := range hidden {
			hidden[j] = deck.Hidden(j)
		}

		gs.Players[i].Hand = hidden
	}

	if g.config.fieldPrivate() {
		gs.Field = nil
	} else {
		gs.Field = g.field.Clone()
	}

	return gs
}

func (g *Game) baseState() *GameState {
	players := make([]*PlayerState, len(g.players))
	for i, p := range g.players {
		players[i] = &PlayerState{
			PlayerID:  p.PlayerID,
			HandSize:  len(p.hand),
			Score:     p.score,
			HasWon:    p.hasWon,
			HasFolded: p.folded,
		}
	}

	var lastAction *Action
	if g.lastAction != nil {
		a := *g.lastAction
		lastAction = &a
	}

	allowed := make([]ActionType, len(g.config.AllowedActions))
	copy(allowed, g.config.AllowedActions)
	config := g.config
	config.AllowedActions = allowed

	return &GameState{
		Seed:               g.deck.Seed(),
		Players:            players,
		CurrentPlayerIndex: g.currentPlayerIndex,
		CurrentPlayerID:    g.CurrentPlayerID(),
		Turn:               g.turn,
		DeckSize:           g.deck.CardsLeft(),
		FieldSize:          len(g.field),
		DiscardSize:        len(g.discards),
		Phase:              g.phase,
		Winner:             g.WinnerID(),
		Config:             config,
		LastAction:         lastAction,
	}
}

// Action performs an action sent by a client
func (g *Game) Action(playerID string, message *playable.PayloadIn) (playerResponse *playable.Response, updateState bool, err error) {
	move, err := ParseMove(message.Action, message.Cards, message.AdditionalData)
	if err != nil {
		return nil, false, err
	}

	if err := g.ExecuteAction(Action{PlayerID: playerID, Move: move}); err != nil {
		return nil, false, err
	}

	return playable.OK(), true, nil
}

// GetPlayerState returns the state for the given player
func (g *Game) GetPlayerState(playerID string) (*playable.Response, error) {
	return &playable.Response{
		Key:   "game",
		Value: g.Name(),
		Data:  g.GetVisibleState(playerID),
	}, nil
}

// GetEndOfGameDetails returns details at the end of the game
func (g *Game) GetEndOfGameDetails() (gameOverDetails *playable.GameOverDetails, isGameOver bool) {
	if g.phase != PhaseFinished {
		return nil, false
	}

	return &playable.GameOverDetails{
		WinnerID: g.WinnerID(),
		Log:      g.State(),
	}, true
}
