package cardgame

import (
	"fmt"

	"leviathan-server/pkg/deck"
)

// WinCondition decides who wins a game
type WinCondition string

// WinCondition constants
const (
	WinHighestCard WinCondition = "highest_card"
	WinClosestSum  WinCondition = "closest_sum"
	WinEmptyHand   WinCondition = "empty_hand"
)

// Visibility controls who can see a container of cards
type Visibility string

// Visibility constants
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// DefaultBlackjackTarget is the closest_sum target when the config doesn't set one
const DefaultBlackjackTarget = 21

const (
	minPlayers = 2
	maxPlayers = 10
)

// Config is the rule configuration of a template
type Config struct {
	NumPlayers          int              `json:"numPlayers" yaml:"numPlayers"`
	WinCondition        WinCondition     `json:"winCondition" yaml:"winCondition"`
	InitialCardsInHand  int              `json:"initialCardsInHand" yaml:"initialCardsInHand"`
	InitialCardsOnField int              `json:"initialCardsOnField" yaml:"initialCardsOnField"`
	Deck                deck.Composition `json:"deckComposition" yaml:"deckComposition"`
	CardsDrawnPerTurn   int              `json:"cardsDrawnPerTurn" yaml:"cardsDrawnPerTurn"`
	CardsPlayedPerTurn  int              `json:"cardsPlayedPerTurn" yaml:"cardsPlayedPerTurn"`
	JokerRule           deck.JokerRule   `json:"jokerRule" yaml:"jokerRule"`
	AllowedActions      []ActionType     `json:"allowedActions" yaml:"allowedActions"`
	BlackjackTarget     int              `json:"blackjackTarget,omitempty" yaml:"blackjackTarget"`
	// TurnLimit is the number of full rotations before the game is force-ended, 0 for no limit
	TurnLimit       int        `json:"turnLimit,omitempty" yaml:"turnLimit"`
	HandVisibility  Visibility `json:"handVisibility,omitempty" yaml:"handVisibility"`
	FieldVisibility Visibility `json:"fieldVisibility,omitempty" yaml:"fieldVisibility"`
}

// DefaultConfig returns a two player, highest card game with a standard deck
func DefaultConfig() Config {
	return Config{
		NumPlayers:         2,
		WinCondition:       WinHighestCard,
		InitialCardsInHand: 5,
		Deck:               deck.Standard,
		CardsDrawnPerTurn:  1,
		CardsPlayedPerTurn: 1,
		JokerRule:          deck.JokerNone,
		AllowedActions:     []ActionType{ActionDraw, ActionPlay, ActionPass, ActionFold},
		HandVisibility:     VisibilityPrivate,
		FieldVisibility:    VisibilityPublic,
	}
}

// Validate returns an error if a game can't be played with the config
// A deck that can't cover the initial deal is rejected here rather than dealt short.
func (c Config) Validate() error {
	if c.NumPlayers < minPlayers || c.NumPlayers > maxPlayers {
		return PlayerCountError{Min: minPlayers, Max: maxPlayers, Got: c.NumPlayers}
	}

	switch c.WinCondition {
	case WinHighestCard, WinClosestSum, WinEmptyHand:
	default:
		return fmt.Errorf("unknown win condition: %q", string(c.WinCondition))
	}

	if err := c.Deck.Validate(); err != nil {
		return err
	}

	if err := c.JokerRule.Valid(); err != nil {
		return err
	}

	if c.InitialCardsInHand < 0 || c.InitialCardsOnField < 0 {
		return fmt.Errorf("initial card counts cannot be negative")
	}

	if c.CardsDrawnPerTurn < 0 || c.CardsPlayedPerTurn < 0 {
		return fmt.Errorf("per-turn card counts cannot be negative")
	}

	if c.TurnLimit < 0 {
		return fmt.Errorf("turn limit cannot be negative, got %d", c.TurnLimit)
	}

	if c.BlackjackTarget < 0 {
		return fmt.Errorf("blackjack target cannot be negative, got %d", c.BlackjackTarget)
	}

	if len(c.AllowedActions) == 0 {
		return fmt.Errorf("at least one action must be allowed")
	}

	for _, t := range c.AllowedActions {
		if !t.valid() {
			return fmt.Errorf("%w: %s", ErrUnknownAction, string(t))
		}
	}

	for _, v := range []Visibility{c.HandVisibility, c.FieldVisibility} {
		switch v {
		case VisibilityPublic, VisibilityPrivate, "":
		default:
			return fmt.Errorf("unknown visibility: %q", string(v))
		}
	}

	return c.checkDeal(c.NumPlayers)
}

// checkDeal returns ErrDeckTooSmall if the deck can't cover the initial deal for n players
func (c Config) checkDeal(n int) error {
	need := n*c.InitialCardsInHand + c.InitialCardsOnField
	if have := c.Deck.Size(); have < need {
		return fmt.Errorf("%w: need %d cards, deck has %d", ErrDeckTooSmall, need, have)
	}

	return nil
}

// Allows returns true if the action type is in the allowed actions
func (c Config) Allows(t ActionType) bool {
	for _, allowed := range c.AllowedActions {
		if allowed == t {
			return true
		}
	}

	return false
}

// Target returns the closest_sum target
func (c Config) Target() int {
	if c.BlackjackTarget > 0 {
		return c.BlackjackTarget
	}

	return DefaultBlackjackTarget
}

func (c Config) drawCount() int {
	if c.CardsDrawnPerTurn > 0 {
		return c.CardsDrawnPerTurn
	}

	return 1
}

func (c Config) handsPrivate() bool {
	return c.HandVisibility != VisibilityPublic
}

func (c Config) fieldPrivate() bool {
	return c.FieldVisibility == VisibilityPrivate
}
