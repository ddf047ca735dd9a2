package cardgame

import (
	"encoding/json"
	"fmt"

	"leviathan-server/pkg/playable"
)

// ActionType is the kind of move a player makes
type ActionType string

// ActionType constants
const (
	ActionDraw    ActionType = "draw"
	ActionPlay    ActionType = "play"
	ActionPass    ActionType = "pass"
	ActionFold    ActionType = "fold"
	ActionDiscard ActionType = "discard"
	ActionSwap    ActionType = "swap"
)

func (a ActionType) valid() bool {
	switch a {
	case ActionDraw, ActionPlay, ActionPass, ActionFold, ActionDiscard, ActionSwap:
		return true
	}

	return false
}

// Move is the action-specific part of an action
// Each implementation carries exactly the fields its action needs.
type Move interface {
	Type() ActionType
}

// Draw moves cards from the top of the deck into the player's hand
type Draw struct{}

// Play moves a card from the player's hand to the field
type Play struct {
	CardID string
}

// Discard removes a card from the player's hand for the rest of the game
type Discard struct {
	CardID string
}

// Pass ends the turn without touching any cards
type Pass struct{}

// Fold takes the player out of the rotation
type Fold struct{}

// Swap exchanges a card in the player's hand with a card on the field
type Swap struct {
	CardID      string
	FieldCardID string
}

// Type returns ActionDraw
func (Draw) Type() ActionType { return ActionDraw }

// Type returns ActionPlay
func (Play) Type() ActionType { return ActionPlay }

// Type returns ActionDiscard
func (Discard) Type() ActionType { return ActionDiscard }

// Type returns ActionPass
func (Pass) Type() ActionType { return ActionPass }

// Type returns ActionFold
func (Fold) Type() ActionType { return ActionFold }

// Type returns ActionSwap
func (Swap) Type() ActionType { return ActionSwap }

// Action is a move made by a player
type Action struct {
	PlayerID string
	Move     Move
}

// Type returns the type of the move, or an empty string if there is none
func (a Action) Type() ActionType {
	if a.Move == nil {
		return ""
	}

	return a.Move.Type()
}

func (a Action) String() string {
	switch m := a.Move.(type) {
	case Play:
		return fmt.Sprintf("%s play %s", a.PlayerID, m.CardID)
	case Discard:
		return fmt.Sprintf("%s discard %s", a.PlayerID, m.CardID)
	case Swap:
		return fmt.Sprintf("%s swap %s for %s", a.PlayerID, m.CardID, m.FieldCardID)
	}

	return fmt.Sprintf("%s %s", a.PlayerID, a.Type())
}

// ParseMove builds a move from a client payload
// Card IDs are taken from cards, the field card of a swap from additional data.
func ParseMove(actionType string, cards []string, data playable.AdditionalData) (Move, error) {
	card := ""
	if len(cards) > 1 {
		return nil, fmt.Errorf("expected at most 1 card, got %d", len(cards))
	} else if len(cards) == 1 {
		card = cards[0]
	}

	switch ActionType(actionType) {
	case ActionDraw:
		return Draw{}, nil
	case ActionPass:
		return Pass{}, nil
	case ActionFold:
		return Fold{}, nil
	case ActionPlay:
		if card == "" {
			return nil, ErrMissingCard
		}

		return Play{CardID: card}, nil
	case ActionDiscard:
		if card == "" {
			return nil, ErrMissingCard
		}

		return Discard{CardID: card}, nil
	case ActionSwap:
		fieldCard, _ := data.GetString("fieldCardId")
		if card == "" || fieldCard == "" {
			return nil, ErrMissingCard
		}

		return Swap{CardID: card, FieldCardID: fieldCard}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownAction, actionType)
}

type actionJSON struct {
	Type        ActionType `json:"type"`
	PlayerID    string     `json:"playerId"`
	CardID      string     `json:"cardId,omitempty"`
	FieldCardID string     `json:"fieldCardId,omitempty"`
}

// MarshalJSON flattens the move into a typed record
func (a Action) MarshalJSON() ([]byte, error) {
	rec := actionJSON{
		Type:     a.Type(),
		PlayerID: a.PlayerID,
	}

	switch m := a.Move.(type) {
	case Play:
		rec.CardID = m.CardID
	case Discard:
		rec.CardID = m.CardID
	case Swap:
		rec.CardID = m.CardID
		rec.FieldCardID = m.FieldCardID
	}

	return json.Marshal(rec)
}

// UnmarshalJSON rebuilds the move from its type
func (a *Action) UnmarshalJSON(b []byte) error {
	var rec actionJSON
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}

	var cards []string
	if rec.CardID != "" {
		cards = []string{rec.CardID}
	}

	move, err := ParseMove(string(rec.Type), cards, playable.AdditionalData{"fieldCardId": rec.FieldCardID})
	if err != nil {
		return err
	}

	a.PlayerID = rec.PlayerID
	a.Move = move
	return nil
}
