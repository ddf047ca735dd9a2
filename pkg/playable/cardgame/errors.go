package cardgame

import (
	"errors"
	"fmt"
)

// ErrNotInProgress is returned when an action is attempted outside of the playing phase
var ErrNotInProgress = errors.New("game is not in progress")

// ErrAlreadyDealt is returned when Initialize() is called more than once
var ErrAlreadyDealt = errors.New("game has already been dealt")

// ErrPlayerNotFound is returned when a player is not found in the game
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerFolded is returned when a folded player tries to act
var ErrPlayerFolded = errors.New("player has folded")

// ErrIsNotPlayersTurn is returned when it's not the player's turn
var ErrIsNotPlayersTurn = errors.New("not player's turn")

// ErrActionNotAllowed is returned when the action type isn't allowed by the template
var ErrActionNotAllowed = errors.New("action is not allowed")

// ErrUnknownAction is returned for an action type outside of the known set
var ErrUnknownAction = errors.New("unknown action")

// ErrDeckEmpty is returned when a player draws from an empty deck
var ErrDeckEmpty = errors.New("the deck is empty")

// ErrCardNotInPlayersHand happens when the player tries to use a card they don't have
var ErrCardNotInPlayersHand = errors.New("card is not in player's hand")

// ErrCardNotOnField happens when a swap names a card that isn't on the field
var ErrCardNotOnField = errors.New("card is not on the field")

// ErrMissingCard is returned when an action that needs a card doesn't name one
var ErrMissingCard = errors.New("action requires a card")

// ErrDeckTooSmall is returned when the deck can't cover the initial deal
var ErrDeckTooSmall = errors.New("deck is too small for the initial deal")

// ErrDuplicatePlayer is returned when a player ID appears twice
var ErrDuplicatePlayer = errors.New("duplicate player")

// PlayerCountError is an error on the number of players in the game
type PlayerCountError struct {
	Min int
	Max int
	Got int
}

func (p PlayerCountError) Error() string {
	return fmt.Sprintf("expected %d–%d players, got %d", p.Min, p.Max, p.Got)
}
