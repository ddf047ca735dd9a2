package launchpad

import (
	"errors"
	"fmt"
)

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrNotFound is wrapped by every lookup failure
var ErrNotFound = errors.New("not found")

// lookup errors
var (
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)
	ErrInstanceNotFound = fmt.Errorf("instance %w", ErrNotFound)
)

// ErrDisposed is returned once the manager has been disposed
var ErrDisposed = errors.New("manager has been disposed")

// user errors
const (
	ErrNotWaiting       = UserError("instance is not accepting players")
	ErrNotPlaying       = UserError("instance is not being played")
	ErrInstanceFull     = UserError("instance is full")
	ErrAlreadyJoined    = UserError("player has already joined")
	ErrNotJoined        = UserError("player has not joined the instance")
	ErrAlreadyPaid      = UserError("player has already paid")
	ErrNotEnoughPlayers = UserError("at least two players are needed to start")
	ErrNotCreator       = UserError("only the creator can do that")
	ErrNegativeFee      = UserError("entry fee cannot be negative")
	ErrMissingName      = UserError("template needs a name")
)

// gameError marks an error from the game engine as safe to show
type gameError struct {
	err error
}

func (g gameError) Error() string {
	return g.err.Error()
}

func (g gameError) Unwrap() error {
	return g.err
}

// IsUserError returns true if the error is the caller's fault and safe to show
func IsUserError(err error) bool {
	var u UserError
	var g gameError
	return errors.As(err, &u) || errors.As(err, &g)
}
