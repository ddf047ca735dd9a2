// Package statesync keeps a keyed record of every instance and tells subscribers when it changes
package statesync

import (
	"encoding/json"
	"errors"
)

// ErrNoSession is returned by a store when there is no record for the instance
var ErrNoSession = errors.New("no session for instance")

// Statuses that end a session
const (
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
)

// Move is an entry in a session's append-only action log
type Move struct {
	PlayerID    string `json:"playerId"`
	Type        string `json:"type"`
	CardID      string `json:"cardId,omitempty"`
	FieldCardID string `json:"fieldCardId,omitempty"`
	// At is milliseconds since the epoch
	At int64 `json:"at"`
}

// Session is the durable record of an instance
// It is always read and written whole.
type Session struct {
	InstanceID   string                 `json:"instanceId"`
	Status       string                 `json:"status"`
	GameState    map[string]interface{} `json:"gameState"`
	Moves        []Move                 `json:"moves"`
	Participants []string               `json:"participants"`
	Winner       string                 `json:"winner,omitempty"`
	// Version increases with every change the owning manager makes
	Version int64 `json:"version"`
	// LastUpdateTime is milliseconds since the epoch
	LastUpdateTime int64 `json:"lastUpdateTime"`
}

// Ended returns true once the instance finished or was cancelled
func (s *Session) Ended() bool {
	return s.Status == StatusFinished || s.Status == StatusCancelled
}

// olderThan returns true if other is a later version of the record
func (s *Session) olderThan(other *Session) bool {
	return other != nil && s.Version < other.Version
}

// WithoutDeck returns a copy whose game state leaves out the draw pile
// Clients never see the deck order, even once the game has ended.
func (s *Session) WithoutDeck() *Session {
	c := *s
	if s.GameState != nil {
		c.GameState = make(map[string]interface{}, len(s.GameState))
		for k, v := range s.GameState {
			if k != "deck" {
				c.GameState[k] = v
			}
		}
	}

	return &c
}

// Encode returns the JSON form stores keep
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSession parses a stored session
func DecodeSession(b []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// GameStateMap converts a typed game state to the generic form a session holds
func GameStateMap(state interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	return m, nil
}

// normalize puts the session in the form a store hands back
func normalize(s *Session) (*Session, error) {
	b, err := s.Encode()
	if err != nil {
		return nil, err
	}

	return DecodeSession(b)
}
