package statesync

import "reflect"

// EventType is the kind of change a subscriber is told about
type EventType string

// EventType constants
const (
	EventStateUpdate  EventType = "stateUpdate"
	EventMoveExecuted EventType = "moveExecuted"
	EventPlayerJoined EventType = "playerJoined"
	EventPlayerLeft   EventType = "playerLeft"
	EventGameEnded    EventType = "gameEnded"
)

// Event is a change in an instance's session
type Event struct {
	Type       EventType `json:"type"`
	InstanceID string    `json:"instanceId"`
	// PlayerID is set for playerJoined and playerLeft
	PlayerID string `json:"playerId,omitempty"`
	// Move is set for moveExecuted
	Move    *Move    `json:"move,omitempty"`
	Session *Session `json:"session"`
}

// Diff returns the events that take prev to next
// prev is nil when nothing was known about the instance. A stateUpdate always comes first.
func Diff(prev, next *Session) []Event {
	if next == nil || reflect.DeepEqual(prev, next) {
		return nil
	}

	events := []Event{{Type: EventStateUpdate, InstanceID: next.InstanceID, Session: next}}

	var before []string
	var movesBefore int
	ended := false
	if prev != nil {
		before = prev.Participants
		movesBefore = len(prev.Moves)
		ended = prev.Ended()
	}

	for _, id := range next.Participants {
		if !contains(before, id) {
			events = append(events, Event{Type: EventPlayerJoined, InstanceID: next.InstanceID, PlayerID: id, Session: next})
		}
	}

	for _, id := range before {
		if !contains(next.Participants, id) {
			events = append(events, Event{Type: EventPlayerLeft, InstanceID: next.InstanceID, PlayerID: id, Session: next})
		}
	}

	for i := movesBefore; i < len(next.Moves); i++ {
		move := next.Moves[i]
		events = append(events, Event{Type: EventMoveExecuted, InstanceID: next.InstanceID, PlayerID: move.PlayerID, Move: &move, Session: next})
	}

	if next.Ended() && !ended {
		events = append(events, Event{Type: EventGameEnded, InstanceID: next.InstanceID, Session: next})
	}

	return events
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}

	return false
}
