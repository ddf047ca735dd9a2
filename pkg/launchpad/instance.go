package launchpad

import (
	"time"

	"leviathan-server/pkg/playable"
	"leviathan-server/pkg/playable/cardgame"
	"leviathan-server/pkg/prize"
	"leviathan-server/pkg/statesync"
)

// Status is where an instance is in its life
type Status string

// Status constants
const (
	StatusWaiting   Status = "waiting"
	StatusPlaying   Status = "playing"
	StatusFinished  Status = statesync.StatusFinished
	StatusCancelled Status = statesync.StatusCancelled
)

// winningsRate is the share of the pool recorded as the winner's winnings
const winningsRate = 0.95

// instanceLogLimit is how many log messages an instance keeps
const instanceLogLimit = 25

// Seat is a player's place in an instance
type Seat struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	HasPaid  bool   `json:"hasPaid"`
}

// Instance is one playthrough of a template
type Instance struct {
	ID            string                 `json:"id"`
	TemplateID    string                 `json:"templateId"`
	CreatorID     string                 `json:"creatorId"`
	EntryFee      float64                `json:"entryFee"`
	PrizePool     float64                `json:"prizePool"`
	Status        Status                 `json:"status"`
	Seats         []*Seat                `json:"seats"`
	WinnerID      string                 `json:"winnerId,omitempty"`
	Winnings      float64                `json:"winnings"`
	Distributions []prize.Distribution   `json:"distributions,omitempty"`
	Log           []*playable.LogMessage `json:"log"`
	Created       time.Time              `json:"created"`
	Started       *time.Time             `json:"started,omitempty"`
	Finished      *time.Time             `json:"finished,omitempty"`

	game  *cardgame.Game
	moves []statesync.Move

	// version counts changes, the session in outbox is the latest one not yet published
	version    int64
	outbox     *statesync.Session
	publishing bool
}

func (i *Instance) seat(playerID string) (*Seat, int) {
	for idx, s := range i.Seats {
		if s.PlayerID == playerID {
			return s, idx
		}
	}

	return nil, -1
}

func (i *Instance) playerIDs() []string {
	ids := make([]string, len(i.Seats))
	for idx, s := range i.Seats {
		ids[idx] = s.PlayerID
	}

	return ids
}

func (i *Instance) paidPlayerIDs() []string {
	ids := make([]string, 0, len(i.Seats))
	for _, s := range i.Seats {
		if s.HasPaid {
			ids = append(ids, s.PlayerID)
		}
	}

	return ids
}

func (i *Instance) allPaid() bool {
	for _, s := range i.Seats {
		if !s.HasPaid {
			return false
		}
	}

	return true
}

// drainLog moves the game's pending log messages onto the instance
func (i *Instance) drainLog() {
	if i.game == nil {
		return
	}

	for {
		select {
		case msgs := <-i.game.LogChan():
			i.Log = append(i.Log, msgs...)
		default:
			if n := len(i.Log); n > instanceLogLimit {
				i.Log = append([]*playable.LogMessage{}, i.Log[n-instanceLogLimit:]...)
			}

			return
		}
	}
}

// clone returns a snapshot without the engine
func (i *Instance) clone() *Instance {
	c := *i
	c.game = nil
	c.moves = nil
	c.outbox = nil
	c.publishing = false

	c.Seats = make([]*Seat, len(i.Seats))
	for idx, s := range i.Seats {
		seat := *s
		c.Seats[idx] = &seat
	}

	c.Distributions = append([]prize.Distribution(nil), i.Distributions...)
	c.Log = append([]*playable.LogMessage{}, i.Log...)
	return &c
}

// session returns the durable record of the instance
func (i *Instance) session() (*statesync.Session, error) {
	s := &statesync.Session{
		InstanceID:     i.ID,
		Status:         string(i.Status),
		Moves:          append([]statesync.Move{}, i.moves...),
		Participants:   i.playerIDs(),
		Winner:         i.WinnerID,
		Version:        i.version,
		LastUpdateTime: time.Now().UnixMilli(),
	}

	if i.game != nil {
		state, err := statesync.GameStateMap(i.game.State())
		if err != nil {
			return nil, err
		}

		s.GameState = state
	}

	return s, nil
}

func moveRecord(a cardgame.Action) statesync.Move {
	m := statesync.Move{
		PlayerID: a.PlayerID,
		Type:     string(a.Type()),
		At:       time.Now().UnixMilli(),
	}

	switch move := a.Move.(type) {
	case cardgame.Play:
		m.CardID = move.CardID
	case cardgame.Discard:
		m.CardID = move.CardID
	case cardgame.Swap:
		m.CardID = move.CardID
		m.FieldCardID = move.FieldCardID
	}

	return m
}
