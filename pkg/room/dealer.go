package room

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/playable"
	"leviathan-server/pkg/statesync"
)

// Dealer pushes an instance's state to its connected clients and forwards their actions
type Dealer struct {
	host       Host
	syncer     *statesync.Syncer
	instanceID string
	logger     logrus.FieldLogger
	clients    map[*Client]bool
	lock       sync.RWMutex

	subscription  *statesync.Subscription
	execInRunLoop chan func()
	close         chan bool
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(logger logrus.FieldLogger, host Host, syncer *statesync.Syncer, instanceID string) *Dealer {
	return &Dealer{
		host:          host,
		syncer:        syncer,
		instanceID:    instanceID,
		logger:        logger.WithField("instanceId", instanceID),
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift subscribes to the instance and starts the run loop
func (d *Dealer) StartShift() {
	if d.syncer != nil {
		d.syncer.Watch(context.Background(), d.instanceID)
		d.subscription = d.syncer.Subscribe(d.instanceID)
	}

	go d.runLoop()
}

func (d *Dealer) runLoop() {
	var events <-chan statesync.Event
	if d.subscription != nil {
		events = d.subscription.C
	}

	d.logger.Debug("creating dealer run loop")
	for {
		select {
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}

			switch e.Type {
			case statesync.EventStateUpdate:
				d.sendGameData()
			case statesync.EventPlayerJoined, statesync.EventPlayerLeft:
				d.sendPlayerData()
			case statesync.EventGameEnded:
				d.sendGameEnded(e.Session)
			}
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.execInRunLoop <- func() {
		d.sendPlayerData()
		d.sendGameDataTo(client)
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	delete(d.clients, client)
	nClients := len(d.clients)
	d.lock.Unlock()

	if nClients > 0 {
		d.execInRunLoop <- d.sendPlayerData
		return false
	}

	return true
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	if d.subscription != nil {
		d.syncer.Unsubscribe(d.subscription)
		d.syncer.Unwatch(d.instanceID)
	}

	close(d.close)
}

// NOTE: must only be called from the run loop
// The undealt cards stay in the store.
func (d *Dealer) sendGameEnded(session *statesync.Session) {
	public := session.WithoutDeck()
	for _, client := range d.Clients() {
		client.Send(&playable.Response{
			Key:  "gameEnded",
			Data: public,
		})
	}

	d.sendGameData()
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameData() {
	for _, client := range d.Clients() {
		d.sendGameDataTo(client)
	}
}

func (d *Dealer) sendGameDataTo(client *Client) {
	state, err := d.host.VisibleState(d.instanceID, client.playerID)
	if err != nil {
		if !errors.Is(err, launchpad.ErrNotPlaying) {
			d.logger.WithError(err).Error("could not get player state")
		}

		return
	}

	client.Send(&playable.Response{
		Key:   "game",
		Value: "card-game",
		Data:  state,
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendPlayerData() {
	inst, err := d.host.Instance(d.instanceID)
	if err != nil {
		d.logger.WithError(err).Error("could not get instance")
		return
	}

	connectedClients := make(map[string]bool)
	for _, client := range d.Clients() {
		connectedClients[client.playerID] = true
	}

	seats := make(map[string]*clientStateSeat)
	for _, seat := range inst.Seats {
		seats[seat.PlayerID] = &clientStateSeat{
			Seat:        seat,
			IsConnected: connectedClients[seat.PlayerID],
			IsSeated:    true,
		}

		delete(connectedClients, seat.PlayerID)
	}

	// spectators
	for playerID := range connectedClients {
		seats[playerID] = &clientStateSeat{
			Seat:        &launchpad.Seat{PlayerID: playerID},
			IsConnected: true,
			IsSeated:    false,
		}
	}

	for _, client := range d.Clients() {
		client.Send(&playable.Response{
			Key:  "clientState",
			Data: seats,
		})
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	switch msg.Action {
	case "state":
		d.execInRunLoop <- func() {
			d.sendGameDataTo(c)
		}
	default:
		res, err := d.host.PlayerAction(context.Background(), d.instanceID, c.playerID, msg)
		if err != nil {
			d.logger.WithError(err).WithField("client", c.String()).Info("could not perform action")
			c.Send(newErrorResponse(msg.Context, err))
			return
		}

		c.Send(res)
	}
}
