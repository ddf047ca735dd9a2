package room

import (
	"context"

	"github.com/sirupsen/logrus"

	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/playable"
	"leviathan-server/pkg/playable/cardgame"
	"leviathan-server/pkg/statesync"
)

// Host runs the instances that clients connect to
type Host interface {
	Instance(id string) (*launchpad.Instance, error)
	VisibleState(instanceID, playerID string) (*cardgame.GameState, error)
	PlayerAction(ctx context.Context, instanceID, playerID string, payload *playable.PayloadIn) (*playable.Response, error)
}

var _ Host = &launchpad.Manager{}

// PitBoss is responsible for dispatching players to the dealer of their instance
type PitBoss struct {
	host       Host
	syncer     *statesync.Syncer
	logger     logrus.FieldLogger
	dealers    map[string]*Dealer
	connect    chan *Client
	disconnect chan *Client
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(logger logrus.FieldLogger, host Host, syncer *statesync.Syncer) *PitBoss {
	return &PitBoss{
		host:       host,
		syncer:     syncer,
		logger:     logger,
		dealers:    make(map[string]*Dealer),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			p.logger.WithField("player", client.String()).Debug("client connected")
			dealer, found := p.dealers[client.instanceID]
			if !found {
				dealer = NewDealer(p.logger, p.host, p.syncer, client.instanceID)
				dealer.StartShift()
				p.dealers[client.instanceID] = dealer
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			p.logger.WithField("player", client.String()).Debug("client disconnected")
			dealer, found := p.dealers[client.instanceID]
			if !found {
				p.logger.WithField("instanceId", client.instanceID).WithField("type", "exception").Error("dealer not found")
				continue
			}

			if dealer.RemoveClient(client) {
				dealer.EndShift()
				delete(p.dealers, client.instanceID)
			}
		}
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
