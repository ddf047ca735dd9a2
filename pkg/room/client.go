package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"leviathan-server/pkg/playable"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	playerID   string
	instanceID string
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, playerID, instanceID string) *Client {
	return &Client{
		send:       make(chan interface{}, 256),
		Close:      make(chan string),
		Conn:       conn,
		playerID:   playerID,
		instanceID: instanceID,
	}
}

// Send send a message to the web client
// The message is dropped if the client has fallen behind.
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		logrus.WithField("client", c.String()).Warn("client send buffer is full")
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// PlayerID returns the ID of the connected player
func (c *Client) PlayerID() string {
	return c.playerID
}

// String returns a traceable identifier for the player and instance
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.playerID, c.instanceID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *playable.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
