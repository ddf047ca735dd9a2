package room

import (
	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/playable"
)

type clientStateSeat struct {
	*launchpad.Seat
	IsConnected bool `json:"isConnected"`
	IsSeated    bool `json:"isSeated"`
}

func newErrorResponse(ctx string, err error) *playable.Response {
	return &playable.Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
