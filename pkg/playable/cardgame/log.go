package cardgame

import (
	"leviathan-server/pkg/playable"
)

// Name returns "card-game"
func (g *Game) Name() string {
	return "card-game"
}

// LogChan returns a channel for sending log messages
func (g *Game) LogChan() <-chan []*playable.LogMessage {
	return g.logChan
}

// sendLogMessages never blocks, messages are dropped when nobody drains the channel
func (g *Game) sendLogMessages(msg ...*playable.LogMessage) {
	if g.logChan == nil {
		return
	}

	select {
	case g.logChan <- msg:
	default:
		g.logger.Warn("log channel is full, dropping messages")
	}
}

func newLogMessage(playerID string, format string, a ...interface{}) *playable.LogMessage {
	return playable.SimpleLogMessage(playerID, format, a...)
}
