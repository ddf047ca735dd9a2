package launchpad

import (
	"time"

	"leviathan-server/pkg/playable/cardgame"
)

// Template is an immutable rule configuration that instances are created from
// Only the aggregate counters change after creation.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CreatorID   string          `json:"creatorId"`
	Config      cardgame.Config `json:"config"`
	Created     time.Time       `json:"created"`
	TotalGames  int             `json:"totalGames"`
	TotalStaked float64         `json:"totalStaked"`
}

func (t *Template) clone() *Template {
	c := *t
	c.Config.AllowedActions = append([]cardgame.ActionType{}, t.Config.AllowedActions...)
	return &c
}
