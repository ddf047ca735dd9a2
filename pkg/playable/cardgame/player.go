package cardgame

import "leviathan-server/pkg/deck"

// Player is a seat in the game
// A folded player keeps their seat but is skipped in the rotation.
type Player struct {
	PlayerID string
	seat     int
	hand     deck.Hand
	score    int
	hasWon   bool
	folded   bool
}

func newPlayer(id string, seat int) *Player {
	return &Player{
		PlayerID: id,
		seat:     seat,
		hand:     make(deck.Hand, 0),
	}
}

// Hand returns a shallow clone of the player's hand
func (p *Player) Hand() deck.Hand {
	return p.hand.Clone()
}

// HasFolded returns true if the player has folded
func (p *Player) HasFolded() bool {
	return p.folded
}
