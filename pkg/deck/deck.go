package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"leviathan-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents a draw pile
// The top of the deck is the end of Cards
type Deck struct {
	Cards []*Card `json:"cards"`
	seed  int64
}

// New returns a new deck of cards built from the composition
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New(c Composition, rule JokerRule) (*Deck, error) {
	cards, err := Build(c, rule)
	if err != nil {
		return nil, err
	}

	return &Deck{Cards: cards}, nil
}

// Shuffle will shuffle the deck of cards
// If seed is 0 a random one is picked. This method returns the seed used.
func (d *Deck) Shuffle(seed int64) int64 {
	if seed == 0 {
		seed = rng.Seed(rng.Crypto{})
	}

	d.seed = seed
	d.Cards = Shuffle(d.Cards, seed)
	return seed
}

// Seed returns the seed used to shuffle the deck
func (d *Deck) Seed() int64 {
	return d.seed
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.ID))
		_, _ = hash.Write([]byte{','})
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}

// Draw will draw the top card
// If there are no more cards, an ErrEndOfDeck is returned along with a nil card.
func (d *Deck) Draw() (*Card, error) {
	n := len(d.Cards)
	if n <= 0 {
		return nil, ErrEndOfDeck
	}

	card := d.Cards[n-1]
	d.Cards[n-1] = nil
	d.Cards = d.Cards[:n-1]

	return card, nil
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}

// Clone returns a copy of the deck that shares the (immutable) cards
func (d *Deck) Clone() *Deck {
	cards := make([]*Card, len(d.Cards))
	copy(cards, d.Cards)

	return &Deck{
		Cards: cards,
		seed:  d.seed,
	}
}
