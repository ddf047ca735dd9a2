package deck

import (
	"errors"
	"fmt"
)

// JokerRule determines what a joker is worth when a hand is scored
type JokerRule string

// JokerRule constants
const (
	JokerWildcard JokerRule = "wildcard"
	JokerLowest   JokerRule = "lowest"
	JokerHighest  JokerRule = "highest"
	JokerNone     JokerRule = "none"
)

// ErrUnknownJokerRule is returned for a joker rule outside of the known set
var ErrUnknownJokerRule = errors.New("unknown joker rule")

// Valid returns an error if the rule is not known
// An empty rule is treated as JokerNone
func (j JokerRule) Valid() error {
	switch j {
	case JokerWildcard, JokerLowest, JokerHighest, JokerNone, "":
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownJokerRule, string(j))
}

// Composition describes what goes into a deck
type Composition struct {
	Suits        int `json:"suits" yaml:"suits"`
	RanksPerSuit int `json:"ranksPerSuit" yaml:"ranksPerSuit"`
	Jokers       int `json:"jokers" yaml:"jokers"`
}

// Standard is a 52-card deck without jokers
var Standard = Composition{Suits: 4, RanksPerSuit: 13}

// Size returns the number of cards the composition builds
func (c Composition) Size() int {
	return c.Suits*c.RanksPerSuit + c.Jokers
}

// Validate returns an error if a deck can't be built from the composition
func (c Composition) Validate() error {
	if c.Suits < 1 {
		return fmt.Errorf("suits must be at least 1, got %d", c.Suits)
	}

	if c.RanksPerSuit < 1 {
		return fmt.Errorf("ranks per suit must be at least 1, got %d", c.RanksPerSuit)
	}

	if c.Jokers < 0 {
		return fmt.Errorf("jokers cannot be negative, got %d", c.Jokers)
	}

	return nil
}

// Build returns the cards for the composition in build order: ranks 1..RanksPerSuit for
// every suit, followed by the jokers. The cards are not shuffled.
func Build(c Composition, rule JokerRule) ([]*Card, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := rule.Valid(); err != nil {
		return nil, err
	}

	cards := make([]*Card, 0, c.Size())
	for suit := 0; suit < c.Suits; suit++ {
		for rank := 1; rank <= c.RanksPerSuit; rank++ {
			cards = append(cards, NewCard(Suit(suit), rank))
		}
	}

	jokerValue := JokerValue(rule, c.RanksPerSuit)
	for i := 0; i < c.Jokers; i++ {
		cards = append(cards, NewJoker(i, jokerValue))
	}

	return cards, nil
}

// JokerValue is the value fixed on a joker at build time
// Wildcard and none jokers are 0 and get resolved at scoring time.
func JokerValue(rule JokerRule, ranksPerSuit int) int {
	switch rule {
	case JokerLowest:
		return 1
	case JokerHighest:
		return ranksPerSuit
	default:
		return 0
	}
}
