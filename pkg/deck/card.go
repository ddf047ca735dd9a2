package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
// Decks can be built with any number of suits, the first five have names
type Suit int

// suit constants
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
	Stars
)

var suitNames = []string{"clubs", "diamonds", "hearts", "spades", "stars"}
var suitSymbols = []string{"♣", "♢", "♡", "♠", "☆"}
var suitLetters = "cdhst"

// String returns the name of the suit
func (s Suit) String() string {
	if s >= 0 && int(s) < len(suitNames) {
		return suitNames[s]
	}

	return fmt.Sprintf("suit-%d", int(s))
}

// Card is an individual playing card
// A card is immutable once built. Moving it between containers must never copy it.
type Card struct {
	ID      string `json:"id"`
	Suit    Suit   `json:"suit"`
	Rank    int    `json:"rank"`
	IsJoker bool   `json:"isJoker"`
	// Value is the rank for ranked cards. For jokers it is fixed by the joker rule at build time,
	// with wildcard and none jokers at 0 to be resolved when a hand is scored.
	Value int `json:"value"`
	// IsHidden marks a placeholder that stands in for a card the viewer may not see
	IsHidden bool `json:"isHidden,omitempty"`
}

// NewCard returns a ranked card
func NewCard(suit Suit, rank int) *Card {
	return &Card{
		ID:    cardID(suit, rank),
		Suit:  suit,
		Rank:  rank,
		Value: rank,
	}
}

// NewJoker returns the n-th joker of a deck with the given value
func NewJoker(n int, value int) *Card {
	return &Card{
		ID:      fmt.Sprintf("joker-%d", n),
		IsJoker: true,
		Value:   value,
	}
}

// Hidden returns a placeholder card for position i of a hidden container
func Hidden(i int) *Card {
	return &Card{
		ID:       fmt.Sprintf("hidden-%d", i),
		IsHidden: true,
	}
}

func cardID(suit Suit, rank int) string {
	return fmt.Sprintf("%d-%d", rank, int(suit))
}

func (c *Card) String() string {
	if c.IsHidden {
		return "??"
	}

	if c.IsJoker {
		return "JK"
	}

	symbol := strconv.Itoa(int(c.Suit))
	if c.Suit >= 0 && int(c.Suit) < len(suitSymbols) {
		symbol = suitSymbols[c.Suit]
	}

	return fmt.Sprintf("%d%s", c.Rank, symbol)
}

// Equal returns true if the cards share an identity
func (c *Card) Equal(card *Card) bool {
	return card != nil && c.ID == card.ID
}

var cardRx = regexp.MustCompile(`(?i)^(?:([0-9]+)([cdhst])|jk)\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where suit in [cdhst], or "jk" for a joker.
// Jokers are numbered by the caller through jokerIndex.
// This is intended for tests, and panics on malformed input.
func CardFromString(s string, jokerIndex ...int) *Card {
	if s == "" {
		return nil
	}

	match := cardRx.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	if match[1] == "" {
		n := 0
		if len(jokerIndex) == 1 {
			n = jokerIndex[0]
		}

		return NewJoker(n, 0)
	}

	rank, err := strconv.Atoi(match[1])
	if err != nil {
		panic(fmt.Sprintf("could not parse card `%s`: %v", s, err))
	}

	suit := Suit(strings.Index(suitLetters, strings.ToLower(match[2])))
	return NewCard(suit, rank)
}

// CardsFromString will returns a slice of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]*Card, len(cardStrings))
	jokers := 0
	for i, card := range cardStrings {
		cards[i] = CardFromString(card, jokers)
		if cards[i].IsJoker {
			jokers++
		}
	}

	return cards
}

// CardToString converts a card (13 of spades) to a string (13s)
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	if card.IsJoker {
		return "jk"
	}

	if card.Suit >= 0 && int(card.Suit) < len(suitLetters) {
		return fmt.Sprintf("%d%c", card.Rank, suitLetters[card.Suit])
	}

	return card.ID
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}
