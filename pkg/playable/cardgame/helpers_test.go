package cardgame

import "leviathan-server/pkg/deck"

func cardsString(cards []*deck.Card) string {
	return deck.CardsToString(cards)
}
