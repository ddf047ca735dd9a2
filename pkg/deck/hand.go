package deck

// Hand represents an ordered collection of cards
type Hand []*Card

func (h Hand) Len() int {
	return len(h)
}

func (h Hand) Less(i, j int) bool {
	if h[i].IsJoker != h[j].IsJoker {
		return !h[i].IsJoker
	}

	if h[i].Suit != h[j].Suit {
		return h[i].Suit < h[j].Suit
	}

	return h[i].Rank < h[j].Rank
}

func (h Hand) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// Find returns the card with the id and its index, or nil and -1
func (h Hand) Find(id string) (*Card, int) {
	for i, c := range h {
		if c.ID == id {
			return c, i
		}
	}

	return nil, -1
}

// HasCard returns true if the hand contains the card with the id
func (h Hand) HasCard(id string) bool {
	_, i := h.Find(id)
	return i >= 0
}

// Remove takes the card with the id out of the hand
// The remaining cards keep their order
func (h *Hand) Remove(id string) (*Card, bool) {
	card, i := h.Find(id)
	if i < 0 {
		return nil, false
	}

	hand := *h
	copy(hand[i:], hand[i+1:])
	hand[len(hand)-1] = nil
	*h = hand[:len(hand)-1]

	return card, true
}

// Replace puts card at the index of the card with the id and returns the card it replaced
func (h Hand) Replace(id string, card *Card) (*Card, bool) {
	old, i := h.Find(id)
	if i < 0 {
		return nil, false
	}

	h[i] = card
	return old, true
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
