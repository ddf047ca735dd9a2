package deck

import "leviathan-server/internal/rng"

// Shuffle returns a new slice holding the cards in an order determined by seed
// It is a Fisher-Yates shuffle from the last index down to 1, with each swap index drawn from a
// linear-congruential generator. The same seed and input always yield the same order.
func Shuffle(cards []*Card, seed int64) []*Card {
	shuffled := make([]*Card, len(cards))
	copy(shuffled, cards)

	r := rng.NewLCG(seed)
	for j := len(shuffled) - 1; j > 0; j-- {
		i := r.Intn(j + 1)

		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
