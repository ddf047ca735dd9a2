package cardgame

import (
	"leviathan-server/pkg/deck"
)

// checkWinConditions ends the game if the win condition is met
// Ties always go to the lowest seat.
func (g *Game) checkWinConditions() {
	if g.phase != PhasePlaying {
		return
	}

	active := g.activePlayers()
	switch len(active) {
	case 0:
		g.finish(nil)
		return
	case 1:
		g.finish(active[0])
		return
	}

	switch g.config.WinCondition {
	case WinEmptyHand:
		for _, p := range active {
			if len(p.hand) == 0 {
				g.finish(p)
				return
			}
		}
	case WinHighestCard:
		if g.noMorePlays(active) {
			g.finish(g.highestCard(active))
		}
	case WinClosestSum:
		if g.noMorePlays(active) {
			g.finish(g.closestSum(active))
		}
	}
}

// noMorePlays is true once the deck is exhausted or every active player passed in a row
func (g *Game) noMorePlays(active []*Player) bool {
	return g.deck.CardsLeft() == 0 || g.consecutivePasses >= len(active)
}

// DetermineWinner force-ends the game and returns the winner's ID
// An empty_hand game goes to the player holding the fewest cards.
func (g *Game) DetermineWinner() string {
	if g.phase == PhaseFinished {
		return g.WinnerID()
	}

	active := g.activePlayers()

	var winner *Player
	switch {
	case len(active) == 1:
		winner = active[0]
	case g.config.WinCondition == WinEmptyHand:
		for _, p := range active {
			if winner == nil || len(p.hand) < len(winner.hand) {
				winner = p
			}
		}
	case g.config.WinCondition == WinHighestCard:
		winner = g.highestCard(active)
	case g.config.WinCondition == WinClosestSum:
		winner = g.closestSum(active)
	}

	g.finish(winner)
	return g.WinnerID()
}

// highestCard returns the player holding the most valuable single card
func (g *Game) highestCard(active []*Player) *Player {
	var winner *Player
	best := -1
	for _, p := range active {
		if len(p.hand) == 0 {
			continue
		}

		if v := g.bestCardValue(p.hand); v > best {
			best = v
			winner = p
		}
	}

	return winner
}

// closestSum returns the player whose hand is closest to the target without going over
// A busted hand never wins, no matter how far the others are from the target.
func (g *Game) closestSum(active []*Player) *Player {
	target := g.config.Target()

	var winner *Player
	bestDistance := -1
	for _, p := range active {
		value := g.CalculateHandValue(p.hand, target)
		if value > target {
			continue
		}

		if distance := target - value; bestDistance < 0 || distance < bestDistance {
			bestDistance = distance
			winner = p
		}
	}

	return winner
}

// bestCardValue returns the value of the most valuable card in the hand
func (g *Game) bestCardValue(hand deck.Hand) int {
	maxRegular, hasRegular := maxRegularValue(hand)

	best := 0
	for _, c := range hand {
		v := c.Value
		if c.IsJoker {
			switch g.config.JokerRule {
			case deck.JokerLowest:
				v = 1
			case deck.JokerHighest:
				v = 1
				if hasRegular {
					v = maxRegular
				}
			case deck.JokerWildcard:
				v = g.config.Deck.RanksPerSuit
			default:
				v = 0
			}
		}

		if v > best {
			best = v
		}
	}

	return best
}

// CalculateHandValue sums the hand under the game's joker rule
// A wildcard joker takes the value that gets closest to target, or 1 without a target (target <= 0).
func (g *Game) CalculateHandValue(hand deck.Hand, target int) int {
	return HandValue(hand, g.config.JokerRule, g.config.Deck.RanksPerSuit, target)
}

// HandValue sums a hand of cards
// Regular cards count their value. Jokers count 1 under the lowest rule, the highest regular card in
// the hand (or 1) under the highest rule, and nothing under the none rule. Wildcards are resolved in
// order, each taking the value that best approaches target while leaving at least 1 for the jokers after it.
func HandValue(hand deck.Hand, rule deck.JokerRule, ranksPerSuit int, target int) int {
	sum := 0
	jokers := 0
	for _, c := range hand {
		if c.IsJoker {
			jokers++
			continue
		}

		sum += c.Value
	}

	if jokers == 0 {
		return sum
	}

	maxRegular, hasRegular := maxRegularValue(hand)
	for remaining := jokers - 1; remaining >= 0; remaining-- {
		switch rule {
		case deck.JokerLowest:
			sum++
		case deck.JokerHighest:
			if hasRegular {
				sum += maxRegular
			} else {
				sum++
			}
		case deck.JokerWildcard:
			if target <= 0 {
				sum++
				continue
			}

			v := target - sum - remaining
			if v < 1 {
				v = 1
			}

			if ranksPerSuit > 0 && v > ranksPerSuit {
				v = ranksPerSuit
			}

			sum += v
		}
	}

	return sum
}

func maxRegularValue(hand deck.Hand) (int, bool) {
	best, found := 0, false
	for _, c := range hand {
		if c.IsJoker {
			continue
		}

		if !found || c.Value > best {
			best = c.Value
			found = true
		}
	}

	return best, found
}
