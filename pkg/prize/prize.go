package prize

import (
	"errors"
	"fmt"
)

// Kind names who a share of the pool goes to
type Kind string

// Kind constants
const (
	KindWinner   Kind = "winner"
	KindCreator  Kind = "creator"
	KindPlatform Kind = "platform"
	KindRefund   Kind = "refund"
)

// PlatformRecipient is the recipient of the platform fee
const PlatformRecipient = "platform"

// ErrNegativePool is returned when the pool is below zero
var ErrNegativePool = errors.New("prize pool cannot be negative")

// ErrNoRecipients is returned when a pool without a winner has nobody to refund
var ErrNoRecipients = errors.New("no recipients for the prize pool")

// Rates are the fractions of the pool taken as fees when there is a winner
type Rates struct {
	Platform float64 `json:"platform" yaml:"platform"`
	Creator  float64 `json:"creator" yaml:"creator"`
}

// DefaultRates is a 5% platform fee and a 2% creator fee
var DefaultRates = Rates{Platform: 0.05, Creator: 0.02}

// Validate returns an error if the fees can't be taken from a pool
func (r Rates) Validate() error {
	if r.Platform < 0 || r.Creator < 0 {
		return fmt.Errorf("fee rates cannot be negative: platform=%v creator=%v", r.Platform, r.Creator)
	}

	if r.Platform+r.Creator > 1 {
		return fmt.Errorf("fee rates add up to more than the pool: platform=%v creator=%v", r.Platform, r.Creator)
	}

	return nil
}

// Distribution is a single payout from the pool
type Distribution struct {
	Kind      Kind    `json:"kind"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

// Distribute splits the pool
// With a winner, the platform and creator take their fees and the winner gets the rest.
// Without one, every participant gets an equal refund and no fees are taken. The last
// refund absorbs the rounding so the distributions always add up to the pool.
func Distribute(pool float64, winnerID, creatorID string, participants []string, rates Rates) ([]Distribution, error) {
	if pool < 0 {
		return nil, ErrNegativePool
	}

	if err := rates.Validate(); err != nil {
		return nil, err
	}

	if winnerID != "" {
		platformFee := pool * rates.Platform
		creatorFee := pool * rates.Creator

		return []Distribution{
			{Kind: KindWinner, Recipient: winnerID, Amount: pool - platformFee - creatorFee},
			{Kind: KindCreator, Recipient: creatorID, Amount: creatorFee},
			{Kind: KindPlatform, Recipient: PlatformRecipient, Amount: platformFee},
		}, nil
	}

	if len(participants) == 0 {
		if pool == 0 {
			return []Distribution{}, nil
		}

		return nil, ErrNoRecipients
	}

	share := pool / float64(len(participants))
	distributions := make([]Distribution, len(participants))
	paid := 0.0
	for i, id := range participants {
		amount := share
		if i == len(participants)-1 {
			amount = pool - paid
		}

		paid += amount
		distributions[i] = Distribution{Kind: KindRefund, Recipient: id, Amount: amount}
	}

	return distributions, nil
}

// Total returns the sum of the distributions
func Total(distributions []Distribution) float64 {
	total := 0.0
	for _, d := range distributions {
		total += d.Amount
	}

	return total
}

// Find returns the first distribution of the kind
func Find(distributions []Distribution, kind Kind) (Distribution, bool) {
	for _, d := range distributions {
		if d.Kind == kind {
			return d, true
		}
	}

	return Distribution{}, false
}
