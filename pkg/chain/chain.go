// Package chain is the boundary to the wallet that settles prize pools
// Local instance state is always the source of truth. Transactions are a record
// submitted alongside it and never block a game.
package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leviathan-server/pkg/prize"
)

// TransactionKind is what a transaction settles
type TransactionKind string

// TransactionKind constants
const (
	KindPayout TransactionKind = "payout"
	KindRefund TransactionKind = "refund"
)

// Transaction is an opaque description of a settlement
type Transaction struct {
	ID            string               `json:"id"`
	Kind          TransactionKind      `json:"kind"`
	InstanceID    string               `json:"instanceId"`
	Distributions []prize.Distribution `json:"distributions"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// NewTransaction returns a transaction with a fresh ID
func NewTransaction(kind TransactionKind, instanceID string, distributions []prize.Distribution) *Transaction {
	return &Transaction{
		ID:            uuid.New().String(),
		Kind:          kind,
		InstanceID:    instanceID,
		Distributions: distributions,
		CreatedAt:     time.Now(),
	}
}

// Receipt is returned once a transaction is accepted
type Receipt struct {
	Digest  string                 `json:"digest"`
	Effects map[string]interface{} `json:"effects,omitempty"`
}

// Submitter sends transactions to the wallet
type Submitter interface {
	Submit(ctx context.Context, tx *Transaction) (*Receipt, error)
}

// SubmitterFunc adapts a function to a Submitter
type SubmitterFunc func(ctx context.Context, tx *Transaction) (*Receipt, error)

// Submit calls f(ctx, tx)
func (f SubmitterFunc) Submit(ctx context.Context, tx *Transaction) (*Receipt, error) {
	return f(ctx, tx)
}

// LogSubmitter logs transactions instead of sending them anywhere
// The digest is the SHA-256 of the transaction's JSON.
type LogSubmitter struct {
	Logger logrus.FieldLogger
}

// Submit logs the transaction
func (l LogSubmitter) Submit(_ context.Context, tx *Transaction) (*Receipt, error) {
	b, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(b)
	receipt := &Receipt{
		Digest:  hex.EncodeToString(sum[:]),
		Effects: map[string]interface{}{"distributions": len(tx.Distributions)},
	}

	l.Logger.WithFields(logrus.Fields{
		"txId":       tx.ID,
		"kind":       tx.Kind,
		"instanceId": tx.InstanceID,
		"total":      prize.Total(tx.Distributions),
		"digest":     receipt.Digest,
	}).Info("transaction submitted")

	return receipt, nil
}

// SubmitAsync submits the transaction on its own goroutine and logs the outcome
// done, if not nil, is called with the result.
func SubmitAsync(ctx context.Context, logger logrus.FieldLogger, s Submitter, tx *Transaction, done func(*Receipt, error)) {
	go func() {
		receipt, err := s.Submit(ctx, tx)
		log := logger.WithFields(logrus.Fields{"txId": tx.ID, "instanceId": tx.InstanceID})
		if err != nil {
			log.WithError(err).Error("could not submit transaction")
		} else {
			log.WithField("digest", receipt.Digest).Debug("transaction accepted")
		}

		if done != nil {
			done(receipt, err)
		}
	}()
}
