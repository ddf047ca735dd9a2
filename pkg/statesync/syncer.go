package statesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often watched sessions are re-read
const DefaultPollInterval = time.Second

const subscriptionBuffer = 64

// Subscription receives events for one instance, or every instance
type Subscription struct {
	// C is closed when the subscription is removed
	C <-chan Event

	ch         chan Event
	instanceID string
	types      map[EventType]bool
}

func (s *Subscription) wants(e Event) bool {
	if s.instanceID != "" && s.instanceID != e.InstanceID {
		return false
	}

	return len(s.types) == 0 || s.types[e.Type]
}

// Syncer writes sessions to a store and polls the store for changes
// Changes made by this process are announced right away. Changes made by anyone else
// sharing the store are picked up on the next poll.
type Syncer struct {
	store    Store
	interval time.Duration
	logger   logrus.FieldLogger

	mu            sync.Mutex
	snapshots     map[string]*Session
	subscriptions map[*Subscription]bool
}

// NewSyncer returns a syncer over the store
// An interval <= 0 uses DefaultPollInterval.
func NewSyncer(logger logrus.FieldLogger, store Store, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Syncer{
		store:         store,
		interval:      interval,
		logger:        logger,
		snapshots:     make(map[string]*Session),
		subscriptions: make(map[*Subscription]bool),
	}
}

// Publish writes the whole session to the store
// A failed write is logged and dropped.
func (s *Syncer) Publish(ctx context.Context, session *Session) {
	log := s.logger.WithField("instanceId", session.InstanceID)
	if err := s.store.Save(ctx, session); err != nil {
		log.WithError(err).Error("could not save session")
		return
	}

	normalized, err := normalize(session)
	if err != nil {
		log.WithError(err).Error("could not normalize session")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, watched := s.snapshots[session.InstanceID]; watched {
		s.apply(session.InstanceID, normalized)
	}
}

// Load reads a session, a failed read is treated as no session
func (s *Syncer) Load(ctx context.Context, instanceID string) (*Session, bool) {
	session, err := s.store.Load(ctx, instanceID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			s.logger.WithError(err).WithField("instanceId", instanceID).Error("could not load session")
		}

		return nil, false
	}

	return session, true
}

// Watch starts polling an instance
// The current record becomes the baseline, so only later changes are announced.
func (s *Syncer) Watch(ctx context.Context, instanceID string) {
	s.mu.Lock()
	_, watched := s.snapshots[instanceID]
	s.mu.Unlock()

	if watched {
		return
	}

	session, _ := s.Load(ctx, instanceID)

	s.mu.Lock()
	if _, watched := s.snapshots[instanceID]; !watched {
		s.snapshots[instanceID] = session
	}
	s.mu.Unlock()
}

// Unwatch stops polling an instance
func (s *Syncer) Unwatch(instanceID string) {
	s.mu.Lock()
	delete(s.snapshots, instanceID)
	s.mu.Unlock()
}

// Watching returns true if the instance is polled
func (s *Syncer) Watching(instanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, watched := s.snapshots[instanceID]
	return watched
}

// Subscribe returns a subscription to events of the given types
// An empty instanceID subscribes to every instance, and no types subscribes to every type.
// A subscriber that falls behind misses events rather than holding up the others.
func (s *Syncer) Subscribe(instanceID string, types ...EventType) *Subscription {
	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{
		C:          ch,
		ch:         ch,
		instanceID: instanceID,
		types:      make(map[EventType]bool),
	}

	for _, t := range types {
		sub.types[t] = true
	}

	s.mu.Lock()
	s.subscriptions[sub] = true
	s.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscription and closes its channel
func (s *Syncer) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscriptions[sub] {
		delete(s.subscriptions, sub)
		close(sub.ch)
	}
}

// Poll re-reads every watched instance once
func (s *Syncer) Poll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		session, ok := s.Load(ctx, id)
		if !ok {
			continue
		}

		s.mu.Lock()
		if _, watched := s.snapshots[id]; watched {
			s.apply(id, session)
		}
		s.mu.Unlock()
	}
}

// Run polls until the context is done
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("state sync started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// apply must be called with the lock held
// A session older than the snapshot is a read that lost a race with a newer publish, and is ignored.
func (s *Syncer) apply(instanceID string, session *Session) {
	if session.olderThan(s.snapshots[instanceID]) {
		s.logger.WithFields(logrus.Fields{
			"instanceId": instanceID,
			"version":    session.Version,
		}).Debug("ignoring stale session")
		return
	}

	events := Diff(s.snapshots[instanceID], session)
	s.snapshots[instanceID] = session

	for _, e := range events {
		for sub := range s.subscriptions {
			if !sub.wants(e) {
				continue
			}

			select {
			case sub.ch <- e:
			default:
				s.logger.WithFields(logrus.Fields{
					"instanceId": instanceID,
					"event":      e.Type,
				}).Warn("subscriber is full, dropping event")
			}
		}
	}
}
