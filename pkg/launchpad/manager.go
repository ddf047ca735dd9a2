// Package launchpad keeps the registry of templates and the instances played from them
package launchpad

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leviathan-server/internal/util"
	"leviathan-server/pkg/chain"
	"leviathan-server/pkg/playable"
	"leviathan-server/pkg/playable/cardgame"
	"leviathan-server/pkg/prize"
	"leviathan-server/pkg/statesync"
)

// Publisher receives the full session of an instance after every change
type Publisher interface {
	Publish(ctx context.Context, session *statesync.Session)
}

// Ledger is the durable record of finished instances
type Ledger interface {
	RecordFinished(ctx context.Context, instance *Instance) error
	RecordTemplateStats(ctx context.Context, template *Template) error
}

// Options are the collaborators of a manager, all of them optional
type Options struct {
	Logger    logrus.FieldLogger
	Publisher Publisher
	Ledger    Ledger
	Submitter chain.Submitter
	Rates     *prize.Rates
	// Seed returns the shuffle seed of each new game, nil for a random seed
	Seed func() int64
}

// Manager is the registry of templates and instances
// It is safe for concurrent use.
type Manager struct {
	logger    logrus.FieldLogger
	publisher Publisher
	ledger    Ledger
	submitter chain.Submitter
	rates     prize.Rates
	seed      func() int64

	mu        sync.RWMutex
	templates map[string]*Template
	instances map[string]*Instance
	disposed  bool

	submissions sync.WaitGroup
}

// pending is the work left after the lock is released
type pending struct {
	// publish is set when this caller is the one sending the instance's sessions
	publish  *Instance
	finished *Instance
	template *Template
	tx       *chain.Transaction
}

// New returns an empty manager
func New(opts Options) *Manager {
	m := &Manager{
		logger:    opts.Logger,
		publisher: opts.Publisher,
		ledger:    opts.Ledger,
		submitter: opts.Submitter,
		rates:     prize.DefaultRates,
		seed:      opts.Seed,
		templates: make(map[string]*Template),
		instances: make(map[string]*Instance),
	}

	if m.logger == nil {
		m.logger = logrus.StandardLogger()
	}

	if opts.Rates != nil {
		m.rates = *opts.Rates
	}

	return m
}

// CreateTemplate registers a rule configuration
func (m *Manager) CreateTemplate(ctx context.Context, name string, config cardgame.Config, creatorID string) (*Template, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	if err := config.Validate(); err != nil {
		return nil, gameError{err: err}
	}

	t := &Template{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creatorID,
		Config:    config,
		Created:   time.Now(),
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil, ErrDisposed
	}

	m.templates[t.ID] = t
	snapshot := t.clone()
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{"templateId": t.ID, "creatorId": creatorID}).Info("template created")
	m.flush(ctx, &pending{template: snapshot})

	return snapshot, nil
}

// CreateInstance opens an instance of the template with no players
func (m *Manager) CreateInstance(ctx context.Context, templateID, creatorID string, entryFee float64) (*Instance, error) {
	if entryFee < 0 {
		return nil, ErrNegativeFee
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil, ErrDisposed
	}

	if _, ok := m.templates[templateID]; !ok {
		m.mu.Unlock()
		return nil, ErrTemplateNotFound
	}

	inst := &Instance{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		CreatorID:  creatorID,
		EntryFee:   entryFee,
		Status:     StatusWaiting,
		Seats:      make([]*Seat, 0),
		Log:        make([]*playable.LogMessage, 0),
		Created:    time.Now(),
	}

	m.instances[inst.ID] = inst
	p := &pending{}
	m.stage(inst, p)
	snapshot := inst.clone()
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{"instanceId": inst.ID, "templateId": templateID}).Info("instance created")
	m.flush(ctx, p)

	return snapshot, nil
}

// JoinInstance seats a player
// A player without a name is given a random one.
func (m *Manager) JoinInstance(ctx context.Context, instanceID, playerID, name string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusWaiting {
			return ErrNotWaiting
		}

		if s, _ := inst.seat(playerID); s != nil {
			return ErrAlreadyJoined
		}

		if len(inst.Seats) >= m.templates[inst.TemplateID].Config.NumPlayers {
			return ErrInstanceFull
		}

		if name == "" {
			name = util.GetRandomName()
		}

		inst.Seats = append(inst.Seats, &Seat{PlayerID: playerID, Name: name})
		inst.Log = append(inst.Log, playable.SimpleLogMessage(playerID, "{} joined as %s", name))
		return nil
	})
}

// ConfirmPayment marks the player's entry fee as paid
// The instance starts once it is full and everyone has paid.
func (m *Manager) ConfirmPayment(ctx context.Context, instanceID, playerID string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusWaiting {
			return ErrNotWaiting
		}

		seat, _ := inst.seat(playerID)
		if seat == nil {
			return ErrNotJoined
		}

		if seat.HasPaid {
			return ErrAlreadyPaid
		}

		seat.HasPaid = true
		inst.PrizePool += inst.EntryFee

		if inst.allPaid() && len(inst.Seats) == m.templates[inst.TemplateID].Config.NumPlayers {
			if err := m.start(inst); err != nil {
				m.logger.WithError(err).WithField("instanceId", inst.ID).Error("could not start a full instance")
				inst.Log = append(inst.Log, playable.SimpleLogMessage("", "The game could not be started: %s", err.Error()))
			}
		}

		return nil
	})
}

// StartInstance deals a fresh game to the seated players
func (m *Manager) StartInstance(ctx context.Context, instanceID string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		return m.start(inst)
	})
}

// start must be called with the lock held
func (m *Manager) start(inst *Instance) error {
	if inst.Status != StatusWaiting {
		return ErrNotWaiting
	}

	if len(inst.Seats) < 2 {
		return ErrNotEnoughPlayers
	}

	var seed int64
	if m.seed != nil {
		seed = m.seed()
	}

	log := m.logger.WithField("instanceId", inst.ID)
	game, err := cardgame.NewGame(log, inst.playerIDs(), m.templates[inst.TemplateID].Config, seed)
	if err != nil {
		return gameError{err: err}
	}

	if err := game.Initialize(); err != nil {
		return gameError{err: err}
	}

	now := time.Now()
	inst.game = game
	inst.Status = StatusPlaying
	inst.Started = &now
	inst.drainLog()

	log.WithField("seed", game.Seed()).Info("instance started")
	return nil
}

// ExecuteGameAction plays an action and returns the game as the acting player sees it
// The instance is finished as soon as the game is.
func (m *Manager) ExecuteGameAction(ctx context.Context, instanceID string, action cardgame.Action) (*cardgame.GameState, error) {
	var state *cardgame.GameState
	err := m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusPlaying || inst.game == nil {
			return ErrNotPlaying
		}

		if err := inst.game.ExecuteAction(action); err != nil {
			return gameError{err: err}
		}

		m.afterAction(inst, action, p)
		state = inst.game.GetVisibleState(action.PlayerID)
		return nil
	})

	return state, err
}

// PlayerAction plays a client payload through the game's Playable interface
func (m *Manager) PlayerAction(ctx context.Context, instanceID, playerID string, payload *playable.PayloadIn) (*playable.Response, error) {
	var res *playable.Response
	err := m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusPlaying || inst.game == nil {
			return ErrNotPlaying
		}

		var game playable.Playable = inst.game
		r, _, err := game.Action(playerID, payload)
		if err != nil {
			return gameError{err: err}
		}

		if a := inst.game.LastAction(); a != nil {
			m.afterAction(inst, *a, p)
		}

		res = r
		res.Context = payload.Context
		return nil
	})

	return res, err
}

// afterAction must be called with the lock held
func (m *Manager) afterAction(inst *Instance, action cardgame.Action, p *pending) {
	inst.moves = append(inst.moves, moveRecord(action))
	inst.drainLog()

	if details, over := inst.game.GetEndOfGameDetails(); over {
		m.finish(inst, details.WinnerID, p)
	}
}

// FinishInstance ends a game that is being played
// winnerID is empty when nobody won, and the paid players are refunded. The caller's
// winner stands even when the game itself hasn't finished.
func (m *Manager) FinishInstance(ctx context.Context, instanceID, winnerID string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusPlaying {
			return ErrNotPlaying
		}

		if winnerID != "" {
			if s, _ := inst.seat(winnerID); s == nil {
				return ErrNotJoined
			}
		}

		m.finish(inst, winnerID, p)
		return nil
	})
}

// LeaveInstance removes a player before the game starts and refunds their entry fee
func (m *Manager) LeaveInstance(ctx context.Context, instanceID, playerID string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.Status != StatusWaiting {
			return ErrNotWaiting
		}

		seat, idx := inst.seat(playerID)
		if seat == nil {
			return ErrNotJoined
		}

		if seat.HasPaid {
			inst.PrizePool -= inst.EntryFee
		}

		inst.Seats = append(inst.Seats[:idx], inst.Seats[idx+1:]...)
		inst.Log = append(inst.Log, playable.SimpleLogMessage(playerID, "{} left"))
		return nil
	})
}

// CancelInstance lets the creator call off an instance that hasn't started
// Every paid player is refunded in full.
func (m *Manager) CancelInstance(ctx context.Context, instanceID, requesterID string) error {
	return m.mutate(ctx, instanceID, func(inst *Instance, p *pending) error {
		if inst.CreatorID != requesterID {
			return ErrNotCreator
		}

		if inst.Status != StatusWaiting {
			return ErrNotWaiting
		}

		distributions, err := prize.Distribute(inst.PrizePool, "", inst.CreatorID, inst.paidPlayerIDs(), m.rates)
		if err != nil {
			return err
		}

		now := time.Now()
		inst.Status = StatusCancelled
		inst.Finished = &now
		inst.Distributions = distributions
		inst.Log = append(inst.Log, playable.SimpleLogMessage("", "The instance was cancelled"))

		if len(distributions) > 0 {
			p.tx = chain.NewTransaction(chain.KindRefund, inst.ID, distributions)
		}

		m.logger.WithField("instanceId", inst.ID).Info("instance cancelled")
		return nil
	})
}

// finish must be called with the lock held
func (m *Manager) finish(inst *Instance, winnerID string, p *pending) {
	log := m.logger.WithFields(logrus.Fields{"instanceId": inst.ID, "winnerId": winnerID})

	participants := inst.paidPlayerIDs()
	distributions, err := prize.Distribute(inst.PrizePool, winnerID, inst.CreatorID, participants, m.rates)
	if err != nil {
		log.WithError(err).Error("could not distribute the prize pool")
	}

	now := time.Now()
	inst.Status = StatusFinished
	inst.Finished = &now
	inst.WinnerID = winnerID
	inst.Distributions = distributions
	if winnerID != "" {
		inst.Winnings = inst.PrizePool * winningsRate
	}

	t := m.templates[inst.TemplateID]
	t.TotalGames++
	t.TotalStaked += inst.PrizePool

	p.finished = inst.clone()
	p.template = t.clone()

	if len(distributions) > 0 {
		kind := chain.KindPayout
		if winnerID == "" {
			kind = chain.KindRefund
		}

		p.tx = chain.NewTransaction(kind, inst.ID, distributions)
	}

	log.WithField("pool", inst.PrizePool).Info("instance finished")
}

// mutate runs fn on the instance under the write lock, then publishes the result
// fn must leave the instance untouched when it returns an error.
func (m *Manager) mutate(ctx context.Context, instanceID string, fn func(inst *Instance, p *pending) error) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}

	inst, ok := m.instances[instanceID]
	if !ok {
		m.mu.Unlock()
		return ErrInstanceNotFound
	}

	p := &pending{}
	if err := fn(inst, p); err != nil {
		m.mu.Unlock()
		return err
	}

	m.stage(inst, p)
	m.mu.Unlock()

	m.flush(ctx, p)
	return nil
}

// stage queues the instance's session and claims pending submissions, it must be called with the lock held
// Only one caller at a time publishes an instance, so the store never goes back to an older session.
func (m *Manager) stage(inst *Instance, p *pending) {
	inst.version++

	if p.tx != nil && m.submitter != nil {
		m.submissions.Add(1)
	}

	if m.publisher == nil {
		return
	}

	session := m.session(inst)
	if session == nil {
		return
	}

	inst.outbox = session
	if !inst.publishing {
		inst.publishing = true
		p.publish = inst
	}
}

// publish sends the instance's latest session until nothing newer is waiting
func (m *Manager) publish(ctx context.Context, inst *Instance) {
	for {
		m.mu.Lock()
		session := inst.outbox
		inst.outbox = nil
		if session == nil {
			inst.publishing = false
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		m.publisher.Publish(ctx, session)
	}
}

// session must be called with the lock held
func (m *Manager) session(inst *Instance) *statesync.Session {
	session, err := inst.session()
	if err != nil {
		m.logger.WithError(err).WithField("instanceId", inst.ID).Error("could not build session")
		return nil
	}

	return session
}

// flush publishes and records what a change left behind
func (m *Manager) flush(ctx context.Context, p *pending) {
	if p.publish != nil {
		m.publish(context.WithoutCancel(ctx), p.publish)
	}

	if m.ledger != nil {
		if p.finished != nil {
			if err := m.ledger.RecordFinished(ctx, p.finished); err != nil {
				m.logger.WithError(err).WithField("instanceId", p.finished.ID).Error("could not record finished instance")
			}
		}

		if p.template != nil {
			if err := m.ledger.RecordTemplateStats(ctx, p.template); err != nil {
				m.logger.WithError(err).WithField("templateId", p.template.ID).Error("could not record template stats")
			}
		}
	}

	// the submission was counted by stage
	if p.tx != nil && m.submitter != nil {
		chain.SubmitAsync(context.Background(), m.logger, m.submitter, p.tx, func(*chain.Receipt, error) {
			m.submissions.Done()
		})
	}
}

// Template returns a snapshot of the template
func (m *Manager) Template(id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	return t.clone(), nil
}

// Templates returns snapshots of every template, oldest first
func (m *Manager) Templates() []*Template {
	m.mu.RLock()
	defer m.mu.RUnlock()

	templates := make([]*Template, 0, len(m.templates))
	for _, t := range m.templates {
		templates = append(templates, t.clone())
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Created.Before(templates[j].Created)
	})

	return templates
}

// Instance returns a snapshot of the instance
func (m *Manager) Instance(id string) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	return inst.clone(), nil
}

// Instances returns snapshots of the instances with the status, or all of them if status is empty
func (m *Manager) Instances(status Status) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instances := make([]*Instance, 0)
	for _, inst := range m.instances {
		if status == "" || inst.Status == status {
			instances = append(instances, inst.clone())
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Created.Before(instances[j].Created)
	})

	return instances
}

// VisibleState returns the game as the player sees it
func (m *Manager) VisibleState(instanceID, playerID string) (*cardgame.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	if inst.game == nil {
		return nil, ErrNotPlaying
	}

	return inst.game.GetVisibleState(playerID), nil
}

// Dispose drops every template and instance and waits for pending transactions
// Every later call returns ErrDisposed.
func (m *Manager) Dispose() {
	m.mu.Lock()
	m.disposed = true
	m.templates = make(map[string]*Template)
	m.instances = make(map[string]*Instance)
	m.mu.Unlock()

	m.submissions.Wait()
	m.logger.Info("manager disposed")
}
