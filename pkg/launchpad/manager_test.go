package launchpad

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leviathan-server/pkg/chain"
	"leviathan-server/pkg/deck"
	"leviathan-server/pkg/playable"
	"leviathan-server/pkg/playable/cardgame"
	"leviathan-server/pkg/prize"
	"leviathan-server/pkg/statesync"
)

var cbg = context.Background()

type recordingPublisher struct {
	mu       sync.Mutex
	sessions []*statesync.Session
}

func (r *recordingPublisher) Publish(_ context.Context, s *statesync.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

func (r *recordingPublisher) last() *statesync.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[len(r.sessions)-1]
}

// gatedPublisher saves sessions to a store, holding the first publish made while armed until the gate opens
type gatedPublisher struct {
	store   *statesync.MemoryStore
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	gate    chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{
		store:   statesync.NewMemoryStore(),
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (g *gatedPublisher) Publish(ctx context.Context, s *statesync.Session) {
	if g.armed.Load() {
		g.once.Do(func() {
			close(g.entered)
			<-g.gate
		})
	}

	_ = g.store.Save(ctx, s)
}

type recordingLedger struct {
	mu        sync.Mutex
	finished  []*Instance
	templates []*Template
}

func (r *recordingLedger) RecordFinished(_ context.Context, i *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, i)
	return nil
}

func (r *recordingLedger) RecordTemplateStats(_ context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, t)
	return nil
}

type testManager struct {
	*Manager
	publisher *recordingPublisher
	ledger    *recordingLedger
	txs       chan *chain.Transaction
}

func newTestManager() *testManager {
	tm := &testManager{
		publisher: &recordingPublisher{},
		ledger:    &recordingLedger{},
		txs:       make(chan *chain.Transaction, 10),
	}

	tm.Manager = New(Options{
		Logger:    logrus.StandardLogger(),
		Publisher: tm.publisher,
		Ledger:    tm.ledger,
		Submitter: chain.SubmitterFunc(func(ctx context.Context, tx *chain.Transaction) (*chain.Receipt, error) {
			tm.txs <- tx
			return &chain.Receipt{Digest: tx.ID}, nil
		}),
		Seed: func() int64 { return 1 },
	})

	return tm
}

func scenarioConfig() cardgame.Config {
	return cardgame.Config{
		NumPlayers:         2,
		WinCondition:       cardgame.WinHighestCard,
		InitialCardsInHand: 5,
		Deck:               deck.Composition{Suits: 4, RanksPerSuit: 13},
		CardsDrawnPerTurn:  1,
		CardsPlayedPerTurn: 1,
		JokerRule:          deck.JokerNone,
		AllowedActions:     []cardgame.ActionType{cardgame.ActionDraw, cardgame.ActionPlay, cardgame.ActionFold},
	}
}

func (tm *testManager) waitingInstance(t *testing.T, entryFee float64) *Instance {
	t.Helper()

	tpl, err := tm.CreateTemplate(cbg, "Highest Card", scenarioConfig(), "creator")
	require.NoError(t, err)

	inst, err := tm.CreateInstance(cbg, tpl.ID, "creator", entryFee)
	require.NoError(t, err)
	return inst
}

func (tm *testManager) playingInstance(t *testing.T) *Instance {
	t.Helper()

	inst := tm.waitingInstance(t, 1.0)
	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, tm.JoinInstance(cbg, inst.ID, id, ""))
		require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, id))
	}

	inst, err := tm.Instance(inst.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPlaying, inst.Status)
	return inst
}

func TestManager_EndToEnd(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1.0)
	assert.Equal(t, StatusWaiting, inst.Status)
	assert.Empty(t, inst.Seats)

	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", "Alice"))
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p2", "Bob"))
	require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, "p1"))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusWaiting, inst.Status)
	assert.Equal(t, 1.0, inst.PrizePool)

	require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, "p2"))
	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusPlaying, inst.Status, "a full, paid instance starts itself")
	assert.Equal(t, 2.0, inst.PrizePool)
	assert.NotNil(t, inst.Started)

	state, err := tm.VisibleState(inst.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 42, state.DeckSize)
	assert.Len(t, state.Players[0].Hand, 5)
	assert.Equal(t, 5, state.Players[1].HandSize)
	assert.True(t, state.Players[1].Hand[0].IsHidden)

	card := state.Players[0].Hand[0].ID
	state, err = tm.ExecuteGameAction(cbg, inst.ID, cardgame.Action{PlayerID: "p1", Move: cardgame.Play{CardID: card}})
	require.NoError(t, err)
	assert.Equal(t, "p2", state.CurrentPlayerID)

	_, err = tm.ExecuteGameAction(cbg, inst.ID, cardgame.Action{PlayerID: "p2", Move: cardgame.Fold{}})
	require.NoError(t, err)

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusFinished, inst.Status)
	assert.Equal(t, "p1", inst.WinnerID)
	assert.InDelta(t, 1.9, inst.Winnings, 1e-9)
	assert.NotNil(t, inst.Finished)

	winner, _ := prize.Find(inst.Distributions, prize.KindWinner)
	creator, _ := prize.Find(inst.Distributions, prize.KindCreator)
	platform, _ := prize.Find(inst.Distributions, prize.KindPlatform)
	assert.InDelta(t, 1.86, winner.Amount, 1e-9)
	assert.InDelta(t, 0.04, creator.Amount, 1e-9)
	assert.InDelta(t, 0.10, platform.Amount, 1e-9)
	assert.Equal(t, "creator", creator.Recipient)

	tpl, _ := tm.Template(inst.TemplateID)
	assert.Equal(t, 1, tpl.TotalGames)
	assert.Equal(t, 2.0, tpl.TotalStaked)

	session := tm.publisher.last()
	assert.Equal(t, statesync.StatusFinished, session.Status)
	assert.Equal(t, []string{"p1", "p2"}, session.Participants)
	assert.Equal(t, "p1", session.Winner)
	require.Len(t, session.Moves, 2)
	assert.Equal(t, "play", session.Moves[0].Type)
	assert.Equal(t, card, session.Moves[0].CardID)
	assert.Equal(t, "fold", session.Moves[1].Type)
	assert.NotEmpty(t, session.GameState)

	tm.Dispose()
	require.Len(t, tm.txs, 1)
	tx := <-tm.txs
	assert.Equal(t, chain.KindPayout, tx.Kind)
	assert.Equal(t, inst.ID, tx.InstanceID)

	require.Len(t, tm.ledger.finished, 1)
	assert.Equal(t, "p1", tm.ledger.finished[0].WinnerID)
}

func TestManager_CreateInstance(t *testing.T) {
	tm := newTestManager()

	inst, err := tm.CreateInstance(cbg, "nope", "creator", 1)
	assert.Nil(t, inst)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "template not found")

	tpl, err := tm.CreateTemplate(cbg, "Bad", cardgame.Config{}, "creator")
	assert.Nil(t, tpl)
	assert.True(t, IsUserError(err))

	_, err = tm.CreateTemplate(cbg, "", scenarioConfig(), "creator")
	assert.Equal(t, ErrMissingName, err)

	tpl, err = tm.CreateTemplate(cbg, "Good", scenarioConfig(), "creator")
	require.NoError(t, err)

	_, err = tm.CreateInstance(cbg, tpl.ID, "creator", -1)
	assert.Equal(t, ErrNegativeFee, err)

	assert.Len(t, tm.Templates(), 1)
	assert.Len(t, tm.ledger.templates, 1)
}

func TestManager_JoinInstance(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)

	assert.Equal(t, ErrInstanceNotFound, tm.JoinInstance(cbg, "nope", "p1", ""))
	assert.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	assert.Equal(t, ErrAlreadyJoined, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	assert.NoError(t, tm.JoinInstance(cbg, inst.ID, "p2", "Bob"))
	assert.Equal(t, ErrInstanceFull, tm.JoinInstance(cbg, inst.ID, "p3", ""))

	inst, _ = tm.Instance(inst.ID)
	assert.NotEmpty(t, inst.Seats[0].Name, "a random name is picked")
	assert.Equal(t, "Bob", inst.Seats[1].Name)
	assert.False(t, inst.Seats[0].HasPaid)

	assert.Equal(t, []string{"p1", "p2"}, tm.publisher.last().Participants)
}

func TestManager_ConfirmPayment(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 0.5)

	assert.Equal(t, ErrNotJoined, tm.ConfirmPayment(cbg, inst.ID, "p1"))
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	assert.NoError(t, tm.ConfirmPayment(cbg, inst.ID, "p1"))
	assert.Equal(t, ErrAlreadyPaid, tm.ConfirmPayment(cbg, inst.ID, "p1"))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, 0.5, inst.PrizePool)
	assert.Equal(t, StatusWaiting, inst.Status, "not full yet")
}

func TestManager_LeaveInstance(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)

	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, "p1"))
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p2", ""))

	assert.Equal(t, ErrNotJoined, tm.LeaveInstance(cbg, inst.ID, "p3"))
	assert.NoError(t, tm.LeaveInstance(cbg, inst.ID, "p1"))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, 0.0, inst.PrizePool)
	require.Len(t, inst.Seats, 1)
	assert.Equal(t, "p2", inst.Seats[0].PlayerID)

	playing := tm.playingInstance(t)
	assert.Equal(t, ErrNotWaiting, tm.LeaveInstance(cbg, playing.ID, "p1"))
	assert.Equal(t, ErrNotWaiting, tm.JoinInstance(cbg, playing.ID, "p3", ""))
}

func TestManager_StartInstance(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 0)

	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	assert.Equal(t, ErrNotEnoughPlayers, tm.StartInstance(cbg, inst.ID))

	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p2", ""))
	assert.NoError(t, tm.StartInstance(cbg, inst.ID), "unpaid players can be started by hand")
	assert.Equal(t, ErrNotWaiting, tm.StartInstance(cbg, inst.ID))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusPlaying, inst.Status)
	assert.NotEmpty(t, inst.Log)
}

func TestManager_ExecuteGameAction_Rejected(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)

	_, err := tm.ExecuteGameAction(cbg, inst.ID, cardgame.Action{PlayerID: "p1", Move: cardgame.Draw{}})
	assert.Equal(t, ErrNotPlaying, err)

	_, err = tm.VisibleState(inst.ID, "p1")
	assert.Equal(t, ErrNotPlaying, err)

	inst = tm.playingInstance(t)
	before, _ := tm.VisibleState(inst.ID, "p1")

	state, err := tm.ExecuteGameAction(cbg, inst.ID, cardgame.Action{PlayerID: "p2", Move: cardgame.Draw{}})
	assert.Nil(t, state)
	assert.True(t, errors.Is(err, cardgame.ErrIsNotPlayersTurn))
	assert.True(t, IsUserError(err))

	after, _ := tm.VisibleState(inst.ID, "p1")
	assert.Equal(t, before, after)
}

func TestManager_PlayerAction(t *testing.T) {
	tm := newTestManager()
	inst := tm.playingInstance(t)

	res, err := tm.PlayerAction(cbg, inst.ID, "p1", &playable.PayloadIn{Action: "draw", Context: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "OK", res.Value)
	assert.Equal(t, "abc", res.Context)

	_, err = tm.PlayerAction(cbg, inst.ID, "p1", &playable.PayloadIn{Action: "draw"})
	assert.True(t, errors.Is(err, cardgame.ErrIsNotPlayersTurn))

	state, _ := tm.VisibleState(inst.ID, "p1")
	assert.Equal(t, 41, state.DeckSize)
	assert.Len(t, state.Players[0].Hand, 6)

	session := tm.publisher.last()
	require.Len(t, session.Moves, 1)
	assert.Equal(t, "draw", session.Moves[0].Type)
}

func TestManager_FinishInstance_WithoutWinner(t *testing.T) {
	tm := newTestManager()
	inst := tm.playingInstance(t)

	assert.Equal(t, ErrNotJoined, tm.FinishInstance(cbg, inst.ID, "p9"))
	require.NoError(t, tm.FinishInstance(cbg, inst.ID, ""))
	assert.Equal(t, ErrNotPlaying, tm.FinishInstance(cbg, inst.ID, ""))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusFinished, inst.Status)
	assert.Equal(t, 0.0, inst.Winnings)
	require.Len(t, inst.Distributions, 2)
	for _, d := range inst.Distributions {
		assert.Equal(t, prize.KindRefund, d.Kind)
		assert.InDelta(t, 1.0, d.Amount, 1e-9)
	}

	tm.Dispose()
	tx := <-tm.txs
	assert.Equal(t, chain.KindRefund, tx.Kind)
}

func TestManager_CancelInstance(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 2)

	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, "p1"))

	assert.Equal(t, ErrNotCreator, tm.CancelInstance(cbg, inst.ID, "p1"))
	require.NoError(t, tm.CancelInstance(cbg, inst.ID, "creator"))
	assert.Equal(t, ErrNotWaiting, tm.CancelInstance(cbg, inst.ID, "creator"))

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusCancelled, inst.Status)
	require.Len(t, inst.Distributions, 1)
	assert.Equal(t, "p1", inst.Distributions[0].Recipient)
	assert.Equal(t, 2.0, inst.Distributions[0].Amount)

	assert.Len(t, tm.Instances(StatusCancelled), 1)
	assert.Len(t, tm.Instances(StatusWaiting), 0)
	assert.Len(t, tm.Instances(""), 1)
	assert.Empty(t, tm.ledger.finished, "cancelled instances are not games")
}

func TestManager_SnapshotsAreCopies(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", "Alice"))

	inst, _ = tm.Instance(inst.ID)
	inst.Seats[0].Name = "Mallory"
	inst.Status = StatusFinished

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, "Alice", inst.Seats[0].Name)
	assert.Equal(t, StatusWaiting, inst.Status)
}

func TestManager_Dispose(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)
	tm.Dispose()

	assert.Equal(t, ErrDisposed, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	_, err := tm.CreateTemplate(cbg, "Late", scenarioConfig(), "creator")
	assert.Equal(t, ErrDisposed, err)
	assert.Empty(t, tm.Instances(""))
}

func TestManager_PublishesTheLatestSessionLast(t *testing.T) {
	publisher := newGatedPublisher()
	m := New(Options{Logger: logrus.StandardLogger(), Publisher: publisher})

	tpl, err := m.CreateTemplate(cbg, "Highest Card", scenarioConfig(), "creator")
	require.NoError(t, err)
	inst, err := m.CreateInstance(cbg, tpl.ID, "creator", 0)
	require.NoError(t, err)

	publisher.armed.Store(true)

	firstJoin := make(chan error)
	go func() {
		firstJoin <- m.JoinInstance(cbg, inst.ID, "p1", "")
	}()
	<-publisher.entered

	// p2 joins while p1's session is still on its way to the store
	require.NoError(t, m.JoinInstance(cbg, inst.ID, "p2", ""))

	close(publisher.gate)
	require.NoError(t, <-firstJoin)

	stored, err := publisher.store.Load(cbg, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, stored.Participants)
	assert.Equal(t, int64(3), stored.Version)

	inst, _ = m.Instance(inst.ID)
	assert.Len(t, inst.Seats, 2)
}

func TestManager_SessionVersionsIncrease(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 0)
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p1", ""))
	require.NoError(t, tm.JoinInstance(cbg, inst.ID, "p2", ""))

	tm.publisher.mu.Lock()
	defer tm.publisher.mu.Unlock()

	require.Len(t, tm.publisher.sessions, 3)
	for i, s := range tm.publisher.sessions {
		assert.Equal(t, int64(i+1), s.Version)
	}
}

func TestManager_ConfirmPayment_StartFailureIsLogged(t *testing.T) {
	tm := newTestManager()
	inst := tm.waitingInstance(t, 1)

	// a config that can no longer be dealt
	tm.mu.Lock()
	tm.templates[inst.TemplateID].Config.Deck = deck.Composition{}
	tm.mu.Unlock()

	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, tm.JoinInstance(cbg, inst.ID, id, ""))
		require.NoError(t, tm.ConfirmPayment(cbg, inst.ID, id))
	}

	inst, _ = tm.Instance(inst.ID)
	assert.Equal(t, StatusWaiting, inst.Status)
	assert.Equal(t, 2.0, inst.PrizePool)
	require.NotEmpty(t, inst.Log)
	assert.True(t, strings.HasPrefix(inst.Log[len(inst.Log)-1].Message, "The game could not be started"))
}

func TestManager_DisposeWaitsForSubmissions(t *testing.T) {
	release := make(chan struct{})
	submitted := make(chan struct{}, 10)

	m := New(Options{
		Logger: logrus.StandardLogger(),
		Submitter: chain.SubmitterFunc(func(ctx context.Context, tx *chain.Transaction) (*chain.Receipt, error) {
			submitted <- struct{}{}
			<-release
			return &chain.Receipt{Digest: tx.ID}, nil
		}),
	})

	tpl, err := m.CreateTemplate(cbg, "Highest Card", scenarioConfig(), "creator")
	require.NoError(t, err)

	ids := make([]string, 5)
	for i := range ids {
		inst, err := m.CreateInstance(cbg, tpl.ID, "creator", 1)
		require.NoError(t, err)
		for _, p := range []string{"p1", "p2"} {
			require.NoError(t, m.JoinInstance(cbg, inst.ID, p, ""))
			require.NoError(t, m.ConfirmPayment(cbg, inst.ID, p))
		}
		ids[i] = inst.ID
	}

	require.NoError(t, m.FinishInstance(cbg, ids[0], "p1"))
	<-submitted

	// finishes racing with Dispose either land before it and are waited for, or are rejected
	var wg sync.WaitGroup
	for _, id := range ids[1:] {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := m.FinishInstance(cbg, id, "p2"); err != nil {
				assert.Equal(t, ErrDisposed, err)
			}
		}(id)
	}

	disposed := make(chan struct{})
	go func() {
		m.Dispose()
		close(disposed)
	}()

	select {
	case <-disposed:
		t.Fatal("Dispose returned while a submission was pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()

	select {
	case <-disposed:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispose did not return after submissions finished")
	}
}

func TestInstance_drainLogKeepsTheLatest(t *testing.T) {
	tm := newTestManager()
	inst := tm.playingInstance(t)

	for i := 0; i < 30; i++ {
		current := "p1"
		if i%2 == 1 {
			current = "p2"
		}

		_, err := tm.ExecuteGameAction(cbg, inst.ID, cardgame.Action{PlayerID: current, Move: cardgame.Draw{}})
		require.NoError(t, err)
	}

	inst, _ = tm.Instance(inst.ID)
	assert.Len(t, inst.Log, instanceLogLimit)
}
