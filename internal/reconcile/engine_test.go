package reconcile_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"payflow/internal/models"
	"payflow/internal/reconcile"
	"payflow/internal/repository"
	"payflow/internal/webhook"

	"github.com/stretchr/testify/require"
)

type anomalyLog struct {
	mu      sync.Mutex
	entries []string // kind
	refs    []string
}

func (a *anomalyLog) Record(_ context.Context, kind, reference, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, kind)
	a.refs = append(a.refs, reference)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed int
	failed    int
}

func (n *fakeNotifier) PaymentConfirmed(context.Context, string, string, int64, time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
	return nil
}

func (n *fakeNotifier) PaymentFailed(context.Context, string, string, int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed++
	return nil
}

func setup(t *testing.T) (*reconcile.Engine, *repository.MemoryPaymentRepository, *anomalyLog, *fakeNotifier) {
	t.Helper()
	store := repository.NewMemoryPaymentRepository()
	anomalies := &anomalyLog{}
	notifier := &fakeNotifier{}
	return reconcile.NewEngine(store, anomalies, notifier), store, anomalies, notifier
}

func pendingAttempt(t *testing.T, store *repository.MemoryPaymentRepository, ref string) {
	t.Helper()
	err := store.Create(context.Background(), &models.PaymentAttempt{
		Reference:   ref,
		PayerID:     "u1",
		AmountCents: 5000,
		Currency:    "COP",
		Status:      models.StatusPending,
	})
	require.NoError(t, err)
}

func succeededEvent(ref string) webhook.Event {
	return webhook.Event{
		ID:         "evt_" + ref,
		Kind:       webhook.KindSucceeded,
		Reference:  ref,
		OccurredAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func failedEvent(ref string) webhook.Event {
	return webhook.Event{ID: "evt_f_" + ref, Kind: webhook.KindFailed, Reference: ref}
}

func TestApply_SucceededMarksPaid(t *testing.T) {
	engine, store, _, notifier := setup(t)
	pendingAttempt(t, store, "pi_1")

	evt := succeededEvent("pi_1")
	require.NoError(t, engine.Apply(context.Background(), evt))

	att, err := store.GetByReference(context.Background(), "pi_1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, att.Status)
	require.NotNil(t, att.ConfirmedAt)
	require.Equal(t, evt.OccurredAt, *att.ConfirmedAt)
	require.Equal(t, 1, notifier.confirmed)
}

func TestApply_FailedMarksFailed(t *testing.T) {
	engine, store, _, notifier := setup(t)
	pendingAttempt(t, store, "pi_1")

	require.NoError(t, engine.Apply(context.Background(), failedEvent("pi_1")))

	att, err := store.GetByReference(context.Background(), "pi_1")
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, att.Status)
	require.Nil(t, att.ConfirmedAt)
	require.Equal(t, 1, notifier.failed)
}

func TestApply_ReplayedSucceededIsIdempotent(t *testing.T) {
	engine, store, anomalies, notifier := setup(t)
	pendingAttempt(t, store, "pi_1")

	evt := succeededEvent("pi_1")
	for i := 0; i < 5; i++ {
		require.NoError(t, engine.Apply(context.Background(), evt))
	}

	att, err := store.GetByReference(context.Background(), "pi_1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, att.Status)
	require.Equal(t, evt.OccurredAt, *att.ConfirmedAt, "confirmed_at must never be overwritten on replay")
	require.Equal(t, 1, notifier.confirmed, "side effect fires exactly once")
	require.Empty(t, anomalies.entries, "duplicates are not anomalies")
}

func TestApply_TerminalStateWins(t *testing.T) {
	engine, store, anomalies, notifier := setup(t)
	pendingAttempt(t, store, "pi_paid")
	pendingAttempt(t, store, "pi_failed")
	require.NoError(t, engine.Apply(context.Background(), succeededEvent("pi_paid")))
	require.NoError(t, engine.Apply(context.Background(), failedEvent("pi_failed")))

	err := engine.Apply(context.Background(), failedEvent("pi_paid"))
	require.ErrorIs(t, err, reconcile.ErrConflictingEvent)
	att, _ := store.GetByReference(context.Background(), "pi_paid")
	require.Equal(t, models.StatusPaid, att.Status)

	err = engine.Apply(context.Background(), succeededEvent("pi_failed"))
	require.ErrorIs(t, err, reconcile.ErrConflictingEvent)
	att, _ = store.GetByReference(context.Background(), "pi_failed")
	require.Equal(t, models.StatusFailed, att.Status)

	require.Equal(t, []string{models.AnomalyConflictingEvent, models.AnomalyConflictingEvent}, anomalies.entries)
	require.Equal(t, 1, notifier.confirmed)
	require.Equal(t, 1, notifier.failed)
}

func TestApply_UnknownReference(t *testing.T) {
	engine, store, anomalies, _ := setup(t)

	err := engine.Apply(context.Background(), succeededEvent("pi_ghost"))
	require.ErrorIs(t, err, reconcile.ErrUnknownReference)
	require.Equal(t, []string{models.AnomalyUnknownReference}, anomalies.entries)

	_, err = store.GetByReference(context.Background(), "pi_ghost")
	require.ErrorIs(t, err, repository.ErrNotFound, "no record may be created for unknown references")
}

func TestApply_UnhandledKindIsNoop(t *testing.T) {
	engine, store, anomalies, notifier := setup(t)
	pendingAttempt(t, store, "pi_1")

	err := engine.Apply(context.Background(), webhook.Event{ID: "evt_x", Kind: webhook.KindUnhandled})
	require.NoError(t, err)

	att, _ := store.GetByReference(context.Background(), "pi_1")
	require.Equal(t, models.StatusPending, att.Status)
	require.Empty(t, anomalies.entries)
	require.Equal(t, 0, notifier.confirmed+notifier.failed)
}

func TestApply_ConcurrentDuplicates(t *testing.T) {
	engine, store, anomalies, notifier := setup(t)
	pendingAttempt(t, store, "pi_race")

	evt := succeededEvent("pi_race")
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = engine.Apply(context.Background(), evt)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "delivery %d must be acknowledged", i)
	}
	att, _ := store.GetByReference(context.Background(), "pi_race")
	require.Equal(t, models.StatusPaid, att.Status)
	require.Equal(t, 1, notifier.confirmed, "exactly one applied side effect")
	require.Empty(t, anomalies.entries)
}
