package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"payflow/internal/models"
	"payflow/internal/repository"
	"payflow/internal/webhook"
)

var (
	// ErrUnknownReference: the event names a reference this store has never
	// seen. Non-fatal; the record may not be persisted yet or may belong to
	// another instance sharing the processor account.
	ErrUnknownReference = errors.New("unknown payment reference")
	// ErrConflictingEvent: the event contradicts a terminal status already
	// recorded. Terminal state wins; the event is reported, never applied.
	ErrConflictingEvent = errors.New("conflicting event for settled payment")
)

// Store is the slice of the payment store the engine needs.
type Store interface {
	GetByReference(ctx context.Context, ref string) (*models.PaymentAttempt, error)
	Transition(ctx context.Context, ref, from, to string, confirmedAt *time.Time) (bool, error)
}

// Anomalies receives reconciliation irregularities for operational follow-up.
type Anomalies interface {
	Record(ctx context.Context, kind, reference, detail string) error
}

// Notifier is told about settled payments. Called at most once per attempt
// and outcome, by the goroutine that won the transition.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, payerID, reference string, amountCents int64, confirmedAt time.Time) error
	PaymentFailed(ctx context.Context, payerID, reference string, amountCents int64) error
}

// Engine applies normalized processor events to the payment store under the
// idempotency and terminal-wins rules. Duplicate deliveries collapse to
// no-op successes; contradictory deliveries are recorded and ignored.
type Engine struct {
	store     Store
	anomalies Anomalies
	notifier  Notifier
}

func NewEngine(store Store, anomalies Anomalies, notifier Notifier) *Engine {
	return &Engine{store: store, anomalies: anomalies, notifier: notifier}
}

// Apply reconciles one event. ErrUnknownReference and ErrConflictingEvent
// are per-event anomalies the caller should acknowledge to the processor;
// any other error is an infrastructure failure where retry is wanted.
func (e *Engine) Apply(ctx context.Context, evt webhook.Event) error {
	if evt.Kind == webhook.KindUnhandled {
		log.Printf("[RECONCILE] unhandled event kind, ignoring (event_id=%s)", evt.ID)
		return nil
	}
	target := models.StatusPaid
	if evt.Kind == webhook.KindFailed {
		target = models.StatusFailed
	}

	att, err := e.store.GetByReference(ctx, evt.Reference)
	if errors.Is(err, repository.ErrNotFound) {
		e.report(ctx, models.AnomalyUnknownReference, evt.Reference,
			fmt.Sprintf("event %s (%s) for reference never issued here", evt.ID, evt.Kind))
		return fmt.Errorf("%w: %s", ErrUnknownReference, evt.Reference)
	}
	if err != nil {
		return fmt.Errorf("load attempt %s: %w", evt.Reference, err)
	}

	// Duplicate delivery of an already-applied outcome: absorb silently.
	if att.Status == target {
		log.Printf("[RECONCILE] reference=%s already %s, duplicate absorbed", evt.Reference, target)
		return nil
	}
	if models.Terminal(att.Status) {
		return e.conflict(ctx, evt, att.Status, target)
	}

	var confirmedAt *time.Time
	if target == models.StatusPaid {
		t := evt.OccurredAt
		if t.IsZero() {
			t = time.Now()
		}
		confirmedAt = &t
	}
	won, err := e.store.Transition(ctx, evt.Reference, models.StatusPending, target, confirmedAt)
	if err != nil {
		return fmt.Errorf("transition %s -> %s: %w", evt.Reference, target, err)
	}
	if !won {
		// Lost a race: re-read to tell a duplicate from a contradiction.
		cur, err := e.store.GetByReference(ctx, evt.Reference)
		if err != nil {
			return fmt.Errorf("re-read attempt %s: %w", evt.Reference, err)
		}
		if cur.Status == target {
			log.Printf("[RECONCILE] reference=%s concurrent duplicate absorbed", evt.Reference)
			return nil
		}
		return e.conflict(ctx, evt, cur.Status, target)
	}

	log.Printf("[RECONCILE] reference=%s %s -> %s", evt.Reference, models.StatusPending, target)
	if target == models.StatusPaid {
		if err := e.notifier.PaymentConfirmed(ctx, att.PayerID, att.Reference, att.AmountCents, *confirmedAt); err != nil {
			log.Printf("[RECONCILE] notify confirmed reference=%s: %v", att.Reference, err)
		}
	} else {
		if err := e.notifier.PaymentFailed(ctx, att.PayerID, att.Reference, att.AmountCents); err != nil {
			log.Printf("[RECONCILE] notify failed reference=%s: %v", att.Reference, err)
		}
	}
	return nil
}

func (e *Engine) conflict(ctx context.Context, evt webhook.Event, current, target string) error {
	e.report(ctx, models.AnomalyConflictingEvent, evt.Reference,
		fmt.Sprintf("event %s wants %s but attempt is %s", evt.ID, target, current))
	return fmt.Errorf("%w: %s is %s, event wants %s", ErrConflictingEvent, evt.Reference, current, target)
}

func (e *Engine) report(ctx context.Context, kind, reference, detail string) {
	log.Printf("[RECONCILE] anomaly %s reference=%s: %s", kind, reference, detail)
	if err := e.anomalies.Record(ctx, kind, reference, detail); err != nil {
		log.Printf("[RECONCILE] record anomaly: %v", err)
	}
}
