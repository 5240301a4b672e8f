package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"payflow/internal/models"
	"payflow/pkg/processor"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid payment request")

// AttemptStore is the slice of the payment store the issuer needs.
type AttemptStore interface {
	Create(ctx context.Context, p *models.PaymentAttempt) error
}

type AnomalyRecorder interface {
	Record(ctx context.Context, kind, reference, detail string) error
}

// IntentService originates payment attempts: it requests an intent from the
// processor and persists the pending record the reconciler will later settle.
type IntentService struct {
	provider  processor.Provider
	store     AttemptStore
	anomalies AnomalyRecorder
	currency  string
}

func NewIntentService(provider processor.Provider, store AttemptStore, anomalies AnomalyRecorder, currency string) *IntentService {
	return &IntentService{provider: provider, store: store, anomalies: anomalies, currency: currency}
}

type IntentResult struct {
	Reference string `json:"reference"`
	Token     string `json:"token"`
}

// CreateIntent validates the request, asks the processor for a new intent
// and records it as PENDING. Amount arrives in major units and is rounded
// to the nearest minor unit.
func (s *IntentService) CreateIntent(ctx context.Context, payerID string, amount float64, description string) (*IntentResult, error) {
	if payerID == "" {
		return nil, fmt.Errorf("%w: payer_id required", ErrInvalidRequest)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	amountCents := int64(math.Round(amount * 100))
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount rounds to zero", ErrInvalidRequest)
	}

	intent, err := s.provider.CreateIntent(ctx, processor.IntentRequest{
		AmountCents:    amountCents,
		Currency:       s.currency,
		Description:    description,
		PayerID:        payerID,
		IdempotencyKey: uuid.New().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("create intent: %w", err)
	}

	att := &models.PaymentAttempt{
		Reference:   intent.Reference,
		PayerID:     payerID,
		AmountCents: amountCents,
		Currency:    s.currency,
		Description: description,
		Status:      models.StatusPending,
	}
	if err := s.store.Create(ctx, att); err != nil {
		// The processor already issued this reference; without a local row
		// the reconciler will never find it. Surface the orphan loudly.
		log.Printf("[INTENT] orphaned reference=%s payer=%s: persist failed: %v", intent.Reference, payerID, err)
		if rerr := s.anomalies.Record(ctx, models.AnomalyOrphanedReference, intent.Reference,
			fmt.Sprintf("intent issued but not persisted for payer %s: %v", payerID, err)); rerr != nil {
			log.Printf("[INTENT] record orphan anomaly: %v", rerr)
		}
		return nil, fmt.Errorf("persist attempt %s: %w", intent.Reference, err)
	}
	log.Printf("[INTENT] created reference=%s payer=%s amount_cents=%d", att.Reference, payerID, amountCents)
	return &IntentResult{Reference: intent.Reference, Token: intent.ClientToken}, nil
}
