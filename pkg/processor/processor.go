package processor

import "context"

// IntentRequest asks the processor for a new payment intent. Amount is in
// minor currency units.
type IntentRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	PayerID        string
	IdempotencyKey string
}

// Intent is the processor's answer: a reference identifying the attempt in
// all later webhook traffic, and a token the client uses to complete payment.
type Intent struct {
	Reference   string
	ClientToken string
	Status      string
}

type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}
