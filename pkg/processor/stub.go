package processor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StubProvider issues fake references for development; webhook deliveries
// for them must be simulated by hand.
type StubProvider struct{}

func (s *StubProvider) CreateIntent(_ context.Context, _ IntentRequest) (*Intent, error) {
	ref := fmt.Sprintf("pi_stub_%s", uuid.New().String())
	return &Intent{
		Reference:   ref,
		ClientToken: ref + "_secret",
		Status:      "requires_payment_method",
	}, nil
}
