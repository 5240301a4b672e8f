package webhook

import (
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindSucceeded Kind = "succeeded"
	KindFailed    Kind = "failed"
	KindUnhandled Kind = "unhandled"
)

// Event is the internal shape of a processor notification. Reference is the
// processor-issued payment reference; ID is the processor's event id, used
// only for delivery dedup.
type Event struct {
	ID         string
	Kind       Kind
	Reference  string
	OccurredAt time.Time
	RawAmount  int64
}

// processorEvent matches the processor's notification schema.
type processorEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID     string `json:"id"`
			Amount int64  `json:"amount"`
		} `json:"object"`
	} `json:"data"`
}

// Normalize maps a verified payload onto the internal event type. Event
// types beyond the recognized set come back as KindUnhandled so the webhook
// contract keeps working when the processor adds new ones; the reference is
// only required for kinds we act on.
func Normalize(body []byte) (*Event, error) {
	var pe processorEvent
	if err := json.Unmarshal(body, &pe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if pe.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedPayload)
	}
	kind := KindUnhandled
	switch pe.Type {
	case "payment_intent.succeeded":
		kind = KindSucceeded
	case "payment_intent.payment_failed":
		kind = KindFailed
	}
	if kind != KindUnhandled && pe.Data.Object.ID == "" {
		return nil, fmt.Errorf("%w: missing payment reference", ErrMalformedPayload)
	}
	evt := &Event{
		ID:        pe.ID,
		Kind:      kind,
		Reference: pe.Data.Object.ID,
		RawAmount: pe.Data.Object.Amount,
	}
	if pe.Created > 0 {
		evt.OccurredAt = time.Unix(pe.Created, 0)
	}
	return evt, nil
}
