package service

import (
	"context"
	"encoding/json"
	"time"

	"payflow/internal/models"
	"payflow/internal/ws"
)

// NotificationStore persists status messages; nil-able for tests.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// NotificationService records payer-facing status messages and pushes them
// over the websocket status stream. It implements reconcile.Notifier.
type NotificationService struct {
	store NotificationStore
	hub   *ws.Hub
}

func NewNotificationService(store NotificationStore, hub *ws.Hub) *NotificationService {
	return &NotificationService{store: store, hub: hub}
}

func (s *NotificationService) notify(ctx context.Context, payerID, ntype, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	if s.hub != nil {
		s.hub.BroadcastToPayer(payerID, map[string]interface{}{
			"type":  ntype,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	if s.store == nil {
		return nil
	}
	return s.store.Create(ctx, &models.Notification{
		PayerID: payerID,
		Type:    ntype,
		Title:   title,
		Body:    body,
		Data:    dataJSON,
	})
}

func (s *NotificationService) PaymentConfirmed(ctx context.Context, payerID, reference string, amountCents int64, confirmedAt time.Time) error {
	return s.notify(ctx, payerID, "PAYMENT_CONFIRMED", "Payment confirmed", "Your payment was successful.", map[string]interface{}{
		"reference":    reference,
		"amount_cents": amountCents,
		"confirmed_at": confirmedAt,
	})
}

func (s *NotificationService) PaymentFailed(ctx context.Context, payerID, reference string, amountCents int64) error {
	return s.notify(ctx, payerID, "PAYMENT_FAILED", "Payment failed", "Your payment could not be completed.", map[string]interface{}{
		"reference":    reference,
		"amount_cents": amountCents,
	})
}
