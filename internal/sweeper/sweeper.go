package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"payflow/internal/models"
	"payflow/internal/repository"

	"github.com/robfig/cron/v3"
)

// Sweeper reports pending attempts that outlived the payment expiry window.
// Stale rows usually mean the processor-side intent was abandoned, or a
// webhook was lost; either way someone should look. The sweeper never
// mutates status — settlement outcomes come only from the processor.
type Sweeper struct {
	payments  *repository.PaymentRepository
	anomalies *repository.AnomalyRepository
	maxAge    time.Duration
}

func New(payments *repository.PaymentRepository, anomalies *repository.AnomalyRepository, maxAge time.Duration) *Sweeper {
	return &Sweeper{payments: payments, anomalies: anomalies, maxAge: maxAge}
}

func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)
	stale, err := s.payments.ListStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("[SWEEP] list stale pending: %v", err)
		return
	}
	for _, att := range stale {
		exists, err := s.anomalies.Exists(ctx, models.AnomalyStalePending, att.Reference)
		if err != nil {
			log.Printf("[SWEEP] check anomaly reference=%s: %v", att.Reference, err)
			continue
		}
		if exists {
			continue
		}
		detail := fmt.Sprintf("pending since %s (payer %s, %d cents)",
			att.CreatedAt.Format(time.RFC3339), att.PayerID, att.AmountCents)
		if err := s.anomalies.Record(ctx, models.AnomalyStalePending, att.Reference, detail); err != nil {
			log.Printf("[SWEEP] record anomaly reference=%s: %v", att.Reference, err)
			continue
		}
		log.Printf("[SWEEP] stale pending reference=%s: %s", att.Reference, detail)
	}
}

// Start schedules periodic sweeps and returns the cron so the caller can
// stop it on shutdown.
func Start(s *Sweeper, interval time.Duration) *cron.Cron {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		log.Printf("[SWEEP] schedule: %v", err)
		return c
	}
	c.Start()
	return c
}
