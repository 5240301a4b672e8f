package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"payflow/internal/models"
)

// MemoryPaymentRepository mirrors PaymentRepository semantics in memory,
// including the conditional-transition contract. Used in tests and dev mode.
type MemoryPaymentRepository struct {
	mu     sync.RWMutex
	byRef  map[string]*models.PaymentAttempt
	nextID uint
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{byRef: make(map[string]*models.PaymentAttempt)}
}

func (r *MemoryPaymentRepository) Create(_ context.Context, p *models.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byRef[p.Reference]; exists {
		return ErrDuplicateReference
	}
	r.nextID++
	p.ID = r.nextID
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	r.byRef[p.Reference] = &cp
	return nil
}

func (r *MemoryPaymentRepository) GetByReference(_ context.Context, ref string) (*models.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byRef[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPaymentRepository) ListByPayer(_ context.Context, payerID string) ([]models.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.PaymentAttempt
	for _, p := range r.byRef {
		if p.PayerID == payerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPaymentRepository) Transition(_ context.Context, ref, from, to string, confirmedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byRef[ref]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if confirmedAt != nil {
		t := *confirmedAt
		p.ConfirmedAt = &t
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryPaymentRepository) ListStalePending(_ context.Context, cutoff time.Time) ([]models.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.PaymentAttempt
	for _, p := range r.byRef {
		if p.Status == models.StatusPending && p.CreatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
