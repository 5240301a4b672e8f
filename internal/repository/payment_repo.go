package repository

import (
	"context"
	"errors"
	"time"

	"payflow/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("payment attempt not found")
	ErrDuplicateReference = errors.New("duplicate payment reference")
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentAttempt) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReference
	}
	return err
}

func (r *PaymentRepository) GetByReference(ctx context.Context, ref string) (*models.PaymentAttempt, error) {
	var p models.PaymentAttempt
	err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByPayer(ctx context.Context, payerID string) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("payer_id = ?", payerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Transition applies a conditional status update: the row changes only if it
// still holds the expected current status. Returns false when zero rows were
// affected, i.e. a concurrent update won or the state had already moved on.
func (r *PaymentRepository) Transition(ctx context.Context, ref, from, to string, confirmedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if confirmedAt != nil {
		updates["confirmed_at"] = *confirmedAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("reference = ? AND status = ?", ref, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
