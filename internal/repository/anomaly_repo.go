package repository

import (
	"context"

	"payflow/internal/models"

	"gorm.io/gorm"
)

type AnomalyRepository struct {
	db *gorm.DB
}

func NewAnomalyRepository(db *gorm.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) Record(ctx context.Context, kind, reference, detail string) error {
	return r.db.WithContext(ctx).Create(&models.ReconcileAnomaly{
		Kind:      kind,
		Reference: reference,
		Detail:    detail,
	}).Error
}

// Exists reports whether an anomaly of this kind was already recorded for the
// reference. Used by the sweeper to avoid re-reporting on every pass.
func (r *AnomalyRepository) Exists(ctx context.Context, kind, reference string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ReconcileAnomaly{}).
		Where("kind = ? AND reference = ?", kind, reference).
		Count(&n).Error
	return n > 0, err
}
