package models

import "time"

const (
	AnomalyUnknownReference  = "unknown_reference"
	AnomalyConflictingEvent  = "conflicting_event"
	AnomalyStalePending      = "stale_pending"
	AnomalyOrphanedReference = "orphaned_reference"
)

// ReconcileAnomaly records a webhook or issuance irregularity that was
// acknowledged but not applied, for operational follow-up.
type ReconcileAnomaly struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:50;not null;index" json:"kind"`
	Reference string    `gorm:"size:255;index" json:"reference"`
	Detail    string    `gorm:"size:500" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReconcileAnomaly) TableName() string {
	return "reconcile_anomalies"
}
