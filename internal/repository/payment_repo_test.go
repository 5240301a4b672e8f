package repository_test

import (
	"context"
	"testing"
	"time"

	"payflow/internal/models"
	"payflow/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.PaymentAttempt{}, &models.ReconcileAnomaly{}))
	return db
}

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	repo := repository.NewPaymentRepository(setupDB(t))
	ctx := context.Background()

	att := &models.PaymentAttempt{
		Reference:   "pi_1",
		PayerID:     "u1",
		AmountCents: 5000,
		Currency:    "COP",
		Status:      models.StatusPending,
	}
	require.NoError(t, repo.Create(ctx, att))

	got, err := repo.GetByReference(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.PayerID)
	require.Equal(t, int64(5000), got.AmountCents)
	require.Equal(t, models.StatusPending, got.Status)
	require.False(t, got.CreatedAt.IsZero())
}

func TestPaymentRepository_DuplicateReference(t *testing.T) {
	repo := repository.NewPaymentRepository(setupDB(t))
	ctx := context.Background()

	first := &models.PaymentAttempt{Reference: "pi_1", PayerID: "u1", AmountCents: 100, Status: models.StatusPending}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.PaymentAttempt{Reference: "pi_1", PayerID: "u2", AmountCents: 200, Status: models.StatusPending}
	require.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicateReference)
}

func TestPaymentRepository_GetUnknown(t *testing.T) {
	repo := repository.NewPaymentRepository(setupDB(t))

	_, err := repo.GetByReference(context.Background(), "pi_missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaymentRepository_TransitionIsConditional(t *testing.T) {
	repo := repository.NewPaymentRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.PaymentAttempt{
		Reference: "pi_1", PayerID: "u1", AmountCents: 100, Status: models.StatusPending,
	}))

	confirmed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	won, err := repo.Transition(ctx, "pi_1", models.StatusPending, models.StatusPaid, &confirmed)
	require.NoError(t, err)
	require.True(t, won)

	got, err := repo.GetByReference(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	require.Equal(t, confirmed.Unix(), got.ConfirmedAt.Unix())

	// Second attempt from PENDING must find zero matching rows.
	won, err = repo.Transition(ctx, "pi_1", models.StatusPending, models.StatusFailed, nil)
	require.NoError(t, err)
	require.False(t, won)

	got, err = repo.GetByReference(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, got.Status, "lost transition must not change status")
}

func TestPaymentRepository_ListByPayer(t *testing.T) {
	repo := repository.NewPaymentRepository(setupDB(t))
	ctx := context.Background()
	for _, ref := range []string{"pi_a", "pi_b"} {
		require.NoError(t, repo.Create(ctx, &models.PaymentAttempt{
			Reference: ref, PayerID: "u1", AmountCents: 100, Status: models.StatusPending,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.PaymentAttempt{
		Reference: "pi_c", PayerID: "u2", AmountCents: 100, Status: models.StatusPending,
	}))

	out, err := repo.ListByPayer(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestPaymentRepository_ListStalePending(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewPaymentRepository(db)
	ctx := context.Background()

	old := &models.PaymentAttempt{Reference: "pi_old", PayerID: "u1", AmountCents: 100, Status: models.StatusPending}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, db.Model(old).Update("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, repo.Create(ctx, &models.PaymentAttempt{
		Reference: "pi_new", PayerID: "u1", AmountCents: 100, Status: models.StatusPending,
	}))

	stale, err := repo.ListStalePending(ctx, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "pi_old", stale[0].Reference)
}

func TestAnomalyRepository_RecordAndExists(t *testing.T) {
	repo := repository.NewAnomalyRepository(setupDB(t))
	ctx := context.Background()

	exists, err := repo.Exists(ctx, models.AnomalyStalePending, "pi_1")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.Record(ctx, models.AnomalyStalePending, "pi_1", "pending for 1h"))

	exists, err = repo.Exists(ctx, models.AnomalyStalePending, "pi_1")
	require.NoError(t, err)
	require.True(t, exists)
}
