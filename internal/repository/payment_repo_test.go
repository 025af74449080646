package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanprime/internal/domain"
	"lanprime/internal/testutil"
)

func TestPaymentRepository_MarkCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	u := testutil.TestUser(t, db)
	p := testutil.TestPayment(t, db, u.ID, 1000)

	now := time.Now()
	transitioned, err := repo.MarkCompleted(p.CheckoutRequestID, "NLJ7RT61SV", "ok", now)
	require.NoError(t, err)
	assert.True(t, transitioned)

	got, err := repo.GetByCheckoutRequestID(p.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	assert.Equal(t, "NLJ7RT61SV", got.ReceiptNumber)
	require.NotNil(t, got.CompletedAt)
}

func TestPaymentRepository_MarkCompleted_Redelivery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	u := testutil.TestUser(t, db)
	p := testutil.TestPayment(t, db, u.ID, 1000)

	first, err := repo.MarkCompleted(p.CheckoutRequestID, "R1", "ok", time.Now())
	require.NoError(t, err)
	assert.True(t, first)

	// second delivery of the same callback finds no pending row
	second, err := repo.MarkCompleted(p.CheckoutRequestID, "R1", "ok", time.Now())
	require.NoError(t, err)
	assert.False(t, second)
}

func TestPaymentRepository_MarkFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	u := testutil.TestUser(t, db)
	p := testutil.TestPayment(t, db, u.ID, 500)

	transitioned, err := repo.MarkFailed(p.CheckoutRequestID, "Request cancelled by user.")
	require.NoError(t, err)
	assert.True(t, transitioned)

	got, err := repo.GetByCheckoutRequestID(p.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)
	assert.Equal(t, "Request cancelled by user.", got.ResultDesc)
}

func TestPaymentRepository_NoTransitionOutOfTerminalState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	u := testutil.TestUser(t, db)
	p := testutil.TestPayment(t, db, u.ID, 500)

	_, err := repo.MarkFailed(p.CheckoutRequestID, "cancelled")
	require.NoError(t, err)

	// a late success callback must not resurrect a failed payment
	transitioned, err := repo.MarkCompleted(p.CheckoutRequestID, "R2", "ok", time.Now())
	require.NoError(t, err)
	assert.False(t, transitioned)

	got, err := repo.GetByCheckoutRequestID(p.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)
}

func TestPaymentRepository_ListPendingOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRepository(db)
	u := testutil.TestUser(t, db)

	stale := testutil.TestPayment(t, db, u.ID, 1000)
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-time.Hour)).Error)
	fresh := testutil.TestPayment(t, db, u.ID, 1000)

	done := testutil.TestPayment(t, db, u.ID, 1000)
	require.NoError(t, db.Model(done).Updates(map[string]interface{}{
		"created_at": time.Now().Add(-time.Hour),
		"status":     domain.PaymentStatusCompleted,
	}).Error)

	out, err := repo.ListPendingOlderThan(time.Now().Add(-10*time.Minute), 100)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, stale.ID, out[0].ID)
	assert.NotEqual(t, fresh.ID, out[0].ID)
}
