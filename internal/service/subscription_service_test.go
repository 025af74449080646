package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanprime/internal/domain"
	"lanprime/internal/models"
	"lanprime/internal/repository"
	"lanprime/internal/testutil"
)

func TestSubscriptionService_CreateOrExtend_New(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db))
	u := testutil.TestUser(t, db)

	sub, err := svc.CreateOrExtend(u.ID, domain.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.WithinDuration(t, sub.StartDate.Add(30*24*time.Hour), sub.EndDate, time.Second)
}

func TestSubscriptionService_CreateOrExtend_ExtendsActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db))
	u := testutil.TestUser(t, db)

	end := time.Now().Add(10 * 24 * time.Hour)
	existing := testutil.TestSubscription(t, db, u.ID, domain.PlanBasic, end)

	sub, err := svc.CreateOrExtend(u.ID, domain.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sub.ID)
	assert.Equal(t, domain.PlanPremium, sub.PlanType)
	assert.WithinDuration(t, end.Add(30*24*time.Hour), sub.EndDate, time.Second)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscriptionService_CreateOrExtend_ExpiredStartsFresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db))
	u := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, u.ID, domain.PlanBasic, time.Now().Add(-time.Hour))

	sub, err := svc.CreateOrExtend(u.ID, domain.PlanYearly)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), sub.StartDate, time.Second)
	assert.WithinDuration(t, sub.StartDate.Add(365*24*time.Hour), sub.EndDate, time.Second)
}

func TestSubscriptionService_CreateOrExtend_UnknownPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db))
	u := testutil.TestUser(t, db)

	_, err := svc.CreateOrExtend(u.ID, "lifetime")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestSubscriptionService_Active_NoneExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db))
	u := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, u.ID, domain.PlanBasic, time.Now().Add(-time.Minute))

	_, err := svc.Active(u.ID)
	assert.Error(t, err)
}
