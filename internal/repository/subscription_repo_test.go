package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/testutil"
)

func TestSubscriptionRepository_GetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubscriptionRepository(db)
	u := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, u.ID, domain.PlanBasic, time.Now().Add(-time.Hour)) // expired
	current := testutil.TestSubscription(t, db, u.ID, domain.PlanPremium, time.Now().Add(24*time.Hour))

	got, err := repo.GetActive(u.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)
	assert.Equal(t, domain.PlanPremium, got.PlanType)
}

func TestSubscriptionRepository_GetActive_None(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubscriptionRepository(db)
	u := testutil.TestUser(t, db)

	_, err := repo.GetActive(u.ID, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubscriptionRepository_GetActive_PicksLatestEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubscriptionRepository(db)
	u := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, u.ID, domain.PlanBasic, time.Now().Add(24*time.Hour))
	longest := testutil.TestSubscription(t, db, u.ID, domain.PlanYearly, time.Now().Add(300*24*time.Hour))

	got, err := repo.GetActive(u.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, longest.ID, got.ID)
}
