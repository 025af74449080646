package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
)

// TestUser inserts a user with a unique email.
func TestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Email: fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		Role:  domain.RoleUser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// TestPayment inserts a pending payment for the user.
func TestPayment(t *testing.T, db *gorm.DB, userID uint, amount float64) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:            userID,
		Amount:            amount,
		PhoneNumber:       "254712345678",
		CheckoutRequestID: "ws_CO_" + uuid.New().String(),
		Status:            domain.PaymentStatusPending,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}

// TestSubscription inserts an active subscription ending at end.
func TestSubscription(t *testing.T, db *gorm.DB, userID uint, planType string, end time.Time) *models.Subscription {
	t.Helper()
	s := &models.Subscription{
		UserID:    userID,
		PlanType:  planType,
		Status:    domain.SubscriptionStatusActive,
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   end,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return s
}
