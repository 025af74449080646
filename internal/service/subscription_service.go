package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
	"lanprime/internal/repository"
)

var ErrUnknownPlan = errors.New("unknown plan type")

type SubscriptionService struct {
	subRepo *repository.SubscriptionRepository
	now     func() time.Time
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, now: time.Now}
}

// CreateOrExtend grants the user the given plan. When an active subscription
// already exists its end date is pushed out by the plan duration instead of
// inserting a parallel row, so a user never holds two active subscriptions.
func (s *SubscriptionService) CreateOrExtend(userID uint, planType string) (*models.Subscription, error) {
	duration, ok := domain.PlanDurations[planType]
	if !ok {
		return nil, ErrUnknownPlan
	}
	now := s.now()
	existing, err := s.subRepo.GetActive(userID, now)
	if err == nil {
		existing.EndDate = existing.EndDate.Add(duration)
		existing.PlanType = planType
		if err := s.subRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	sub := &models.Subscription{
		UserID:    userID,
		PlanType:  planType,
		Status:    domain.SubscriptionStatusActive,
		StartDate: now,
		EndDate:   now.Add(duration),
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Active returns the user's current subscription or gorm.ErrRecordNotFound.
func (s *SubscriptionService) Active(userID uint) (*models.Subscription, error) {
	return s.subRepo.GetActive(userID, s.now())
}

func (s *SubscriptionService) History(userID uint) ([]models.Subscription, error) {
	return s.subRepo.ListByUser(userID)
}
