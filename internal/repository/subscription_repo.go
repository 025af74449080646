package repository

import (
	"time"

	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(s *models.Subscription) error {
	return r.db.Create(s).Error
}

func (r *SubscriptionRepository) Update(s *models.Subscription) error {
	return r.db.Save(s).Error
}

// GetActive returns the user's most recent subscription whose end date is
// still in the future, or gorm.ErrRecordNotFound.
func (r *SubscriptionRepository) GetActive(userID uint, now time.Time) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.Where("user_id = ? AND status = ? AND end_date > ?", userID, domain.SubscriptionStatusActive, now).
		Order("end_date DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}
