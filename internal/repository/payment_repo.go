package repository

import (
	"time"

	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByCheckoutRequestID(id string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("checkout_request_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUser(userID uint) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListPendingOlderThan returns pending payments created before cutoff, for
// the reconciler. limit caps a single sweep.
func (r *PaymentRepository) ListPendingOlderThan(cutoff time.Time, limit int) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.Where("status = ? AND created_at < ?", domain.PaymentStatusPending, cutoff).
		Order("created_at ASC").Limit(limit).Find(&out).Error
	return out, err
}

// MarkCompleted transitions the payment with the given checkout request ID
// from pending to completed. Returns true only when this call performed the
// transition; a redelivered callback finds zero rows and gets false, which
// keeps subscription creation exactly-once.
func (r *PaymentRepository) MarkCompleted(checkoutRequestID, receiptNumber, resultDesc string, completedAt time.Time) (bool, error) {
	res := r.db.Model(&models.Payment{}).
		Where("checkout_request_id = ? AND status = ?", checkoutRequestID, domain.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         domain.PaymentStatusCompleted,
			"receipt_number": receiptNumber,
			"result_desc":    resultDesc,
			"completed_at":   completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkFailed transitions pending -> failed under the same conditional update.
func (r *PaymentRepository) MarkFailed(checkoutRequestID, resultDesc string) (bool, error) {
	res := r.db.Model(&models.Payment{}).
		Where("checkout_request_id = ? AND status = ?", checkoutRequestID, domain.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":      domain.PaymentStatusFailed,
			"result_desc": resultDesc,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
