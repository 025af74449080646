package models

import (
	"time"
)

// Payment is one push-payment attempt. CheckoutRequestID is the provider's
// correlation key; the webhook matches on it, so it carries a unique index.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	Amount            float64    `gorm:"not null" json:"amount"` // KES
	PhoneNumber       string     `gorm:"size:15;not null" json:"phone_number"`
	CheckoutRequestID string     `gorm:"size:255;uniqueIndex;not null" json:"checkout_request_id"`
	MerchantRequestID string     `gorm:"size:255" json:"merchant_request_id"`
	AccountReference  string     `gorm:"size:64" json:"account_reference"`
	Status            string     `gorm:"size:20;not null;index" json:"status"` // pending, completed, failed
	ResultDesc        string     `gorm:"size:255" json:"result_desc"`
	ReceiptNumber     string     `gorm:"size:64" json:"receipt_number"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
