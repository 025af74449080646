package models

import "time"

type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PlanType  string    `gorm:"size:20;not null" json:"plan_type"` // basic, premium, monthly, yearly
	Status    string    `gorm:"size:20;not null;index" json:"status"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ActiveAt reports whether the subscription entitles the user at t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.Status == "active" && s.EndDate.After(t)
}
