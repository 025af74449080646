package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	SubscriptionStatusActive = "active"
)

const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// PlanDurations maps a plan tag to its entitlement period.
var PlanDurations = map[string]time.Duration{
	PlanBasic:   7 * 24 * time.Hour,
	PlanPremium: 30 * 24 * time.Hour,
	PlanMonthly: 30 * 24 * time.Hour,
	PlanYearly:  365 * 24 * time.Hour,
}
