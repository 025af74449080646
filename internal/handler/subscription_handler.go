package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/middleware"
	"lanprime/internal/service"
)

type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

type CreateSubscriptionRequest struct {
	PackageType string `json:"package_type" binding:"required,oneof=monthly yearly"`
}

// Create grants a directly purchased package (monthly/yearly). Payment-backed
// plans (basic/premium) are granted by the payment callback instead.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	sub, err := h.svc.CreateOrExtend(userID, req.PackageType)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlan) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create subscription"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": sub})
}

func (h *SubscriptionHandler) Active(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sub, err := h.svc.Active(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sub})
}

func (h *SubscriptionHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	subs, err := h.svc.History(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get subscription history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs})
}

// Plans lists the purchasable plan catalog for the packages page.
func (h *SubscriptionHandler) Plans(c *gin.Context) {
	type plan struct {
		Tag          string `json:"tag"`
		DurationDays int    `json:"duration_days"`
	}
	plans := make([]plan, 0, len(domain.PlanDurations))
	for _, tag := range []string{domain.PlanBasic, domain.PlanPremium, domain.PlanMonthly, domain.PlanYearly} {
		plans = append(plans, plan{Tag: tag, DurationDays: int(domain.PlanDurations[tag].Hours() / 24)})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plans})
}
