package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lanprime/internal/domain"
	"lanprime/internal/repository"
)

// SubscriptionRequired gates catalog routes behind an active subscription.
// Use after AuthRequired. Admins bypass the gate.
func SubscriptionRequired(subRepo *repository.SubscriptionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		if role, _ := c.Get("role"); role == domain.RoleAdmin {
			c.Next()
			return
		}
		if _, err := subRepo.GetActive(userID, time.Now()); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "active subscription required"})
			return
		}
		c.Next()
	}
}
