package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lanprime/internal/middleware"
	"lanprime/internal/repository"
	"lanprime/internal/service"
	"lanprime/pkg/mpesa"
)

type PaymentHandler struct {
	svc         *service.PaymentService
	paymentRepo *repository.PaymentRepository
}

func NewPaymentHandler(svc *service.PaymentService, paymentRepo *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{svc: svc, paymentRepo: paymentRepo}
}

type InitiatePaymentRequest struct {
	PhoneNumber string  `json:"phoneNumber" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// Initiate sends the STK push and returns the checkout request ID; the
// outcome arrives on the webhook and is readable from the status endpoint.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	p, resp, err := h.svc.Initiate(c.Request.Context(), userID, req.PhoneNumber, req.Amount)
	if err != nil {
		var provErr *mpesa.ProviderError
		switch {
		case errors.Is(err, mpesa.ErrInvalidPhone), errors.Is(err, mpesa.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, mpesa.ErrAuthFailed):
			log.Printf("[PAYMENT] initiate auth failure user=%d: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "payment provider authentication failed"})
		case errors.As(err, &provErr):
			log.Printf("[PAYMENT] initiate rejected user=%d: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": provErr.Body})
		default:
			log.Printf("[PAYMENT] initiate failed user=%d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to initiate payment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"paymentId":           p.ID,
		"checkoutRequestId":   p.CheckoutRequestID,
		"merchantRequestId":   p.MerchantRequestID,
		"responseDescription": resp.ResponseDescription,
		"customerMessage":     resp.CustomerMessage,
	}})
}

// Status returns one of the caller's own payments by ID.
func (h *PaymentHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payment id"})
		return
	}
	p, err := h.paymentRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get payment status"})
		return
	}
	if p.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// History lists the caller's payments, newest first.
func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	payments, err := h.paymentRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get payment history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payments})
}
