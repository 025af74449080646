package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lanprime/internal/service"
	"lanprime/pkg/mpesa"
)

// PaymentCallbackHandler receives the provider's asynchronous webhook. It
// always answers 200 so the provider does not retry-storm the endpoint;
// processing failures go to the log for operator follow-up.
type PaymentCallbackHandler struct {
	svc *service.PaymentService
}

func NewPaymentCallbackHandler(svc *service.PaymentService) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{svc: svc}
}

func (h *PaymentCallbackHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[MPESA callback] read body: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	result, err := mpesa.ParseCallback(body)
	if err != nil {
		log.Printf("[MPESA callback] %v body=%s", err, string(body))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	log.Printf("[MPESA callback] checkout_request_id=%s code=%d desc=%s", result.CheckoutRequestID, result.ResultCode, result.ResultDesc)
	if err := h.svc.ProcessCallback(result); err != nil {
		log.Printf("[MPESA callback] process: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
