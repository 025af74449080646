package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
	"lanprime/internal/repository"
	"lanprime/pkg/mpesa"
)

// STKProvider is the slice of the M-Pesa client the payment flow needs.
type STKProvider interface {
	InitiateSTKPush(ctx context.Context, phone string, amount float64, reference string) (*mpesa.STKPushResponse, error)
	QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error)
}

type PaymentService struct {
	provider      STKProvider
	paymentRepo   *repository.PaymentRepository
	subSvc        *SubscriptionService
	premiumCutoff float64
	now           func() time.Time
}

func NewPaymentService(provider STKProvider, paymentRepo *repository.PaymentRepository, subSvc *SubscriptionService, premiumCutoff float64) *PaymentService {
	return &PaymentService{
		provider:      provider,
		paymentRepo:   paymentRepo,
		subSvc:        subSvc,
		premiumCutoff: premiumCutoff,
		now:           time.Now,
	}
}

// Initiate validates the inputs, sends the STK push and persists a pending
// payment keyed by the provider's checkout request ID. The payment outcome
// arrives later via the callback; callers poll the status endpoint.
func (s *PaymentService) Initiate(ctx context.Context, userID uint, phoneNumber string, amount float64) (*models.Payment, *mpesa.STKPushResponse, error) {
	phone, err := mpesa.NormalizePhone(phoneNumber)
	if err != nil {
		return nil, nil, err
	}
	reference := "LP-" + strings.ToUpper(uuid.New().String()[:8])
	resp, err := s.provider.InitiateSTKPush(ctx, phone, amount, reference)
	if err != nil {
		return nil, nil, err
	}
	p := &models.Payment{
		UserID:            userID,
		Amount:            amount,
		PhoneNumber:       phone,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		AccountReference:  reference,
		Status:            domain.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(p); err != nil {
		// The push went out but we lost the record; the reconciler cannot
		// recover this one, so it must surface loudly.
		log.Printf("[PAYMENT] persist failed after STK push checkout_request_id=%s user=%d: %v", resp.CheckoutRequestID, userID, err)
		return nil, nil, fmt.Errorf("payment: persist: %w", err)
	}
	return p, resp, nil
}

// PlanForAmount maps a confirmed payment amount to the plan it buys.
func (s *PaymentService) PlanForAmount(amount float64) string {
	if amount >= s.premiumCutoff {
		return domain.PlanPremium
	}
	return domain.PlanBasic
}

// ProcessCallback applies a provider callback to the matching payment.
// The status update is a conditional pending-only transition, so redelivered
// callbacks are no-ops and the subscription is created exactly once. The
// returned error is for logging; the webhook response never depends on it.
func (s *PaymentService) ProcessCallback(result *mpesa.CallbackResult) error {
	p, err := s.paymentRepo.GetByCheckoutRequestID(result.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[PAYMENT] callback for unknown checkout_request_id=%s, ignoring", result.CheckoutRequestID)
			return nil
		}
		return fmt.Errorf("payment: lookup %s: %w", result.CheckoutRequestID, err)
	}
	if !result.Success() {
		transitioned, err := s.paymentRepo.MarkFailed(result.CheckoutRequestID, result.ResultDesc)
		if err != nil {
			return fmt.Errorf("payment: mark failed %s: %w", result.CheckoutRequestID, err)
		}
		if transitioned {
			log.Printf("[PAYMENT] payment %d failed: code=%d desc=%s", p.ID, result.ResultCode, result.ResultDesc)
		}
		return nil
	}
	transitioned, err := s.paymentRepo.MarkCompleted(result.CheckoutRequestID, result.ReceiptNumber, result.ResultDesc, s.now())
	if err != nil {
		return fmt.Errorf("payment: mark completed %s: %w", result.CheckoutRequestID, err)
	}
	if !transitioned {
		log.Printf("[PAYMENT] duplicate callback for checkout_request_id=%s, already processed", result.CheckoutRequestID)
		return nil
	}
	plan := s.PlanForAmount(p.Amount)
	if _, err := s.subSvc.CreateOrExtend(p.UserID, plan); err != nil {
		return fmt.Errorf("payment: subscription for user %d after payment %d: %w", p.UserID, p.ID, err)
	}
	log.Printf("[PAYMENT] payment %d completed, user %d subscribed to %s", p.ID, p.UserID, plan)
	return nil
}

// Reconcile queries the provider for payments stuck in pending beyond
// staleAfter and applies any resolved outcome through the same transition
// path as the callback. Covers lost webhooks and crashes mid-confirm.
func (s *PaymentService) Reconcile(ctx context.Context, staleAfter time.Duration, limit int) {
	cutoff := s.now().Add(-staleAfter)
	pending, err := s.paymentRepo.ListPendingOlderThan(cutoff, limit)
	if err != nil {
		log.Printf("[PAYMENT] reconcile: list pending: %v", err)
		return
	}
	for _, p := range pending {
		q, err := s.provider.QuerySTKStatus(ctx, p.CheckoutRequestID)
		if err != nil {
			// The query API errors while the push is still in flight;
			// leave the payment for the next sweep.
			log.Printf("[PAYMENT] reconcile: query %s: %v", p.CheckoutRequestID, err)
			continue
		}
		code, err := strconv.Atoi(q.ResultCode)
		if err != nil {
			log.Printf("[PAYMENT] reconcile: bad result code %q for %s", q.ResultCode, p.CheckoutRequestID)
			continue
		}
		result := &mpesa.CallbackResult{
			CheckoutRequestID: p.CheckoutRequestID,
			ResultCode:        code,
			ResultDesc:        q.ResultDesc,
		}
		if err := s.ProcessCallback(result); err != nil {
			log.Printf("[PAYMENT] reconcile: apply %s: %v", p.CheckoutRequestID, err)
			continue
		}
		log.Printf("[PAYMENT] reconcile: resolved payment %d code=%d", p.ID, code)
	}
}
