package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/repository"
	"lanprime/internal/service"
	"lanprime/internal/testutil"
	"lanprime/pkg/mpesa"
)

type noopProvider struct{}

func (noopProvider) InitiateSTKPush(ctx context.Context, phone string, amount float64, reference string) (*mpesa.STKPushResponse, error) {
	return &mpesa.STKPushResponse{}, nil
}

func (noopProvider) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error) {
	return &mpesa.STKQueryResponse{}, nil
}

func setupCallbackRouter(t *testing.T) (*gin.Engine, *repository.PaymentRepository, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	paymentRepo := repository.NewPaymentRepository(db)
	subSvc := service.NewSubscriptionService(repository.NewSubscriptionRepository(db))
	svc := service.NewPaymentService(noopProvider{}, paymentRepo, subSvc, 1000)

	r := gin.New()
	r.POST("/api/v1/payments/callback", NewPaymentCallbackHandler(svc).Handle)
	return r, paymentRepo, db
}

func postCallback(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCallbackHandler_Success(t *testing.T) {
	r, paymentRepo, db := setupCallbackRouter(t)
	u := testutil.TestUser(t, db)
	p := testutil.TestPayment(t, db, u.ID, 1000)

	body := fmt.Sprintf(`{"Body":{"stkCallback":{
		"MerchantRequestID":"29115-1",
		"CheckoutRequestID":%q,
		"ResultCode":0,
		"ResultDesc":"ok",
		"CallbackMetadata":{"Item":[
			{"Name":"Amount","Value":1000},
			{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"}
		]}}}}`, p.CheckoutRequestID)

	w := postCallback(r, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	got, err := paymentRepo.GetByCheckoutRequestID(p.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
}

func TestCallbackHandler_MalformedBodyStillAcknowledged(t *testing.T) {
	r, _, _ := setupCallbackRouter(t)

	for _, body := range []string{`not json at all`, `{}`, ``} {
		w := postCallback(r, body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}
}

func TestCallbackHandler_UnknownPaymentStillAcknowledged(t *testing.T) {
	r, _, _ := setupCallbackRouter(t)

	body := `{"Body":{"stkCallback":{
		"MerchantRequestID":"29115-1",
		"CheckoutRequestID":"ws_CO_never_seen",
		"ResultCode":0,
		"ResultDesc":"ok"}}}`

	w := postCallback(r, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}
