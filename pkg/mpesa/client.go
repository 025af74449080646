package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrAuthFailed is returned when the OAuth token cannot be obtained.
	ErrAuthFailed = errors.New("mpesa: authentication failed")
	// ErrInvalidAmount is returned for non-positive or non-finite amounts.
	ErrInvalidAmount = errors.New("mpesa: amount must be a positive number")
)

// ProviderError is a non-2xx response from the Daraja API, carrying the
// provider's own status and message so handlers can surface it.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mpesa: provider rejected request: %d %s", e.StatusCode, e.Body)
}

// Config holds the Daraja credentials and endpoints. All fields are required.
type Config struct {
	BaseURL        string // e.g. https://sandbox.safaricom.co.ke/mpesa
	AuthURL        string // e.g. https://sandbox.safaricom.co.ke/oauth/v1/generate
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string // fully-qualified URL of our webhook endpoint
}

// Client talks to the Daraja STK push API. The OAuth token is cached in
// memory under a mutex until shortly before expiry; a stale fetch is
// harmless, the lock only avoids duplicate token calls under load.
type Client struct {
	cfg        Config
	authClient *http.Client
	stkClient  *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		authClient: &http.Client{Timeout: 10 * time.Second},
		stkClient:  &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // seconds, Daraja sends it as a string
}

// AccessToken returns the cached bearer token or fetches a fresh one via
// HTTP Basic auth against the provider's token endpoint.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AuthURL+"?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	resp, err := c.authClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %d %s", ErrAuthFailed, resp.StatusCode, string(body))
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access_token in response", ErrAuthFailed)
	}
	ttl, err := strconv.Atoi(out.ExpiresIn)
	if err != nil || ttl <= 0 {
		return "", fmt.Errorf("%w: bad expires_in %q", ErrAuthFailed, out.ExpiresIn)
	}
	c.token = out.AccessToken
	// safety margin so we never hand out a token about to expire, clamped
	// so short-lived tokens still get cached for half their lifetime
	lifetime := time.Duration(ttl) * time.Second
	margin := 30 * time.Second
	if half := lifetime / 2; half < margin {
		margin = half
	}
	c.tokenExpiry = c.now().Add(lifetime - margin)
	return c.token, nil
}

type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the synchronous acknowledgment from the STK push API.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// InitiateSTKPush asks the provider to prompt the payer's phone for amount.
// phone must already be normalized (see NormalizePhone). The payment outcome
// arrives later on the callback URL; this only returns the correlation ID.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount float64, reference string) (*STKPushResponse, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	ts := Timestamp(c.now())
	if reference == "" {
		reference = "LanPrime Subscription"
	}
	payload := stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Round(amount)),
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  reference,
		TransactionDesc:   "Subscription Payment",
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	log.Printf("[MPESA] STK push phone=%s amount=%d ref=%s", phone, payload.Amount, reference)
	resp, err := c.stkClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa: stk push: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	var out STKPushResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("mpesa: stk push decode: %w", err)
	}
	return &out, nil
}

// STKQueryResponse is the result of querying a push by checkout request ID.
type STKQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// QuerySTKStatus asks the provider for the outcome of a previously initiated
// push. Used by the reconciler for payments whose callback never arrived.
func (c *Client) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	ts := Timestamp(c.now())
	payload := map[string]string{
		"BusinessShortCode": c.cfg.ShortCode,
		"Password":          Password(c.cfg.ShortCode, c.cfg.Passkey, ts),
		"Timestamp":         ts,
		"CheckoutRequestID": checkoutRequestID,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/stkpushquery/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.stkClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa: stk query: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	var out STKQueryResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("mpesa: stk query decode: %w", err)
	}
	return &out, nil
}
