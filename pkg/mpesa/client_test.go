package mpesa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, authURL, baseURL string) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:        baseURL,
		AuthURL:        authURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/api/v1/payments/callback",
	})
}

func fakeAuthServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		// base64("key:secret")
		assert.Equal(t, "Basic a2V5OnNlY3JldA==", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":"3599"}`))
	}))
}

func TestAccessToken_CachedUntilExpiry(t *testing.T) {
	var calls int32
	auth := fakeAuthServer(t, &calls)
	defer auth.Close()

	c := newTestClient(t, auth.URL, "unused")
	now := time.Now()
	c.now = func() time.Time { return now }

	tok, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// second call inside the ttl hits the cache
	tok, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// past expiry the token is refetched
	now = now.Add(time.Hour)
	_, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAccessToken_ShortLivedTokenStillCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"access_token":"tok-short","expires_in":"20"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "unused")
	now := time.Now()
	c.now = func() time.Time { return now }

	_, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// a 20s ttl caches for 10s, not ttl minus the full 30s margin
	now = now.Add(5 * time.Second)
	_, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	now = now.Add(10 * time.Second)
	_, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAccessToken_AuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "unused")
	_, err := c.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestAccessToken_MissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"something":"else"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "unused")
	_, err := c.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestInitiateSTKPush(t *testing.T) {
	var calls int32
	auth := fakeAuthServer(t, &calls)
	defer auth.Close()

	var gotPayload stkPushPayload
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stkpush/v1/processrequest", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{
			"MerchantRequestID":"29115-34620561-1",
			"CheckoutRequestID":"ws_CO_191220191020363925",
			"ResponseCode":"0",
			"ResponseDescription":"Success. Request accepted for processing",
			"CustomerMessage":"Success. Request accepted for processing"
		}`))
	}))
	defer api.Close()

	c := newTestClient(t, auth.URL, api.URL)
	fixed := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)
	c.now = func() time.Time { return fixed }

	resp, err := c.InitiateSTKPush(context.Background(), "254712345678", 1000.4, "LP-TEST")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)

	assert.Equal(t, "174379", gotPayload.BusinessShortCode)
	assert.Equal(t, "20240307090502", gotPayload.Timestamp)
	assert.Equal(t, Password("174379", "passkey", "20240307090502"), gotPayload.Password)
	assert.Equal(t, "CustomerPayBillOnline", gotPayload.TransactionType)
	assert.EqualValues(t, 1000, gotPayload.Amount) // rounded to an integer
	assert.Equal(t, "254712345678", gotPayload.PartyA)
	assert.Equal(t, "174379", gotPayload.PartyB)
	assert.Equal(t, "254712345678", gotPayload.PhoneNumber)
	assert.Equal(t, "https://example.com/api/v1/payments/callback", gotPayload.CallBackURL)
	assert.Equal(t, "LP-TEST", gotPayload.AccountReference)
}

func TestInitiateSTKPush_InvalidAmount(t *testing.T) {
	c := newTestClient(t, "unused", "unused")
	for _, amount := range []float64{0, -5} {
		_, err := c.InitiateSTKPush(context.Background(), "254712345678", amount, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestInitiateSTKPush_ProviderRejected(t *testing.T) {
	var calls int32
	auth := fakeAuthServer(t, &calls)
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessage":"Invalid PhoneNumber"}`))
	}))
	defer api.Close()

	c := newTestClient(t, auth.URL, api.URL)
	_, err := c.InitiateSTKPush(context.Background(), "254712345678", 100, "")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "Invalid PhoneNumber")
}

func TestQuerySTKStatus(t *testing.T) {
	var calls int32
	auth := fakeAuthServer(t, &calls)
	defer auth.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stkpushquery/v1/query", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ws_CO_1", payload["CheckoutRequestID"])
		_, _ = w.Write([]byte(`{
			"ResponseCode":"0",
			"ResultCode":"1032",
			"ResultDesc":"Request cancelled by user",
			"CheckoutRequestID":"ws_CO_1"
		}`))
	}))
	defer api.Close()

	c := newTestClient(t, auth.URL, api.URL)
	resp, err := c.QuerySTKStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, "1032", resp.ResultCode)
	assert.Equal(t, "Request cancelled by user", resp.ResultDesc)
}
