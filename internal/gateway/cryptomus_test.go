package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanport/channels-bot/internal/domain"
	apperrors "github.com/chanport/channels-bot/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticCredentials struct {
	creds domain.Credentials
}

func (s staticCredentials) Credentials() domain.Credentials {
	return s.creds
}

func testCredentials() staticCredentials {
	return staticCredentials{creds: domain.Credentials{APIKey: "test-key", MerchantID: "test-merchant"}}
}

func newTestClient(baseURL string, creds CredentialsSource) *CryptomusClient {
	return NewCryptomusClient(Options{BaseURL: baseURL}, creds, testLogger())
}

func TestCreateInvoice(t *testing.T) {
	var captured struct {
		path     string
		merchant string
		auth     string
		body     map[string]string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.merchant = r.Header.Get("merchant")
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]string{
				"uuid": "inv-123",
				"url":  "https://pay.cryptomus.com/inv-123",
			},
		})
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL, testCredentials())

	invoice, err := client.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Amount:  25,
		OrderID: "42_1700000000",
		Network: "tron",
	})
	require.NoError(t, err)

	assert.Equal(t, "inv-123", invoice.ID)
	assert.Equal(t, "https://pay.cryptomus.com/inv-123", invoice.PayURL)

	assert.Equal(t, "/v1/payment", captured.path)
	assert.Equal(t, "test-merchant", captured.merchant)
	assert.Equal(t, "test-key", captured.auth)
	assert.Equal(t, "25", captured.body["amount"])
	assert.Equal(t, "USDT", captured.body["currency"])
	assert.Equal(t, "42_1700000000", captured.body["order_id"])
	assert.Equal(t, "tron", captured.body["network"])
}

func TestCreateInvoice_IncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]string{"uuid": "inv-1"}})
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL, testCredentials())

	_, err := client.CreateInvoice(context.Background(), CreateInvoiceRequest{Amount: 10, OrderID: "o"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E300", appErr.Code)
}

func TestCreateInvoice_WithoutCredentials(t *testing.T) {
	client := newTestClient("http://unused", staticCredentials{})

	_, err := client.CreateInvoice(context.Background(), CreateInvoiceRequest{Amount: 10, OrderID: "o"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E301", appErr.Code)
}

func TestInvoiceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment/info", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "inv-123", payload["uuid"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]string{"payment_status": "paid"},
		})
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL, testCredentials())

	status, err := client.InvoiceStatus(context.Background(), "inv-123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, status)
}

func TestInvoiceStatus_FailuresDegradeToUnknown(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "missing status field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]string{}})
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			t.Cleanup(srv.Close)

			client := newTestClient(srv.URL, testCredentials())

			status, err := client.InvoiceStatus(context.Background(), "inv-123")
			require.Error(t, err)
			assert.Equal(t, domain.StatusUnknown, status)
			assert.False(t, status.Terminal())
		})
	}
}

func TestInvoiceStatus_OpenEnum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]string{"payment_status": "wrong_amount"},
		})
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL, testCredentials())

	status, err := client.InvoiceStatus(context.Background(), "inv-123")
	require.NoError(t, err)

	// A status this code has never seen still counts as terminal.
	assert.Equal(t, domain.PaymentStatus("wrong_amount"), status)
	assert.True(t, status.Terminal())
}
