package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
	apperrors "github.com/chanport/channels-bot/internal/errors"
)

const (
	createInvoicePath = "/v1/payment"
	invoiceInfoPath   = "/v1/payment/info"

	defaultCreateTimeout = 20 * time.Second
	defaultStatusTimeout = 15 * time.Second
)

// CredentialsSource supplies the current processor credentials. The
// provider re-reads its backing file on change, so every call sees the
// latest configuration.
type CredentialsSource interface {
	Credentials() domain.Credentials
}

// CryptomusClient implements Client against the Cryptomus merchant API.
type CryptomusClient struct {
	baseURL       string
	creds         CredentialsSource
	httpClient    *http.Client
	createTimeout time.Duration
	statusTimeout time.Duration
	log           *slog.Logger
}

// Options tunes the Cryptomus client.
type Options struct {
	BaseURL       string
	CreateTimeout time.Duration
	StatusTimeout time.Duration
}

// NewCryptomusClient constructs a client for the Cryptomus merchant API.
func NewCryptomusClient(opts Options, creds CredentialsSource, log *slog.Logger) *CryptomusClient {
	if log == nil {
		log = slog.Default()
	}

	createTimeout := opts.CreateTimeout
	if createTimeout <= 0 {
		createTimeout = defaultCreateTimeout
	}

	statusTimeout := opts.StatusTimeout
	if statusTimeout <= 0 {
		statusTimeout = defaultStatusTimeout
	}

	return &CryptomusClient{
		baseURL:       opts.BaseURL,
		creds:         creds,
		httpClient:    &http.Client{},
		createTimeout: createTimeout,
		statusTimeout: statusTimeout,
		log:           log,
	}
}

type createInvoicePayload struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	OrderID  string `json:"order_id"`
	Network  string `json:"network"`
}

type invoiceInfoPayload struct {
	UUID string `json:"uuid"`
}

type apiResponse struct {
	Result *apiResult `json:"result"`
}

type apiResult struct {
	UUID          string `json:"uuid"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
}

// CreateInvoice issues a USDT invoice within the 20 second budget.
func (c *CryptomusClient) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	credentials := c.creds.Credentials()
	if !credentials.Configured() {
		return nil, apperrors.NewGatewayUnavailableError()
	}

	payload := createInvoicePayload{
		Amount:   strconv.Itoa(req.Amount),
		Currency: "USDT",
		OrderID:  req.OrderID,
		Network:  req.Network,
	}

	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	var parsed apiResponse
	if err := c.post(ctx, createInvoicePath, credentials, payload, &parsed); err != nil {
		return nil, apperrors.NewGatewayError("create invoice", err)
	}

	if parsed.Result == nil || parsed.Result.UUID == "" || parsed.Result.URL == "" {
		return nil, apperrors.NewGatewayError("create invoice",
			fmt.Errorf("incomplete invoice in processor response"))
	}

	return &Invoice{
		ID:     parsed.Result.UUID,
		PayURL: parsed.Result.URL,
	}, nil
}

// InvoiceStatus fetches the processor status within the 15 second
// budget, degrading to StatusUnknown on any failure.
func (c *CryptomusClient) InvoiceStatus(ctx context.Context, invoiceID string) (domain.PaymentStatus, error) {
	credentials := c.creds.Credentials()
	if !credentials.Configured() {
		return domain.StatusUnknown, apperrors.NewGatewayUnavailableError()
	}

	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	var parsed apiResponse
	if err := c.post(ctx, invoiceInfoPath, credentials, invoiceInfoPayload{UUID: invoiceID}, &parsed); err != nil {
		return domain.StatusUnknown, apperrors.NewGatewayError("invoice status", err)
	}

	if parsed.Result == nil || parsed.Result.PaymentStatus == "" {
		return domain.StatusUnknown, apperrors.NewGatewayError("invoice status",
			fmt.Errorf("missing payment_status in processor response"))
	}

	return domain.PaymentStatus(parsed.Result.PaymentStatus), nil
}

func (c *CryptomusClient) post(ctx context.Context, path string, credentials domain.Credentials, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("merchant", credentials.MerchantID)
	httpReq.Header.Set("sign", "")
	httpReq.Header.Set("Authorization", credentials.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("post %s: processor returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}
