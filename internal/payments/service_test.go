package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chanport/channels-bot/internal/domain"
	apperrors "github.com/chanport/channels-bot/internal/errors"
	"github.com/chanport/channels-bot/internal/gateway"
	"github.com/chanport/channels-bot/internal/repository"
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

func configuredCredentials() staticCredentials {
	return staticCredentials{creds: domain.Credentials{APIKey: "key", MerchantID: "merchant"}}
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateInvoice(ctx context.Context, req gateway.CreateInvoiceRequest) (*gateway.Invoice, error) {
	args := m.Called(ctx, req)
	invoice, _ := args.Get(0).(*gateway.Invoice)
	return invoice, args.Error(1)
}

func (m *mockGateway) InvoiceStatus(ctx context.Context, invoiceID string) (domain.PaymentStatus, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(domain.PaymentStatus), args.Error(1)
}

func newTestService(t *testing.T, client gateway.Client, creds gateway.CredentialsSource) (*Service, repository.Stores) {
	t.Helper()

	stores := repository.NewFileStores(t.TempDir(), testLogger())
	service := NewService(stores.Payments, stores.Amount, creds, client, "tron", testLogger())

	return service, stores
}

func TestRequestPayment_SnapshotsAmount(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	require.NoError(t, stores.Amount.Set(ctx, 25))

	client.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req gateway.CreateInvoiceRequest) bool {
		return req.Amount == 25 && req.Network == "tron" && req.OrderID != ""
	})).Return(&gateway.Invoice{ID: "inv-1", PayURL: "https://pay/inv-1"}, nil).Once()

	payment, err := service.RequestPayment(ctx, 42, "alice")
	require.NoError(t, err)
	assert.Equal(t, 25, payment.Amount)
	assert.Equal(t, domain.StatusPending, payment.Status)

	// Changing the configured amount later never touches the record.
	require.NoError(t, stores.Amount.Set(ctx, 99))

	persisted, err := stores.Payments.List(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, 25, persisted[0].Amount)

	client.AssertExpectations(t)
}

func TestRequestPayment_WithoutCredentials(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, staticCredentials{})

	_, err := service.RequestPayment(ctx, 42, "alice")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E301", appErr.Code)

	persisted, err := stores.Payments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	client.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestRequestPayment_GatewayFailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	client.On("CreateInvoice", mock.Anything, mock.Anything).
		Return((*gateway.Invoice)(nil), apperrors.NewGatewayError("create invoice", errors.New("timeout"))).Once()

	_, err := service.RequestPayment(ctx, 42, "alice")
	require.Error(t, err)

	persisted, err := stores.Payments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	client.AssertExpectations(t)
}

func TestReconcileOnce_PendingUntilPaid(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	client.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&gateway.Invoice{ID: "inv-1", PayURL: "https://pay/inv-1"}, nil).Once()

	_, err := service.RequestPayment(ctx, 42, "alice")
	require.NoError(t, err)

	client.On("InvoiceStatus", mock.Anything, "inv-1").
		Return(domain.StatusPending, nil).Twice()
	client.On("InvoiceStatus", mock.Anything, "inv-1").
		Return(domain.StatusPaid, nil).Once()

	for i := 0; i < 2; i++ {
		resolved, err := service.ReconcileOnce(ctx)
		require.NoError(t, err)
		assert.Empty(t, resolved)
	}

	resolved, err := service.ReconcileOnce(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, domain.StatusPaid, resolved[0].Status)
	require.NotNil(t, resolved[0].UpdatedAt)

	persisted, err := stores.Payments.List(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, domain.StatusPaid, persisted[0].Status)
	require.NotNil(t, persisted[0].UpdatedAt)

	// A resolved payment is never queried again.
	resolved, err = service.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, resolved)

	client.AssertExpectations(t)
}

func TestReconcileOnce_UnknownStatusIsNotTerminal(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	require.NoError(t, stores.Payments.Add(ctx, domain.Payment{
		UserID:    42,
		Amount:    10,
		InvoiceID: "inv-1",
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}))

	client.On("InvoiceStatus", mock.Anything, "inv-1").
		Return(domain.StatusUnknown, apperrors.NewGatewayError("invoice status", errors.New("boom"))).Once()

	resolved, err := service.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, resolved)

	persisted, err := stores.Payments.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, persisted[0].Status)

	client.AssertExpectations(t)
}

func TestReconcileOnce_IsolatesPerRecordFailures(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	for _, id := range []string{"inv-1", "inv-2"} {
		require.NoError(t, stores.Payments.Add(ctx, domain.Payment{
			UserID:    42,
			Amount:    10,
			InvoiceID: id,
			Status:    domain.StatusPending,
			CreatedAt: time.Now(),
		}))
	}

	client.On("InvoiceStatus", mock.Anything, "inv-1").
		Return(domain.StatusUnknown, errors.New("transport error")).Once()
	client.On("InvoiceStatus", mock.Anything, "inv-2").
		Return(domain.StatusExpired, nil).Once()

	resolved, err := service.ReconcileOnce(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "inv-2", resolved[0].InvoiceID)
	assert.Equal(t, domain.StatusExpired, resolved[0].Status)

	client.AssertExpectations(t)
}

func TestReconcileOnce_SingleFlight(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	require.NoError(t, stores.Payments.Add(ctx, domain.Payment{
		UserID:    42,
		Amount:    10,
		InvoiceID: "inv-1",
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}))

	release := make(chan struct{})
	entered := make(chan struct{})

	client.On("InvoiceStatus", mock.Anything, "inv-1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(domain.StatusPaid, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := service.ReconcileOnce(ctx)
		assert.NoError(t, err)
	}()

	<-entered

	// While the first pass holds the lock, a second invocation must be
	// a no-op instead of double-processing the same payment.
	resolved, err := service.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	close(release)
	wg.Wait()

	client.AssertExpectations(t)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	client := &mockGateway{}
	service, stores := newTestService(t, client, configuredCredentials())

	statuses := []domain.PaymentStatus{
		domain.StatusPaid,
		domain.StatusPending,
		domain.StatusFailed,
		domain.StatusPaid,
		domain.StatusExpired,
		domain.StatusPending,
	}
	for i, status := range statuses {
		require.NoError(t, stores.Payments.Add(ctx, domain.Payment{
			UserID:    int64(i),
			Amount:    10,
			InvoiceID: string(rune('a' + i)),
			Status:    status,
			CreatedAt: time.Now(),
		}))
	}

	stats, err := service.Stats(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Paid)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Failed)

	// Newest first, capped at the requested size.
	require.Len(t, stats.Recent, 5)
	assert.Equal(t, int64(5), stats.Recent[0].UserID)
	assert.Equal(t, int64(1), stats.Recent[4].UserID)
}
