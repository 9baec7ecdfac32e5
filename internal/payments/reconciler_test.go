package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chanport/channels-bot/internal/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	resolved []domain.Payment
}

func (n *recordingNotifier) PaymentResolved(ctx context.Context, payment domain.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, payment)
}

func (n *recordingNotifier) snapshot() []domain.Payment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Payment(nil), n.resolved...)
}

func TestReconciler_NotifiesOnResolution(t *testing.T) {
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
		Return(domain.StatusPaid, nil).Once()

	notifier := &recordingNotifier{}
	reconciler := NewReconciler(service, notifier, 10*time.Millisecond, testLogger())
	reconciler.Start()

	assert.Eventually(t, func() bool {
		return len(notifier.snapshot()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, reconciler.Stop(stopCtx))

	resolved := notifier.snapshot()
	require.Len(t, resolved, 1)
	assert.Equal(t, "inv-1", resolved[0].InvoiceID)
	assert.Equal(t, domain.StatusPaid, resolved[0].Status)

	client.AssertExpectations(t)
}

func TestReconciler_StopWithoutPendingWork(t *testing.T) {
	client := &mockGateway{}
	service, _ := newTestService(t, client, configuredCredentials())

	reconciler := NewReconciler(service, nil, time.Hour, testLogger())
	reconciler.Start()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, reconciler.Stop(stopCtx))
}
