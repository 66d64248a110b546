package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kariqs/magnets-api/models"
	"github.com/Kariqs/magnets-api/payments"
	"github.com/Kariqs/magnets-api/testutil"
)

const testWebhookSecret = "whsec_test"

func newWebhookService(t *testing.T) (*WebhookService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewWebhookService(db, testWebhookSecret, zap.NewNop()), db
}

func eventPayload(id, eventType, paymentID, orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"id":%q,"metadata":{"orderId":%q}}}`,
		id, eventType, paymentID, orderID,
	))
}

func deliver(t *testing.T, svc *WebhookService, payload []byte) Outcome {
	t.Helper()
	outcome, err := svc.Reconcile(context.Background(), payload, payments.Sign(payload, testWebhookSecret))
	require.NoError(t, err)
	return outcome
}

func reload(t *testing.T, db *gorm.DB, id string) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return order
}

func setStatuses(t *testing.T, db *gorm.DB, id string, status models.OrderStatus, payment models.PaymentStatus) {
	t.Helper()
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
		"status":         status,
		"payment_status": payment,
	}).Error)
}

func TestReconcileSignatureChecks(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)
	payload := eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_1", order.ID)

	_, err := svc.Reconcile(context.Background(), payload, "")
	assert.Equal(t, KindSignature, KindOf(err))

	_, err = svc.Reconcile(context.Background(), payload, payments.Sign(payload, "wrong"))
	assert.Equal(t, KindSignature, KindOf(err))

	tampered := eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_2", order.ID)
	_, err = svc.Reconcile(context.Background(), tampered, payments.Sign(payload, testWebhookSecret))
	assert.Equal(t, KindSignature, KindOf(err))

	unconfigured := NewWebhookService(db, "", zap.NewNop())
	_, err = unconfigured.Reconcile(context.Background(), payload, payments.Sign(payload, testWebhookSecret))
	assert.Equal(t, KindConfiguration, KindOf(err))

	stored := reload(t, db, order.ID)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)

	var events int64
	db.Model(&models.WebhookEvent{}).Count(&events)
	assert.Zero(t, events)
}

func TestReconcileMalformedBody(t *testing.T) {
	svc, _ := newWebhookService(t)
	payload := []byte(`{"type":`)

	_, err := svc.Reconcile(context.Background(), payload, payments.Sign(payload, testWebhookSecret))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestReconcileSucceeded(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)

	outcome := deliver(t, svc, eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_1", order.ID))
	assert.Equal(t, OutcomeApplied, outcome)

	stored := reload(t, db, order.ID)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pi_1", *stored.PaymentID)
	assert.Equal(t, order.Version+1, stored.Version)

	var event models.WebhookEvent
	require.NoError(t, db.First(&event, "event_key = ?", "evt_1").Error)
	assert.Equal(t, string(OutcomeApplied), event.Outcome)
	require.NotNil(t, event.OrderID)
	assert.Equal(t, order.ID, *event.OrderID)
}

func TestReconcileCompletedAlias(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)

	deliver(t, svc, eventPayload("evt_1", payments.EventPaymentCompleted, "pi_1", order.ID))
	assert.Equal(t, models.PaymentStatusCompleted, reload(t, db, order.ID).PaymentStatus)
}

func TestReconcileFindsOrderByPaymentID(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_id", "pi_stored").Error)

	payload := []byte(`{"type":"payment.succeeded","data":{"id":"pi_stored"}}`)
	assert.Equal(t, OutcomeApplied, deliver(t, svc, payload))
	assert.Equal(t, models.PaymentStatusCompleted, reload(t, db, order.ID).PaymentStatus)
}

func TestReconcileDuplicateDelivery(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)
	payload := eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_1", order.ID)

	assert.Equal(t, OutcomeApplied, deliver(t, svc, payload))
	first := reload(t, db, order.ID)

	assert.Equal(t, OutcomeDuplicate, deliver(t, svc, payload))
	second := reload(t, db, order.ID)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.Status, second.Status)
}

func TestReconcileTransitionTable(t *testing.T) {
	cases := []struct {
		name        string
		eventType   string
		fromStatus  models.OrderStatus
		fromPayment models.PaymentStatus
		outcome     Outcome
		wantStatus  models.OrderStatus
		wantPayment models.PaymentStatus
	}{
		{"success after failure", payments.EventPaymentSucceeded, models.OrderStatusPending, models.PaymentStatusFailed, OutcomeApplied, models.OrderStatusProcessing, models.PaymentStatusCompleted},
		{"success keeps shipped", payments.EventPaymentSucceeded, models.OrderStatusShipped, models.PaymentStatusPending, OutcomeApplied, models.OrderStatusShipped, models.PaymentStatusCompleted},
		{"success when completed", payments.EventPaymentSucceeded, models.OrderStatusProcessing, models.PaymentStatusCompleted, OutcomeNoop, models.OrderStatusProcessing, models.PaymentStatusCompleted},
		{"success after refund", payments.EventPaymentSucceeded, models.OrderStatusCancelled, models.PaymentStatusRefunded, OutcomeIgnored, models.OrderStatusCancelled, models.PaymentStatusRefunded},
		{"failure from pending", payments.EventPaymentFailed, models.OrderStatusPending, models.PaymentStatusPending, OutcomeApplied, models.OrderStatusPending, models.PaymentStatusFailed},
		{"failure when failed", payments.EventPaymentFailed, models.OrderStatusPending, models.PaymentStatusFailed, OutcomeNoop, models.OrderStatusPending, models.PaymentStatusFailed},
		{"late failure after success", payments.EventPaymentFailed, models.OrderStatusProcessing, models.PaymentStatusCompleted, OutcomeIgnored, models.OrderStatusProcessing, models.PaymentStatusCompleted},
		{"refund after success", payments.EventPaymentRefunded, models.OrderStatusShipped, models.PaymentStatusCompleted, OutcomeApplied, models.OrderStatusCancelled, models.PaymentStatusRefunded},
		{"refund from pending", payments.EventPaymentRefunded, models.OrderStatusPending, models.PaymentStatusPending, OutcomeApplied, models.OrderStatusCancelled, models.PaymentStatusRefunded},
		{"refund when refunded", payments.EventPaymentRefunded, models.OrderStatusCancelled, models.PaymentStatusRefunded, OutcomeNoop, models.OrderStatusCancelled, models.PaymentStatusRefunded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := newWebhookService(t)
			order := seedOrder(t, db)
			setStatuses(t, db, order.ID, tc.fromStatus, tc.fromPayment)

			outcome := deliver(t, svc, eventPayload("evt_"+tc.name, tc.eventType, "pi_1", order.ID))
			assert.Equal(t, tc.outcome, outcome)

			stored := reload(t, db, order.ID)
			assert.Equal(t, tc.wantStatus, stored.Status)
			assert.Equal(t, tc.wantPayment, stored.PaymentStatus)
		})
	}
}

func TestReconcileUnknownOrder(t *testing.T) {
	svc, db := newWebhookService(t)

	outcome := deliver(t, svc, eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_x", "missing"))
	assert.Equal(t, OutcomeOrderNotFound, outcome)

	var event models.WebhookEvent
	require.NoError(t, db.First(&event, "event_key = ?", "evt_1").Error)
	assert.Equal(t, string(OutcomeOrderNotFound), event.Outcome)
	assert.Nil(t, event.OrderID)
}

func TestReconcileUnhandledType(t *testing.T) {
	svc, db := newWebhookService(t)

	outcome := deliver(t, svc, eventPayload("evt_1", "payment.disputed", "pi_1", ""))
	assert.Equal(t, OutcomeUnhandled, outcome)

	var events int64
	db.Model(&models.WebhookEvent{}).Count(&events)
	assert.Zero(t, events)
}

func TestReconcileStorageFailure(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)
	require.NoError(t, db.Migrator().DropTable(&models.WebhookEvent{}))

	payload := eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_1", order.ID)
	_, err := svc.Reconcile(context.Background(), payload, payments.Sign(payload, testWebhookSecret))
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, models.PaymentStatusPending, reload(t, db, order.ID).PaymentStatus)
}

func TestReconcileConcurrentDeliveries(t *testing.T) {
	svc, db := newWebhookService(t)
	order := seedOrder(t, db)
	payload := eventPayload("evt_1", payments.EventPaymentSucceeded, "pi_1", order.ID)
	sig := payments.Sign(payload, testWebhookSecret)

	const n = 6
	outcomes := make(chan Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.Reconcile(context.Background(), payload, sig)
			assert.NoError(t, err)
			outcomes <- outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := map[Outcome]int{}
	for o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 1, counts[OutcomeApplied])
	assert.Equal(t, n-1, counts[OutcomeDuplicate])
	assert.Equal(t, order.Version+1, reload(t, db, order.ID).Version)
}

func TestPaymentTransitionFunctions(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending}

	changes, outcome := paymentSucceeded(order, payments.Event{})
	assert.Equal(t, OutcomeApplied, outcome)
	assert.NotContains(t, changes, "payment_id")
	assert.Equal(t, models.OrderStatusProcessing, changes["status"])
}

func TestReconcileSupersededIntent(t *testing.T) {
	checkout, provider, db := newPaymentService(t)
	order := seedOrder(t, db)
	in := CreatePaymentInput{
		OrderID:       order.ID,
		Amount:        decimal.RequireFromString("12.00"),
		CustomerEmail: "pay@example.com",
	}
	for _, id := range []string{"pi_1", "pi_2"} {
		provider.intent.ID = id
		_, err := checkout.CreatePayment(context.Background(), in)
		require.NoError(t, err)
	}

	webhooks := NewWebhookService(db, testWebhookSecret, zap.NewNop())
	payload := []byte(`{"id":"evt_pi_1","type":"payment.succeeded","data":{"id":"pi_1"}}`)
	assert.Equal(t, OutcomeApplied, deliver(t, webhooks, payload))

	stored := reload(t, db, order.ID)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pi_1", *stored.PaymentID)
}
