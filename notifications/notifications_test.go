package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"

	"github.com/Kariqs/magnets-api/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:            "order-1",
		OrderNumber:   "ORD-LX2K3-AB12C",
		TotalAmount:   1597,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Customer:      &models.Customer{Name: "Layla <b>", Email: "layla@example.com"},
		Items: []models.OrderItem{
			{Size: "small", Quantity: 2, BorderStyle: "none", Finish: "matte", Price: 798},
			{Size: "large", Quantity: 1, BorderStyle: "thin", Finish: "glossy", Price: 799},
		},
		ShippingAddress: datatypes.NewJSONType(models.ShippingAddress{
			Street:  "12 Marina Walk",
			City:    "Dubai",
			Country: "AE",
		}),
		SpecialInstructions: "Gift wrap",
	}
}

func TestRenderOrderCreated(t *testing.T) {
	subject, html, err := RenderOrderCreated(sampleOrder(), "AED", "https://shop.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "New Order #ORD-LX2K3-AB12C", subject)
	assert.Contains(t, html, "AED 15.97")
	assert.Contains(t, html, "AED 7.98")
	assert.Contains(t, html, "Order Items (2)")
	assert.Contains(t, html, "Not provided")
	assert.Contains(t, html, "Gift wrap")
	assert.Contains(t, html, "12 Marina Walk")
	assert.Contains(t, html, "Layla &lt;b&gt;")
	assert.Contains(t, html, "https://shop.example.com/admin/dashboard")
}

func TestRenderWithoutInstructions(t *testing.T) {
	order := sampleOrder()
	order.SpecialInstructions = ""
	order.Customer = nil

	_, html, err := RenderOrderCreated(order, "AED", "")
	require.NoError(t, err)
	assert.NotContains(t, html, "Special Instructions")
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func TestDispatcherDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, DispatcherConfig{Recipient: "owner@example.com"}, zap.NewNop())

	d.NotifyOrderCreated(sampleOrder())
	require.NoError(t, d.Close(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"owner@example.com"}, mailer.sent[0].To)
	assert.Equal(t, "New Order #ORD-LX2K3-AB12C", mailer.sent[0].Subject)
}

func TestDispatcherAbsorbsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	calls := 0
	mailer := MailerFunc(func(context.Context, Message) error {
		calls++
		if calls == 1 {
			panic("mail provider exploded")
		}
		return errors.New("smtp down")
	})
	d := NewDispatcher(mailer, DispatcherConfig{Recipient: "owner@example.com", Workers: 1}, zap.New(core))

	d.NotifyOrderCreated(sampleOrder())
	d.NotifyOrderCreated(sampleOrder())
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, logs.FilterMessage("notification panicked").Len())
	assert.Equal(t, 1, logs.FilterMessage("notification send failed").Len())
}

func TestDispatcherNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	mailer := MailerFunc(func(context.Context, Message) error {
		<-release
		return nil
	})
	d := NewDispatcher(mailer, DispatcherConfig{Recipient: "owner@example.com", Workers: 1, QueueSize: 1}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.NotifyOrderCreated(sampleOrder())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyOrderCreated blocked")
	}
	close(release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherSkipsWithoutRecipient(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, DispatcherConfig{}, zap.NewNop())

	d.NotifyOrderCreated(sampleOrder())
	require.NoError(t, d.Close(context.Background()))
	assert.Empty(t, mailer.sent)
}

func TestDispatcherAfterClose(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, DispatcherConfig{Recipient: "owner@example.com"}, zap.NewNop())
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() { d.NotifyOrderCreated(sampleOrder()) })
	assert.Empty(t, mailer.sent)
}

func TestResendMailer(t *testing.T) {
	var got resendEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	mailer := NewResendMailer(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	err := mailer.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)

	assert.Equal(t, defaultFrom, got.From)
	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "Hi", got.Subject)
}

func TestResendMailerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewResendMailer(ResendConfig{APIKey: "bad", BaseURL: srv.URL}).
		Send(context.Background(), Message{To: []string{"a@example.com"}})
	assert.Error(t, err)
}
