package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/models"
)

type DispatcherConfig struct {
	// Recipient receives every order notification. Empty disables sending.
	Recipient   string
	Currency    string
	AppURL      string
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher sends order notifications from a small worker pool so that
// checkout never waits on the mail provider.
type Dispatcher struct {
	mailer Mailer
	cfg    DispatcherConfig
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan models.Order
	wg     sync.WaitGroup
}

func NewDispatcher(mailer Mailer, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "AED"
	}

	d := &Dispatcher{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "notifications")),
		queue:  make(chan models.Order, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// NotifyOrderCreated enqueues order and returns immediately. The order is
// dropped when the queue is full or the dispatcher is closed.
func (d *Dispatcher) NotifyOrderCreated(order models.Order) {
	log := d.logger.With(zap.String("order_number", order.OrderNumber))
	if d.cfg.Recipient == "" {
		log.Warn("notification email not configured, skipping")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Warn("dispatcher closed, notification dropped")
		return
	}
	select {
	case d.queue <- order:
	default:
		log.Warn("notification queue full, notification dropped")
	}
}

// Close stops accepting orders and waits for queued ones to be sent, or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for order := range d.queue {
		d.deliver(order)
	}
}

func (d *Dispatcher) deliver(order models.Order) {
	log := d.logger.With(zap.String("order_id", order.ID), zap.String("order_number", order.OrderNumber))
	defer func() {
		if r := recover(); r != nil {
			log.Error("notification panicked", zap.Any("panic", r))
		}
	}()

	subject, html, err := RenderOrderCreated(order, d.cfg.Currency, d.cfg.AppURL)
	if err != nil {
		log.Error("notification render failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()
	if err := d.mailer.Send(ctx, Message{To: []string{d.cfg.Recipient}, Subject: subject, HTML: html}); err != nil {
		log.Error("notification send failed", zap.Error(err))
		return
	}
	log.Info("notification sent")
}
