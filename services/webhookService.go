package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/magnets-api/models"
	"github.com/Kariqs/magnets-api/payments"
)

// Outcome records what a delivered event did.
type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeNoop          Outcome = "noop"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeOrderNotFound Outcome = "order_not_found"
	OutcomeUnhandled     Outcome = "unhandled"
)

// transition computes the column changes an event makes to an order. A nil
// change set means the order is left alone.
type transition func(order *models.Order, event payments.Event) (map[string]any, Outcome)

var webhookTransitions = map[string]transition{
	payments.EventPaymentSucceeded: paymentSucceeded,
	payments.EventPaymentCompleted: paymentSucceeded,
	payments.EventPaymentFailed:    paymentFailed,
	payments.EventPaymentRefunded:  paymentRefunded,
}

func paymentSucceeded(order *models.Order, event payments.Event) (map[string]any, Outcome) {
	switch {
	case order.PaymentStatus == models.PaymentStatusCompleted:
		return nil, OutcomeNoop
	case !order.PaymentStatus.CanTransitionTo(models.PaymentStatusCompleted):
		return nil, OutcomeIgnored
	}

	changes := map[string]any{"payment_status": models.PaymentStatusCompleted}
	if order.Status == models.OrderStatusPending {
		changes["status"] = models.OrderStatusProcessing
	}
	if event.Data.ID != "" {
		changes["payment_id"] = event.Data.ID
	}
	return changes, OutcomeApplied
}

func paymentFailed(order *models.Order, _ payments.Event) (map[string]any, Outcome) {
	switch {
	case order.PaymentStatus == models.PaymentStatusFailed:
		return nil, OutcomeNoop
	case !order.PaymentStatus.CanTransitionTo(models.PaymentStatusFailed):
		return nil, OutcomeIgnored
	}
	return map[string]any{"payment_status": models.PaymentStatusFailed}, OutcomeApplied
}

// paymentRefunded always wins: the money has left, so the order is cancelled
// whatever its fulfilment state.
func paymentRefunded(order *models.Order, _ payments.Event) (map[string]any, Outcome) {
	if order.PaymentStatus == models.PaymentStatusRefunded && order.Status == models.OrderStatusCancelled {
		return nil, OutcomeNoop
	}
	return map[string]any{
		"payment_status": models.PaymentStatusRefunded,
		"status":         models.OrderStatusCancelled,
	}, OutcomeApplied
}

type WebhookService struct {
	db     *gorm.DB
	secret string
	logger *zap.Logger
}

func NewWebhookService(db *gorm.DB, secret string, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		db:     db,
		secret: secret,
		logger: logger.With(zap.String("component", "webhooks")),
	}
}

// Reconcile authenticates a raw webhook body and applies it to the matching
// order. Redelivered events are detected through the webhook_events ledger,
// which is written in the same transaction as the order change.
func (s *WebhookService) Reconcile(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	if err := payments.VerifySignature(payload, signature, s.secret); err != nil {
		if errors.Is(err, payments.ErrMissingSecret) {
			s.logger.Error("webhook rejected: secret not configured")
			return "", ConfigurationError("webhook secret not configured")
		}
		s.logger.Warn("webhook rejected", zap.Error(err))
		return "", SignatureError(err)
	}

	event, err := payments.ParseEvent(payload)
	if err != nil {
		return "", &Error{Kind: KindValidation, Message: "invalid webhook payload", Err: err}
	}

	log := s.logger.With(
		zap.String("event_key", event.Key()),
		zap.String("event_type", event.Type),
		zap.String("payment_id", event.Data.ID),
	)

	apply, ok := webhookTransitions[event.Type]
	if !ok {
		log.Info("unhandled webhook event")
		return OutcomeUnhandled, nil
	}

	for attempt := 1; ; attempt++ {
		outcome, err := s.reconcileOnce(ctx, event, payload, apply)
		if errors.Is(err, errStaleOrder) && attempt < maxUpdateAttempts {
			log.Debug("order changed during webhook, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			log.Error("webhook processing failed", zap.Error(err))
			return "", PersistenceError("failed to process webhook", err)
		}

		if outcome == OutcomeOrderNotFound {
			log.Warn("webhook for unknown order", zap.String("order_id", event.Data.Metadata.OrderID))
		} else {
			log.Info("webhook processed", zap.String("outcome", string(outcome)))
		}
		return outcome, nil
	}
}

func (s *WebhookService) reconcileOnce(ctx context.Context, event payments.Event, payload []byte, apply transition) (Outcome, error) {
	var outcome Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.WebhookEvent{
			EventKey:    event.Key(),
			EventType:   event.Type,
			PaymentID:   event.Data.ID,
			Payload:     datatypes.JSON(payload),
			ProcessedAt: time.Now().UTC(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if res.Error != nil {
			return fmt.Errorf("record webhook event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			outcome = OutcomeDuplicate
			return nil
		}

		order, err := findEventOrder(tx, event)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = OutcomeOrderNotFound
			return tx.Model(&record).Update("outcome", string(outcome)).Error
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		changes, result := apply(order, event)
		if len(changes) > 0 {
			if err := compareAndSwap(tx, order, changes); err != nil {
				return err
			}
		}
		outcome = result
		return tx.Model(&record).Updates(map[string]any{
			"outcome":  string(outcome),
			"order_id": order.ID,
		}).Error
	})
	return outcome, err
}

// findEventOrder resolves the order from metadata when present, then from
// the intents issued at checkout, then from the order's current payment id.
func findEventOrder(tx *gorm.DB, event payments.Event) (*models.Order, error) {
	var order models.Order
	if id := event.Data.Metadata.OrderID; id != "" {
		err := tx.Where("id = ?", id).First(&order).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return &order, err
		}
	}
	if event.Data.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var intent models.PaymentIntent
	err := tx.Where("id = ?", event.Data.ID).Take(&intent).Error
	switch {
	case err == nil:
		if err := tx.Where("id = ?", intent.OrderID).First(&order).Error; err != nil {
			return nil, err
		}
		return &order, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := tx.Where("payment_id = ?", event.Data.ID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
