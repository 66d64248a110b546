package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/magnets-api/models"
	"github.com/Kariqs/magnets-api/payments"
)

type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, req payments.IntentRequest) (payments.Intent, error)
}

// CreatePaymentInput mirrors the checkout request. Amount is in display
// units, e.g. 12.00 for AED 12.
type CreatePaymentInput struct {
	OrderID       string          `json:"orderId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail" validate:"required"`
	CustomerName  string          `json:"customerName"`
}

type PaymentResult struct {
	PaymentID   string `json:"paymentId"`
	PaymentURL  string `json:"paymentUrl"`
	EmbeddedURL string `json:"embeddedUrl"`
}

type PaymentService struct {
	db              *gorm.DB
	provider        PaymentProvider
	defaultCurrency string
	logger          *zap.Logger
}

func NewPaymentService(db *gorm.DB, provider PaymentProvider, defaultCurrency string, logger *zap.Logger) *PaymentService {
	if defaultCurrency == "" {
		defaultCurrency = "AED"
	}
	return &PaymentService{
		db:              db,
		provider:        provider,
		defaultCurrency: strings.ToUpper(defaultCurrency),
		logger:          logger.With(zap.String("component", "payments")),
	}
}

// ToMinorUnits converts a display amount to the provider's minor unit,
// rounding half away from zero. Whole-cent amounts convert exactly.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreatePayment starts a provider payment intent for an order and records the
// intent id. Order and payment statuses are left for the webhook to change.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*PaymentResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	if !in.Amount.IsPositive() {
		return nil, ValidationError("amount is required")
	}

	amount := ToMinorUnits(in.Amount)
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	db := s.db.WithContext(ctx)
	order, err := loadOrder(db, in.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentStatus.AwaitingPayment() {
		return nil, ValidationError("order %s is not awaiting payment", order.OrderNumber)
	}
	if amount != order.TotalAmount {
		return nil, ValidationError("amount does not match order total")
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, payments.IntentRequest{
		OrderID:      order.ID,
		Amount:       amount,
		Currency:     currency,
		CustomerName: in.CustomerName,
	})
	if err != nil {
		s.logger.Error("payment intent creation failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, PaymentProviderError(err)
	}

	if err := s.recordIntent(db, order, intent, amount, currency); err != nil {
		s.logger.Error("payment intent created but not saved",
			zap.String("order_id", order.ID), zap.String("payment_id", intent.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("payment intent created",
		zap.String("order_id", order.ID),
		zap.String("payment_id", intent.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency),
	)

	return &PaymentResult{
		PaymentID:   intent.ID,
		PaymentURL:  intent.RedirectURL,
		EmbeddedURL: intent.EmbeddedURL,
	}, nil
}

// recordIntent stores intent against its order, then makes it the order's
// current payment id with a version check. The intent row is written first
// and kept even if the order has since stopped awaiting payment, so a
// webhook for any intent issued at checkout still finds its order.
func (s *PaymentService) recordIntent(db *gorm.DB, order *models.Order, intent payments.Intent, amount int64, currency string) error {
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PaymentIntent{
		ID:       intent.ID,
		OrderID:  order.ID,
		Amount:   amount,
		Currency: currency,
	}).Error; err != nil {
		return PersistenceError("failed to save payment", err)
	}

	for attempt := 1; ; attempt++ {
		if !order.PaymentStatus.AwaitingPayment() {
			return ValidationError("order %s is not awaiting payment", order.OrderNumber)
		}
		err := compareAndSwap(db, order, map[string]any{"payment_id": intent.ID})
		if err == nil {
			return nil
		}
		if !errors.Is(err, errStaleOrder) {
			return PersistenceError("failed to save payment", err)
		}
		if attempt == maxUpdateAttempts {
			return ConflictError("order %s is being updated, try again", order.OrderNumber)
		}
		if order, err = loadOrder(db, order.ID); err != nil {
			return err
		}
	}
}
