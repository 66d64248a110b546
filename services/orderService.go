package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/magnets-api/models"
)

// OrderNotifier receives every committed order. Implementations must return
// immediately; the order has already been persisted.
type OrderNotifier interface {
	NotifyOrderCreated(order models.Order)
}

type CustomerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

// OrderItemInput is a cart line. Price is the line total in minor units and
// already includes the quantity.
type OrderItemInput struct {
	ImageURL    string `json:"imageUrl" validate:"required"`
	AssetID     string `json:"assetId"`
	Size        string `json:"size" validate:"required,magnet_size"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	BorderStyle string `json:"borderStyle" validate:"required,magnet_border"`
	Finish      string `json:"finish" validate:"required,magnet_finish"`
	Price       int64  `json:"price" validate:"gte=0,lte=100000000"`
}

type CreateOrderInput struct {
	User                CustomerInput          `json:"user"`
	Items               []OrderItemInput       `json:"items" validate:"required,min=1,dive"`
	ShippingAddress     models.ShippingAddress `json:"shippingAddress"`
	SpecialInstructions string                 `json:"specialInstructions"`
}

type OrderService struct {
	db       *gorm.DB
	numbers  *OrderNumberGenerator
	notifier OrderNotifier
	logger   *zap.Logger
}

func NewOrderService(db *gorm.DB, notifier OrderNotifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		db:       db,
		numbers:  NewOrderNumberGenerator(),
		notifier: notifier,
		logger:   logger.With(zap.String("component", "orders")),
	}
}

// CreateOrder persists an order, its items and (if new) its customer in one
// transaction, then hands the order to the notifier.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}

	var total int64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		next, ok := addMinor(total, item.Price)
		if !ok {
			return nil, ValidationError("order total is too large")
		}
		total = next
		items = append(items, models.OrderItem{
			ImageURL:    item.ImageURL,
			AssetID:     item.AssetID,
			Size:        item.Size,
			Quantity:    item.Quantity,
			BorderStyle: item.BorderStyle,
			Finish:      item.Finish,
			Price:       item.Price,
		})
	}

	order := models.Order{
		OrderNumber:         s.numbers.Next(),
		Items:               items,
		TotalAmount:         total,
		Status:              models.OrderStatusPending,
		PaymentStatus:       models.PaymentStatusPending,
		ShippingAddress:     datatypes.NewJSONType(in.ShippingAddress),
		SpecialInstructions: in.SpecialInstructions,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := findOrCreateCustomer(tx, in.User)
		if err != nil {
			return err
		}
		order.CustomerID = customer.ID
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.Customer = customer
		return nil
	})
	if err != nil {
		s.logger.Error("order creation failed", zap.String("email", in.User.Email), zap.Error(err))
		return nil, PersistenceError("failed to create order", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)),
	)

	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(order)
	}
	return &order, nil
}

// addMinor adds a non-negative amount to a running total, reporting false
// instead of wrapping past math.MaxInt64.
func addMinor(total, amount int64) (int64, bool) {
	if amount > math.MaxInt64-total {
		return total, false
	}
	return total + amount, true
}

// GetOrder loads an order with its items and customer.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx), id)
}

// findOrCreateCustomer inserts the customer unless the email already exists,
// then reads the winning row. Concurrent checkouts with one email converge on
// a single customer through the unique index.
func findOrCreateCustomer(tx *gorm.DB, in CustomerInput) (*models.Customer, error) {
	candidate := models.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	var customer models.Customer
	if err := tx.Where("email = ?", in.Email).First(&customer).Error; err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return &customer, nil
}

func loadOrder(db *gorm.DB, id string) (*models.Order, error) {
	if id == "" {
		return nil, ValidationError("orderId is required")
	}
	var order models.Order
	err := db.Preload("Items").Preload("Customer").Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("order %s not found", id)
	}
	if err != nil {
		return nil, PersistenceError("failed to load order", err)
	}
	return &order, nil
}
