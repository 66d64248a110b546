package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/magnets-api/models"
	"github.com/Kariqs/magnets-api/utils"
)

const (
	bcryptCost = 10

	defaultPageLimit = 15
	maxPageLimit     = 100

	msgInvalidCredentials = "Invalid credentials"
)

// AdminCredentials are the bootstrap login accepted when no admin row exists
// for the email yet.
type AdminCredentials struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	Admin models.Admin
}

type ListOrdersInput struct {
	Status        string
	PaymentStatus string
	Page          int
	Limit         int
}

type OrderPage struct {
	Orders []models.Order
	Total  int64
	Page   int
	Limit  int
}

type UpdateOrderStatusInput struct {
	OrderID       string                `json:"orderId"`
	Status        *models.OrderStatus   `json:"status"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus"`
	// Version, when given, must match the stored version.
	Version *int `json:"version"`
}

type AdminService struct {
	db        *gorm.DB
	tokens    *utils.TokenIssuer
	bootstrap AdminCredentials
	logger    *zap.Logger
}

func NewAdminService(db *gorm.DB, tokens *utils.TokenIssuer, bootstrap AdminCredentials, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:        db,
		tokens:    tokens,
		bootstrap: bootstrap,
		logger:    logger.With(zap.String("component", "admin")),
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Login checks admin credentials and returns a signed bearer token. The first
// successful login with the bootstrap credentials creates the admin row.
func (s *AdminService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ValidationError("email and password are required")
	}

	db := s.db.WithContext(ctx)
	var admin models.Admin
	err := db.Where("email = ?", email).First(&admin).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !s.matchesBootstrap(email, password) {
			return nil, AuthError(msgInvalidCredentials)
		}
		created, err := s.createBootstrapAdmin(db, email, password)
		if err != nil {
			s.logger.Error("bootstrap admin creation failed", zap.Error(err))
			return nil, PersistenceError("failed to create admin", err)
		}
		admin = *created
	default:
		return nil, PersistenceError("failed to load admin", err)
	}

	if err := comparePasswords(admin.Password, password); err != nil {
		s.logger.Info("admin login rejected", zap.String("email", email))
		return nil, AuthError(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(admin.ID, admin.Email)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return nil, &Error{Kind: KindConfiguration, Message: "failed to generate token", Err: err}
	}

	s.logger.Info("admin logged in", zap.Uint("admin_id", admin.ID))
	return &LoginResult{Token: token, Admin: admin}, nil
}

func (s *AdminService) matchesBootstrap(email, password string) bool {
	if s.bootstrap.Email == "" || s.bootstrap.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.bootstrap.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.bootstrap.Password)) == 1
	return emailOK && passwordOK
}

// createBootstrapAdmin tolerates a concurrent login creating the same row.
func (s *AdminService) createBootstrapAdmin(db *gorm.DB, email, password string) (*models.Admin, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	candidate := models.Admin{Email: email, Password: hashed}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, err
	}

	var admin models.Admin
	if err := db.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap admin created", zap.Uint("admin_id", admin.ID))
	return &admin, nil
}

// ListOrders returns orders newest first with items and customer loaded.
// A Limit of zero uses the default page size.
func (s *AdminService) ListOrders(ctx context.Context, in ListOrdersInput) (*OrderPage, error) {
	filter := s.db.WithContext(ctx).Model(&models.Order{})
	if in.Status != "" {
		status := models.OrderStatus(in.Status)
		if !status.Valid() {
			return nil, ValidationError("unknown order status %q", in.Status)
		}
		filter = filter.Where("status = ?", status)
	}
	if in.PaymentStatus != "" {
		status := models.PaymentStatus(in.PaymentStatus)
		if !status.Valid() {
			return nil, ValidationError("unknown payment status %q", in.PaymentStatus)
		}
		filter = filter.Where("payment_status = ?", status)
	}
	filter = filter.Session(&gorm.Session{})

	page := max(in.Page, 1)
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)

	var total int64
	if err := filter.Count(&total).Error; err != nil {
		return nil, PersistenceError("unable to fetch orders", err)
	}

	orders := []models.Order{}
	if err := filter.
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Order("order_number DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		return nil, PersistenceError("unable to fetch orders", err)
	}

	return &OrderPage{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// UpdateOrderStatus overwrites the supplied status fields. Operators may move
// an order between any two known statuses.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, in UpdateOrderStatusInput) (*models.Order, error) {
	if in.OrderID == "" {
		return nil, ValidationError("orderId is required")
	}
	if in.Status != nil && *in.Status == "" {
		in.Status = nil
	}
	if in.PaymentStatus != nil && *in.PaymentStatus == "" {
		in.PaymentStatus = nil
	}
	if in.Status == nil && in.PaymentStatus == nil {
		return nil, ValidationError("status or paymentStatus is required")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ValidationError("unknown order status %q", *in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, ValidationError("unknown payment status %q", *in.PaymentStatus)
	}

	db := s.db.WithContext(ctx)
	for attempt := 1; ; attempt++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.Where("id = ?", in.OrderID).First(&order).Error; err != nil {
				return err
			}
			if in.Version != nil && *in.Version != order.Version {
				return errStaleOrder
			}

			changes := map[string]any{}
			if in.Status != nil {
				changes["status"] = *in.Status
			}
			if in.PaymentStatus != nil {
				changes["payment_status"] = *in.PaymentStatus
			}
			if err := compareAndSwap(tx, &order, changes); err != nil {
				return err
			}

			s.logger.Info("order status overridden",
				zap.String("order_id", order.ID),
				zap.String("status_from", string(order.Status)),
				zap.String("payment_status_from", string(order.PaymentStatus)),
				zap.Any("changes", changes),
			)
			return nil
		})

		switch {
		case err == nil:
			return loadOrder(db, in.OrderID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, NotFoundError("order %s not found", in.OrderID)
		case errors.Is(err, errStaleOrder):
			if in.Version == nil && attempt < maxUpdateAttempts {
				continue
			}
			return nil, ConflictError("order %s was modified by another update", in.OrderID)
		default:
			s.logger.Error("order status update failed", zap.String("order_id", in.OrderID), zap.Error(err))
			return nil, PersistenceError("failed to update order", err)
		}
	}
}
