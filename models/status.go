package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

var validPaymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

// paymentTransitions lists the provider-driven moves. Operators are not bound
// by this table.
var paymentTransitions = map[PaymentStatus]map[PaymentStatus]struct{}{
	PaymentStatusPending: {
		PaymentStatusCompleted: {},
		PaymentStatusFailed:    {},
		PaymentStatusRefunded:  {},
	},
	PaymentStatusFailed: {
		PaymentStatusCompleted: {},
		PaymentStatusRefunded:  {},
	},
	PaymentStatusCompleted: {
		PaymentStatusRefunded: {},
	},
	PaymentStatusRefunded: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := validOrderStatuses[s]
	return ok
}

func (s PaymentStatus) Valid() bool {
	_, ok := validPaymentStatuses[s]
	return ok
}

// CanTransitionTo reports whether a payment event may move s to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	_, ok := paymentTransitions[s][next]
	return ok
}

// AwaitingPayment reports whether a new payment intent may be started.
func (s PaymentStatus) AwaitingPayment() bool {
	return s == PaymentStatusPending || s == PaymentStatusFailed
}
