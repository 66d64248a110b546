package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "x-ziina-signature"

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

var (
	ErrMissingSignature  = errors.New("no signature provided")
	ErrMissingSecret     = errors.New("webhook secret not configured")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	// ID is the payment intent id.
	ID       string        `json:"id"`
	Status   string        `json:"status,omitempty"`
	Metadata EventMetadata `json:"metadata"`
}

type EventMetadata struct {
	OrderID string `json:"orderId"`
}

// Sign returns the hex signature of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the exact payload bytes in
// constant time.
func VerifySignature(payload []byte, signature, secret string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return ErrMissingSecret
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return ErrSignatureMismatch
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}
	return nil
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(payload []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("invalid webhook payload: missing type")
	}
	return event, nil
}

// Key identifies an event for deduplication.
func (e Event) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Type + ":" + e.Data.ID
}
