package service

import (
	"fmt"
	"time"

	"rentalhub/internal/models"

	"github.com/google/uuid"
)

// Payment methods and their reference-code lengths. A reference code is
// the customer's proof-of-payment string from the external mobile-money
// or bank transfer.
const (
	MethodMpesa = "mpesa"
	MethodBank  = "bank"

	mpesaReferenceLen = 10
	bankReferenceLen  = 14
)

// ValidationError marks malformed request input; handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateReference checks the method-specific reference-code format:
// 10 alphanumeric characters for mpesa, 14 for bank.
func ValidateReference(method, reference string) error {
	var want int
	switch method {
	case MethodMpesa:
		want = mpesaReferenceLen
	case MethodBank:
		want = bankReferenceLen
	default:
		return validationf("unsupported payment method: %q", method)
	}

	if len(reference) != want {
		return validationf("reference code for %s must be %d characters", method, want)
	}
	for _, r := range reference {
		alnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !alnum {
			return validationf("reference code must be alphanumeric")
		}
	}
	return nil
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
