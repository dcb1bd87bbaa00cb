package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReference(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		reference string
		wantErr   bool
	}{
		{"mpesa valid", MethodMpesa, "QAB12CD34E", false},
		{"mpesa too short", MethodMpesa, "QAB12CD34", true},
		{"mpesa too long", MethodMpesa, "QAB12CD34EF", true},
		{"mpesa non-alphanumeric", MethodMpesa, "QAB12-D34E", true},
		{"bank valid", MethodBank, "TRX12345678901", false},
		{"bank wrong length", MethodBank, "TRX1234567", true},
		{"bank with space", MethodBank, "TRX12345 78901", true},
		{"unknown method", "paypal", "QAB12CD34E", true},
		{"empty reference", MethodMpesa, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReference(tt.method, tt.reference)
			if tt.wantErr {
				assert.Error(t, err)

				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewBaseEvent(t *testing.T) {
	a := newBaseEvent("X")
	b := newBaseEvent("X")

	assert.Equal(t, "X", a.EventType)
	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.False(t, a.Timestamp.IsZero())
}
