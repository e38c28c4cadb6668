package utils

import (
	"telemed-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("payment_mode", validatePaymentMode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePaymentMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constvars.PaymentModeBankTransfer, constvars.PaymentModeUPI, constvars.PaymentModePaytm, constvars.PaymentModeOther:
		return true
	}
	return false
}
