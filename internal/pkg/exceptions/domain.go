package exceptions

import (
	"fmt"
	"telemed-service/internal/pkg/constvars"
)

var (
	ErrAppointmentNotFound = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientAppointmentNotFound, constvars.ErrDevAppointmentNotFound).WithCode(CodeNotFound)
	}
	ErrWithdrawalNotFound = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientWithdrawalNotFound, constvars.ErrDevWithdrawalNotFound).WithCode(CodeNotFound)
	}
	ErrDoctorNotFound = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientDoctorNotFound, constvars.ErrDevDoctorNotFound).WithCode(CodeNotFound)
	}
	ErrAppointmentForbidden = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, constvars.ErrClientAppointmentForbidden, constvars.ErrDevAppointmentForbidden).WithCode(CodeForbidden)
	}
	ErrInvalidTransition = func(err error, from, to string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientInvalidTransition, fmt.Sprintf(constvars.ErrDevInvalidTransition, from, to)).WithCode(CodeInvalidTransition)
	}
	ErrConcurrentModification = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConcurrentModification, constvars.ErrDevConcurrentModification).WithCode(CodeConflict)
	}

	// Commission
	ErrInvalidFee = func(err error, fee string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientInvalidFee, fmt.Sprintf(constvars.ErrDevInvalidFee, fee)).WithCode(CodeValidationError)
	}
	ErrInvalidCommissionRate = func(err error, rate string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientInvalidCommissionRate, fmt.Sprintf(constvars.ErrDevInvalidCommissionRate, rate)).WithCode(CodeValidationError)
	}

	// Payments
	ErrSignatureMismatch = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientSignatureMismatch, constvars.ErrDevSignatureMismatch).WithCode(CodeSignatureMismatch)
	}
	ErrGatewayRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientGatewayFailed, constvars.ErrDevGatewayRequest).WithCode(CodeGatewayError)
	}
	ErrPaymentNotEligible = func(err error, status string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientPaymentNotEligible, fmt.Sprintf(constvars.ErrDevPaymentNotEligible, status)).WithCode(CodeGatewayError)
	}
	ErrPaymentAmountMismatch = func(err error, captured, expected int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientPaymentAmountMismatch, fmt.Sprintf(constvars.ErrDevPaymentAmountMismatch, captured, expected)).WithCode(CodeValidationError)
	}
	ErrPaymentAlreadyRecorded = func(err error, paymentID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientPaymentAlreadyRecorded, fmt.Sprintf(constvars.ErrDevPaymentAlreadyRecorded, paymentID)).WithCode(CodeAlreadyProcessed)
	}
	ErrPaymentGatewayNotConfigured = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientServiceNotConfigured, constvars.ErrDevPaymentGatewayNotConfigured).WithCode(CodeConfigurationError)
	}

	// Refunds
	ErrRefundAmountExceeded = func(err error, amount, maxRefundable string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientRefundAmountExceeded, fmt.Sprintf(constvars.ErrDevRefundAmountExceeded, amount, maxRefundable)).WithCode(CodeAmountExceeded)
	}
	ErrRefundAlreadyProcessed = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientRefundAlreadyProcessed, constvars.ErrDevRefundAlreadyProcessed).WithCode(CodeAlreadyProcessed)
	}
	ErrRefundInProgress = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientRefundInProgress, constvars.ErrDevRefundInProgress).WithCode(CodeConflict)
	}
	ErrAppointmentNotCancelable = func(err error, status string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientAppointmentNotCancelable, fmt.Sprintf(constvars.ErrDevAppointmentNotCancelable, status)).WithCode(CodeNotCancelable)
	}
	ErrAppointmentNoPayment = func(err error, paymentStatus string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientAppointmentNoPayment, fmt.Sprintf(constvars.ErrDevAppointmentNoPayment, paymentStatus)).WithCode(CodeNoPayment)
	}

	// Withdrawals
	ErrBankDetailsMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientBankDetailsMissing, constvars.ErrDevBankDetailsMissing).WithCode(CodeBankDetailsMissing)
	}
	ErrWithdrawalOutOfRange = func(err error, amount, minimum, available string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientWithdrawalOutOfRange, fmt.Sprintf(constvars.ErrDevWithdrawalOutOfRange, amount, minimum, available)).WithCode(CodeOutOfRange)
	}
	ErrWithdrawalAlreadyProcessed = func(err error, status string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientWithdrawalAlreadyProcessed, fmt.Sprintf(constvars.ErrDevWithdrawalAlreadyProcessed, status)).WithCode(CodeInvalidTransition)
	}
	ErrWithdrawalInProgress = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientWithdrawalInProgress, constvars.ErrDevWithdrawalInProgress).WithCode(CodeConflict)
	}

	// Settings
	ErrSettingsNotConfigured = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientServiceNotConfigured, constvars.ErrDevSettingsNotConfigured).WithCode(CodeConfigurationError)
	}
)
