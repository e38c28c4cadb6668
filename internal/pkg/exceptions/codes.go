package exceptions

const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeSignatureMismatch  = "SIGNATURE_MISMATCH"
	CodeGatewayError       = "GATEWAY_ERROR"
	CodeAmountExceeded     = "AMOUNT_EXCEEDED"
	CodeAlreadyProcessed   = "ALREADY_PROCESSED"
	CodeNotCancelable      = "NOT_CANCELABLE"
	CodeNoPayment          = "NO_PAYMENT"
	CodeBankDetailsMissing = "BANK_DETAILS_MISSING"
	CodeOutOfRange         = "OUT_OF_RANGE"
	CodeConfigurationError = "CONFIGURATION_ERROR"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTimeout      = "TIMEOUT"
	CodeInternal     = "INTERNAL"
)
