package constvars

var CustomValidationErrorMessages = map[string]string{
	"required":     "is required",
	"gt":           "must be greater than %s",
	"gte":          "must be at least %s",
	"lte":          "must be at most %s",
	"min":          "must be at least %s characters long",
	"max":          "maximum at %s characters long",
	"oneof":        "must be one of %s",
	"payment_mode": "must be one of Bank Transfer, UPI, Paytm, Other",
	"datetime":     "must be a valid date",
}

var TagsWithParams = map[string]bool{
	"gt":    true,
	"gte":   true,
	"lte":   true,
	"min":   true,
	"max":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientTooManyRequests               = "too many requests, please try again later"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientWithdrawalNotFound            = "withdrawal not found"
	ErrClientDoctorNotFound                = "doctor not found"
	ErrClientAppointmentForbidden          = "you are not allowed to act on this appointment"
	ErrClientInvalidTransition             = "appointment cannot move to the requested status"
	ErrClientConcurrentModification        = "the record was modified by another request, please retry"
	ErrClientSignatureMismatch             = "payment verification failed"
	ErrClientGatewayFailed                 = "payment provider request failed, please retry"
	ErrClientPaymentNotEligible            = "payment is not eligible for refund"
	ErrClientPaymentAmountMismatch         = "captured amount does not match the appointment fee"
	ErrClientPaymentAlreadyRecorded        = "appointment already has a different payment recorded"
	ErrClientRefundAmountExceeded          = "refund amount exceeds the refundable amount"
	ErrClientRefundAlreadyProcessed        = "refund already processed"
	ErrClientRefundInProgress              = "a refund for this appointment is already in progress"
	ErrClientAppointmentNotCancelable      = "appointment must be canceled before refund"
	ErrClientAppointmentNoPayment          = "appointment has no captured payment"
	ErrClientBankDetailsMissing            = "add bank account or UPI details before requesting a withdrawal"
	ErrClientWithdrawalOutOfRange          = "withdrawal amount is outside the allowed range"
	ErrClientWithdrawalAlreadyProcessed    = "withdrawal is no longer pending"
	ErrClientWithdrawalInProgress          = "another withdrawal operation is in progress, please retry"
	ErrClientServiceNotConfigured          = "service is not configured, contact support"
	ErrClientInvalidCommissionRate         = "commission rate must be between 0 and 100"
	ErrClientInvalidFee                    = "fee must not be negative"
)

// Error messages for developers
const (
	ErrDevInvalidInput                = "invalid input"
	ErrDevCannotParseJSON             = "cannot parse JSON"
	ErrDevCannotParseDate             = "cannot parse date"
	ErrDevCannotMarshalJSON           = "cannot marshal JSON"
	ErrDevValidationFailed            = "validation failed"
	ErrDevURLParamIDValidationFailed  = "url param %s failed validation"
	ErrDevMissingRequestID            = "request id missing from context"
	ErrDevServerDeadlineExceeded      = "server deadline exceeded"
	ErrDevServerProcess               = "server failed to process"
	ErrDevAuthTokenMissing            = "token missing"
	ErrDevAuthTokenInvalidOrExpired   = "token invalid or expired"
	ErrDevAuthPrincipalMissing        = "principal missing from context"
	ErrDevRoleTypeDoesntMatch         = "role type doesn't match"
	ErrDevRateLimited                 = "rate limit exceeded"
	ErrDevDBFailedToFindDocument      = "failed to find document"
	ErrDevDBFailedToInsertDocument    = "failed to insert document"
	ErrDevDBFailedToUpdateDocument    = "failed to update document"
	ErrDevDBFailedToIterateDocuments  = "failed to iterate documents"
	ErrDevDBFailedToCreateIndex       = "failed to create index"
	ErrDevDBStringNotObjectID         = "string is not a valid ObjectID"
	ErrDevRedisSet                    = "failed to set redis key"
	ErrDevRedisGetNoData              = "failed to get redis key %s"
	ErrDevRedisDelete                 = "failed to delete redis key"
	ErrDevRedisIncrement              = "failed to increment redis key"
	ErrDevRedisUnlock                 = "failed to release redis lock"
	ErrDevMinioFailedToCreateObject   = "failed to create object in bucket %s"
	ErrDevRabbitMQPublish             = "failed to publish message to queue %s"
	ErrDevAppointmentNotFound         = "appointment not found"
	ErrDevWithdrawalNotFound          = "withdrawal not found"
	ErrDevDoctorNotFound              = "doctor not found"
	ErrDevAppointmentForbidden        = "principal is not a participant of the appointment"
	ErrDevInvalidTransition           = "illegal transition from %s to %s"
	ErrDevConcurrentModification      = "conditional update lost after retries"
	ErrDevSignatureMismatch           = "payment signature mismatch"
	ErrDevGatewayRequest              = "payment gateway request failed"
	ErrDevPaymentNotEligible          = "payment status %s is not refundable"
	ErrDevPaymentAmountMismatch       = "captured %d minor units, expected %d"
	ErrDevPaymentAlreadyRecorded      = "appointment already paid with payment %s"
	ErrDevRefundAmountExceeded        = "refund amount %s exceeds max refundable %s"
	ErrDevRefundAlreadyProcessed      = "refund already processed"
	ErrDevRefundInProgress            = "refund lock held by another request"
	ErrDevAppointmentNotCancelable    = "appointment status %s is not canceled"
	ErrDevAppointmentNoPayment        = "appointment payment status %s is not paid"
	ErrDevBankDetailsMissing          = "doctor has no bank account or UPI id"
	ErrDevWithdrawalOutOfRange        = "amount %s outside [%s, %s]"
	ErrDevWithdrawalAlreadyProcessed  = "withdrawal status %s is not pending"
	ErrDevWithdrawalInProgress        = "withdrawal lock held by another request"
	ErrDevPaymentGatewayNotConfigured = "payment gateway credentials are not configured"
	ErrDevSettingsNotConfigured       = "platform settings are not configured"
	ErrDevInvalidCommissionRate       = "commission rate %s outside [0, 100]"
	ErrDevInvalidFee                  = "fee %s is negative"
)
