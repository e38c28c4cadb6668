package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingErrorTypeKey      = "error_type"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingOperationKey      = "operation"
	LoggingErrorCodeKey      = "error_code"
	LoggingPrincipalIDKey    = "principal_id"
	LoggingPrincipalRoleKey  = "principal_role"
	LoggingAppointmentIDKey  = "appointment_id"
	LoggingDoctorIDKey       = "doctor_id"
	LoggingWithdrawalIDKey   = "withdrawal_id"
	LoggingStatusKey         = "status"
	LoggingAmountKey         = "amount"
	LoggingOrderIDKey        = "order_id"
	LoggingPaymentIDKey      = "payment_id"
	LoggingRefundIDKey       = "refund_id"
	LoggingAttemptKey        = "attempt"
	LoggingRedisKey          = "redis_key"
	LoggingLockValueKey      = "lock_value"
	LoggingLockExpirationKey = "lock_expiration"
	LoggingQueueKey          = "queue"
	LoggingObjectPathKey     = "object_path"
	LoggingCountKey          = "count"
)
