package constvars

const (
	AppointmentStatusPending     = "pending"
	AppointmentStatusAccepted    = "accepted"
	AppointmentStatusRejected    = "rejected"
	AppointmentStatusRescheduled = "rescheduled"
	AppointmentStatusCompleted   = "completed"
	AppointmentStatusCanceled    = "canceled"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusBooked    = "booked"
	BookingStatusNotBooked = "not_booked"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	RefundStatusPending   = "Pending"
	RefundStatusApproved  = "Approved"
	RefundStatusProcessed = "Processed"
	RefundStatusFailed    = "Failed"
)

const (
	PrescriptionStatusPending   = "Pending"
	PrescriptionStatusCompleted = "Completed"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

const (
	WithdrawalMethodUPI          = "UPI"
	WithdrawalMethodBankTransfer = "Bank Transfer"
)

const (
	PaymentModeBankTransfer = "Bank Transfer"
	PaymentModeUPI          = "UPI"
	PaymentModePaytm        = "Paytm"
	PaymentModeOther        = "Other"
)

const (
	MongoCollectionAppointments     = "appointments"
	MongoCollectionWithdrawals      = "withdrawals"
	MongoCollectionDoctors          = "doctors"
	MongoCollectionPlatformSettings = "platform_settings"
)

const (
	PlatformSettingsSingletonKey = "platform"
)

const (
	RedisKeyPlatformSettings        = "platform_settings"
	RedisKeyWithdrawalSequence      = "withdrawals:sequence"
	RedisKeyWithdrawalDoctorLock    = "locks:withdrawals:doctor:%s"
	RedisKeyRefundAppointmentLock   = "locks:refunds:appointment:%s"
	WithdrawalDisplayIDFormat       = "#WD%04d"
	InvoiceObjectPathFormat         = "invoices/%s/%s.txt"
	RefundManualIDFormat            = "MANUAL-%d"
	RefundAlreadyRefundedIDFormat   = "GATEWAY-%s-ALREADY-REFUNDED"
	GatewayReceiptAppointmentFormat = "appointment_%s"
	GatewayReceiptOrderFormat       = "order_%d"
)

const (
	GatewayCurrencyINR            = "INR"
	GatewayPaymentStatusCaptured  = "captured"
	GatewayMinorUnitsPerMajorUnit = 100
)

const (
	NotificationEventPaymentVerified      = "payment_verified"
	NotificationEventAppointmentBooked    = "appointment_booked"
	NotificationEventAppointmentAccepted  = "appointment_accepted"
	NotificationEventAppointmentRejected  = "appointment_rejected"
	NotificationEventAppointmentResched   = "appointment_rescheduled"
	NotificationEventAppointmentCompleted = "appointment_completed"
	NotificationEventAppointmentCanceled  = "appointment_canceled"
	NotificationEventRefundProcessed      = "refund_processed"
	NotificationEventWithdrawalApproved   = "withdrawal_approved"
	NotificationEventWithdrawalRejected   = "withdrawal_rejected"
)
