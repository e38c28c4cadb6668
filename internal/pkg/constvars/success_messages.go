package constvars

const (
	AppointmentBookedMessage                = "Appointment booked successfully"
	AppointmentFetchedMessage               = "Appointment fetched successfully"
	AppointmentsFetchedMessage              = "Appointments fetched successfully"
	AppointmentAcceptedMessage              = "Appointment accepted successfully"
	AppointmentRejectedMessage              = "Appointment rejected successfully"
	AppointmentRescheduledMessage           = "Appointment rescheduled successfully"
	AppointmentCompletedMessage             = "Appointment completed successfully"
	AppointmentCanceledMessage              = "Appointment canceled successfully"
	AppointmentPrescriptionCompletedMessage = "Prescription marked as completed"
	AppointmentNotesUpdatedMessage          = "Notes updated successfully"
	PaymentOrderCreatedMessage              = "Order created successfully"
	PaymentVerifiedMessage                  = "Payment verified successfully"
	RefundProcessedMessage                  = "Refund processed successfully"
	EarningsFetchedMessage                  = "Earnings fetched successfully"
	WithdrawalRequestedMessage              = "Withdrawal requested successfully"
	WithdrawalsFetchedMessage               = "Withdrawals fetched successfully"
	WithdrawalApprovedMessage               = "Withdrawal approved successfully"
	WithdrawalRejectedMessage               = "Withdrawal rejected successfully"
	SettingsFetchedMessage                  = "Platform settings fetched successfully"
	SettingsUpdatedMessage                  = "Platform settings updated successfully"
)
