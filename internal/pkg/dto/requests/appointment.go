package requests

import "time"

type BookAppointment struct {
	DoctorID      string               `json:"doctorId" validate:"required"`
	PatientName   string               `json:"patientName" validate:"required"`
	PatientAge    int                  `json:"patientAge" validate:"gte=0,lte=150"`
	PatientGender string               `json:"patientGender" validate:"required"`
	Symptoms      string               `json:"symptoms"`
	Records       []string             `json:"records"`
	ScheduledAt   time.Time            `json:"scheduledAt" validate:"required"`
	Payment       PaymentAuthorization `json:"payment" validate:"required"`
}

type PaymentAuthorization struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type RejectAppointment struct {
	Reason string `json:"reason" validate:"required"`
}

type RescheduleAppointment struct {
	NewDate time.Time `json:"newDate" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
}

type CompleteAppointment struct {
	CallDuration int `json:"callDuration" validate:"required,gt=0"`
}

type CancelAppointment struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateAppointmentNotes struct {
	Notes string `json:"notes" validate:"required"`
}

type AppointmentFilter struct {
	Status    string `validate:"omitempty,oneof=pending accepted rejected rescheduled completed canceled"`
	DoctorID  string
	PatientID string
}
