package models

import (
	"time"

	"telemed-service/internal/pkg/constvars"
)

type Appointment struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	PatientID string `json:"patientId" bson:"patientId"`
	DoctorID  string `json:"doctorId" bson:"doctorId"`

	PatientName   string   `json:"patientName" bson:"patientName"`
	PatientAge    int      `json:"patientAge" bson:"patientAge"`
	PatientGender string   `json:"patientGender" bson:"patientGender"`
	Symptoms      string   `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Notes         string   `json:"notes,omitempty" bson:"notes,omitempty"`
	Records       []string `json:"records,omitempty" bson:"records,omitempty"`

	ScheduledAt      time.Time  `json:"scheduledAt" bson:"scheduledAt"`
	RescheduledAt    *time.Time `json:"rescheduledAt,omitempty" bson:"rescheduledAt,omitempty"`
	RescheduleReason string     `json:"rescheduleReason,omitempty" bson:"rescheduleReason,omitempty"`

	Status        string `json:"status" bson:"status"`
	BookingStatus string `json:"bookingStatus" bson:"bookingStatus"`
	RejectReason  string `json:"rejectReason,omitempty" bson:"rejectReason,omitempty"`

	ConsultationFee       float64 `json:"consultationFee" bson:"consultationFee"`
	PatientCommissionRate float64 `json:"patientCommissionRate" bson:"patientCommissionRate"`
	DoctorCommissionRate  float64 `json:"doctorCommissionRate" bson:"doctorCommissionRate"`
	TotalFee              float64 `json:"totalFee" bson:"totalFee"`

	Payment       *PaymentDetails `json:"payment,omitempty" bson:"payment,omitempty"`
	PaymentStatus string          `json:"paymentStatus" bson:"paymentStatus"`

	Refund       *RefundDetails `json:"refund,omitempty" bson:"refund,omitempty"`
	RefundStatus string         `json:"refundStatus,omitempty" bson:"refundStatus,omitempty"`
	RefundedAt   *time.Time     `json:"refundedAt,omitempty" bson:"refundedAt,omitempty"`

	CallDuration       int        `json:"callDuration,omitempty" bson:"callDuration,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	PrescriptionStatus string     `json:"prescriptionStatus,omitempty" bson:"prescriptionStatus,omitempty"`

	CancellationReason string     `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty" bson:"canceledAt,omitempty"`

	// Version increases by one on every committed mutation.
	Version   int64 `json:"version" bson:"version"`
	TimeModel `bson:",inline"`
}

type PaymentDetails struct {
	OrderID        string     `json:"orderId" bson:"orderId"`
	PaymentID      string     `json:"paymentId" bson:"paymentId"`
	Signature      string     `json:"-" bson:"signature"`
	Method         string     `json:"method,omitempty" bson:"method,omitempty"`
	AmountCaptured float64    `json:"amountCaptured" bson:"amountCaptured"`
	CapturedAt     *time.Time `json:"capturedAt,omitempty" bson:"capturedAt,omitempty"`
}

type RefundDetails struct {
	RefundID            string    `json:"refundId" bson:"refundId"`
	Amount              float64   `json:"amount" bson:"amount"`
	Status              string    `json:"status" bson:"status"`
	Manual              bool      `json:"manual,omitempty" bson:"manual,omitempty"`
	InitiatedAt         time.Time `json:"initiatedAt" bson:"initiatedAt"`
	ProcessedAt         time.Time `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CancellationFee     float64   `json:"cancellationFee" bson:"cancellationFee"`
	GatewayFee          float64   `json:"gatewayFee" bson:"gatewayFee"`
	GSTOnGatewayFee     float64   `json:"gstOnGatewayFee" bson:"gstOnGatewayFee"`
	ResidualAfterRefund float64   `json:"residualAfterRefund" bson:"residualAfterRefund"`
}

// IsParticipant reports whether the principal is the patient or the doctor
// on the appointment.
func (a *Appointment) IsParticipant(principal Principal) bool {
	switch principal.Role {
	case constvars.RolePatient:
		return a.PatientID == principal.ID
	case constvars.RoleDoctor:
		return a.DoctorID == principal.ID
	}
	return false
}

// Clone returns a deep copy so a mutation can be discarded when a guard
// fails.
func (a *Appointment) Clone() *Appointment {
	clone := *a
	if a.Records != nil {
		clone.Records = append([]string(nil), a.Records...)
	}
	if a.Payment != nil {
		payment := *a.Payment
		clone.Payment = &payment
	}
	if a.Refund != nil {
		refund := *a.Refund
		clone.Refund = &refund
	}
	return &clone
}
