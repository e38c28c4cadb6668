package coretest

import (
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"time"
)

var (
	Patient = models.Principal{ID: "patient-1", Role: constvars.RolePatient}
	Doctor  = models.Principal{ID: "doctor-1", Role: constvars.RoleDoctor}
	Admin   = models.Principal{ID: "admin-1", Role: constvars.RoleAdmin}
)

// PaidAppointment is a booked appointment for Doctor and Patient with a
// 500 fee at 30/10 rates and a captured payment.
func PaidAppointment(status string) *models.Appointment {
	capturedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Appointment{
		PatientID:             Patient.ID,
		DoctorID:              Doctor.ID,
		PatientName:           "Asha",
		PatientAge:            31,
		PatientGender:         "female",
		ScheduledAt:           time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Status:                status,
		BookingStatus:         constvars.BookingStatusBooked,
		ConsultationFee:       500,
		PatientCommissionRate: 30,
		DoctorCommissionRate:  10,
		TotalFee:              650,
		PaymentStatus:         constvars.PaymentStatusPaid,
		Payment: &models.PaymentDetails{
			OrderID:        "order_1",
			PaymentID:      "pay_1",
			AmountCaptured: 650,
			CapturedAt:     &capturedAt,
		},
		Version: 1,
	}
}

func CompletedAppointment(fee, doctorRate float64, completedAt time.Time) *models.Appointment {
	appointment := PaidAppointment(constvars.AppointmentStatusCompleted)
	appointment.ConsultationFee = fee
	appointment.DoctorCommissionRate = doctorRate
	appointment.TotalFee = fee * (1 + appointment.PatientCommissionRate/100)
	appointment.CompletedAt = &completedAt
	return appointment
}

func BankedDoctor(id string) *models.Doctor {
	return &models.Doctor{
		ID:              id,
		Name:            "Dr. Rao",
		Email:           "rao@example.com",
		ConsultationFee: 500,
		BankDetails: models.BankDetails{
			AccountHolderName: "R Rao",
			AccountNumber:     "1234567890",
			IFSCCode:          "HDFC0000001",
			BankName:          "HDFC",
		},
	}
}
