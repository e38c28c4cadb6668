package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Appointment, error)
	FindAll(ctx context.Context, filter *requests.AppointmentFilter) ([]models.Appointment, error)
	FindByDoctorIDAndStatus(ctx context.Context, doctorID, status string) ([]models.Appointment, error)
	FindByStatuses(ctx context.Context, statuses []string) ([]models.Appointment, error)
	// UpdateIfVersion replaces the stored document only when its version
	// still equals expectedVersion. It reports whether the write happened.
	UpdateIfVersion(ctx context.Context, appointment *models.Appointment, expectedVersion int64) (bool, error)
}

type AppointmentUsecase interface {
	Book(ctx context.Context, principal models.Principal, request *requests.BookAppointment) (*models.Appointment, error)
	GetByID(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error)
	List(ctx context.Context, principal models.Principal, filter *requests.AppointmentFilter) ([]models.Appointment, error)
	Accept(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error)
	Reject(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RejectAppointment) (*models.Appointment, error)
	Reschedule(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RescheduleAppointment) (*models.Appointment, error)
	Complete(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CompleteAppointment) (*models.Appointment, error)
	Cancel(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CancelAppointment) (*models.Appointment, error)
	CompletePrescription(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error)
	UpdateNotes(ctx context.Context, principal models.Principal, appointmentID string, request *requests.UpdateAppointmentNotes) (*models.Appointment, error)
}
