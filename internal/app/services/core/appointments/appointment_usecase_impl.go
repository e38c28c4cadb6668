package appointments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/commission"
	"telemed-service/internal/app/services/shared/payment_gateway"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	DoctorRepository      contracts.DoctorRepository
	SettingsUsecase       contracts.PlatformSettingsUsecase
	PaymentGateway        contracts.PaymentGatewayService
	Notifier              contracts.NotificationService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

var (
	appointmentUsecaseInstance contracts.AppointmentUsecase
	onceAppointmentUsecase     sync.Once
)

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	doctorRepository contracts.DoctorRepository,
	settingsUsecase contracts.PlatformSettingsUsecase,
	paymentGateway contracts.PaymentGatewayService,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	onceAppointmentUsecase.Do(func() {
		appointmentUsecaseInstance = newAppointmentUsecase(appointmentRepository, doctorRepository, settingsUsecase, paymentGateway, notifier, internalConfig, logger)
	})
	return appointmentUsecaseInstance
}

func newAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	doctorRepository contracts.DoctorRepository,
	settingsUsecase contracts.PlatformSettingsUsecase,
	paymentGateway contracts.PaymentGatewayService,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *appointmentUsecase {
	return &appointmentUsecase{
		AppointmentRepository: appointmentRepository,
		DoctorRepository:      doctorRepository,
		SettingsUsecase:       settingsUsecase,
		PaymentGateway:        paymentGateway,
		Notifier:              notifier,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

// Book creates a pending appointment once the gateway confirms the patient's
// payment. Rates are read from the current settings and frozen on the record.
func (uc *appointmentUsecase) Book(ctx context.Context, principal models.Principal, request *requests.BookAppointment) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
	)

	if principal.Role != constvars.RolePatient {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}

	request.DoctorID = strings.TrimSpace(request.DoctorID)
	request.PatientName = strings.TrimSpace(request.PatientName)
	request.PatientGender = strings.TrimSpace(request.PatientGender)
	request.Symptoms = strings.TrimSpace(request.Symptoms)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	doctor, err := uc.DoctorRepository.FindByID(ctx, request.DoctorID)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error calling DoctorRepository.FindByID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(nil)
	}

	rates, err := uc.SettingsUsecase.GetCurrentRates(ctx)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error calling SettingsUsecase.GetCurrentRates",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	fees, err := commission.ComputeFees(doctor.ConsultationFee, rates.PatientCommission, rates.DoctorCommission)
	if err != nil {
		return nil, err
	}

	// A retried booking with the same payment returns the first result.
	existing, err := uc.bookedWithPayment(ctx, principal, doctor.ID, request.Payment.PaymentID)
	if err != nil || existing != nil {
		return existing, err
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout())
	defer cancel()
	payment, err := payment_gateway.VerifyAuthorization(gatewayCtx, uc.PaymentGateway, request.Payment.OrderID, request.Payment.PaymentID, request.Payment.Signature)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book payment authorization failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderIDKey, request.Payment.OrderID),
			zap.String(constvars.LoggingPaymentIDKey, request.Payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	expectedMinorUnits := utils.ToMinorUnits(fees.TotalFee, constvars.GatewayMinorUnitsPerMajorUnit)
	if payment.Amount < expectedMinorUnits {
		return nil, exceptions.ErrPaymentAmountMismatch(nil, payment.Amount, expectedMinorUnits)
	}

	now := time.Now().UTC()
	capturedAt := payment.CapturedAt
	if capturedAt == nil {
		capturedAt = &now
	}
	appointment := &models.Appointment{
		PatientID:             principal.ID,
		DoctorID:              doctor.ID,
		PatientName:           request.PatientName,
		PatientAge:            request.PatientAge,
		PatientGender:         request.PatientGender,
		Symptoms:              request.Symptoms,
		Records:               request.Records,
		ScheduledAt:           request.ScheduledAt.UTC(),
		Status:                constvars.AppointmentStatusPending,
		BookingStatus:         constvars.BookingStatusBooked,
		ConsultationFee:       fees.ConsultationFee,
		PatientCommissionRate: rates.PatientCommission,
		DoctorCommissionRate:  rates.DoctorCommission,
		TotalFee:              fees.TotalFee,
		PaymentStatus:         constvars.PaymentStatusPaid,
		Payment: &models.PaymentDetails{
			OrderID:        request.Payment.OrderID,
			PaymentID:      request.Payment.PaymentID,
			Signature:      request.Payment.Signature,
			Method:         payment.Method,
			AmountCaptured: utils.FromMinorUnits(payment.Amount, constvars.GatewayMinorUnitsPerMajorUnit),
			CapturedAt:     capturedAt,
		},
		Version: 1,
		TimeModel: models.TimeModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	created, err := uc.AppointmentRepository.Create(ctx, appointment)
	if exceptions.HasCode(err, exceptions.CodeAlreadyProcessed) {
		// A concurrent retry inserted the booking first.
		existing, findErr := uc.bookedWithPayment(ctx, principal, doctor.ID, request.Payment.PaymentID)
		if findErr != nil || existing != nil {
			return existing, findErr
		}
	}
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error calling AppointmentRepository.Create",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, request.Payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "appointment_booked", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, created.ID),
		zap.String(constvars.LoggingDoctorIDKey, created.DoctorID),
		zap.Float64(constvars.LoggingAmountKey, created.TotalFee),
	)

	scheduled := created.ScheduledAt.Format(time.RFC1123)
	uc.notify(ctx, created.PatientID, constvars.NotificationEventAppointmentBooked, created,
		fmt.Sprintf("Your appointment with %s on %s is booked", doctor.Name, scheduled))
	uc.notify(ctx, created.DoctorID, constvars.NotificationEventAppointmentBooked, created,
		fmt.Sprintf("New appointment from %s on %s", created.PatientName, scheduled))

	return created, nil
}

// bookedWithPayment returns the caller's booking already holding paymentID,
// or nil when the payment is unused. A payment held by another booking is
// ALREADY_PROCESSED.
func (uc *appointmentUsecase) bookedWithPayment(ctx context.Context, principal models.Principal, doctorID, paymentID string) (*models.Appointment, error) {
	existing, err := uc.AppointmentRepository.FindByPaymentID(ctx, paymentID)
	if err != nil || existing == nil {
		return nil, err
	}
	if existing.PatientID != principal.ID || existing.DoctorID != doctorID {
		return nil, exceptions.ErrPaymentAlreadyRecorded(nil, paymentID)
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Book payment already used for this booking",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, existing.ID),
	)
	return existing, nil
}

func (uc *appointmentUsecase) GetByID(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.GetByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil)
	}
	if !principal.IsAdmin() && !appointment.IsParticipant(principal) {
		return nil, exceptions.ErrAppointmentForbidden(nil)
	}
	return appointment, nil
}

// List scopes patients and doctors to their own appointments. Admins may
// filter freely.
func (uc *appointmentUsecase) List(ctx context.Context, principal models.Principal, filter *requests.AppointmentFilter) ([]models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.List called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalRoleKey, principal.Role),
	)

	if filter == nil {
		filter = new(requests.AppointmentFilter)
	}
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	switch principal.Role {
	case constvars.RolePatient:
		filter.PatientID = principal.ID
		filter.DoctorID = ""
	case constvars.RoleDoctor:
		filter.DoctorID = principal.ID
		filter.PatientID = ""
	case constvars.RoleAdmin:
	default:
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}

	appointments, err := uc.AppointmentRepository.FindAll(ctx, filter)
	if err != nil {
		uc.Log.Error("appointmentUsecase.List error calling AppointmentRepository.FindAll",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return appointments, nil
}

func (uc *appointmentUsecase) Accept(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	appointment, err := uc.transition(ctx, "Accept", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := requireOwningDoctor(principal, a); err != nil {
			return false, err
		}
		if err := requireTransition(a, constvars.AppointmentStatusAccepted); err != nil {
			return false, err
		}
		a.Status = constvars.AppointmentStatusAccepted
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventAppointmentAccepted, appointment,
		fmt.Sprintf("Your appointment on %s has been accepted", appointment.ScheduledAt.Format(time.RFC1123)))
	return appointment, nil
}

// Reject ends a pending or rescheduled appointment. Any refund is handled
// separately by an admin.
func (uc *appointmentUsecase) Reject(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RejectAppointment) (*models.Appointment, error) {
	request.Reason = strings.TrimSpace(request.Reason)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.transition(ctx, "Reject", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := requireOwningDoctor(principal, a); err != nil {
			return false, err
		}
		if err := requireTransition(a, constvars.AppointmentStatusRejected); err != nil {
			return false, err
		}
		a.Status = constvars.AppointmentStatusRejected
		a.RejectReason = request.Reason
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventAppointmentRejected, appointment,
		fmt.Sprintf("Your appointment has been rejected. Reason: %s", request.Reason))
	return appointment, nil
}

// Reschedule moves the appointment to a new date. The owning doctor and
// admins may reschedule.
func (uc *appointmentUsecase) Reschedule(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RescheduleAppointment) (*models.Appointment, error) {
	request.Reason = strings.TrimSpace(request.Reason)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	newDate := request.NewDate.UTC()

	var previousDate time.Time
	appointment, err := uc.transition(ctx, "Reschedule", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if !principal.IsAdmin() {
			if err := requireOwningDoctor(principal, a); err != nil {
				return false, err
			}
		}
		if err := requireTransition(a, constvars.AppointmentStatusRescheduled); err != nil {
			return false, err
		}
		previousDate = a.ScheduledAt
		if a.RescheduledAt != nil {
			previousDate = *a.RescheduledAt
		}
		a.Status = constvars.AppointmentStatusRescheduled
		a.RescheduledAt = &newDate
		a.RescheduleReason = request.Reason
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your appointment has been rescheduled from %s to %s. Reason: %s",
		previousDate.Format(time.RFC1123), newDate.Format(time.RFC1123), request.Reason)
	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventAppointmentResched, appointment, message)
	if principal.IsAdmin() {
		uc.notify(ctx, appointment.DoctorID, constvars.NotificationEventAppointmentResched, appointment, message)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) Complete(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CompleteAppointment) (*models.Appointment, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.transition(ctx, "Complete", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := requireOwningDoctor(principal, a); err != nil {
			return false, err
		}
		if err := requireTransition(a, constvars.AppointmentStatusCompleted); err != nil {
			return false, err
		}
		completedAt := time.Now().UTC()
		a.Status = constvars.AppointmentStatusCompleted
		a.CallDuration = request.CallDuration
		a.CompletedAt = &completedAt
		a.PrescriptionStatus = constvars.PrescriptionStatusPending
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventAppointmentCompleted, appointment,
		"Your consultation is complete. Your prescription will follow shortly")
	return appointment, nil
}

// Cancel is available to admins and the owning patient. A paid appointment
// is flagged for refund.
func (uc *appointmentUsecase) Cancel(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CancelAppointment) (*models.Appointment, error) {
	request.Reason = strings.TrimSpace(request.Reason)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.transition(ctx, "Cancel", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if !principal.IsAdmin() && !(principal.Role == constvars.RolePatient && a.PatientID == principal.ID) {
			return false, exceptions.ErrAppointmentForbidden(nil)
		}
		if err := requireTransition(a, constvars.AppointmentStatusCanceled); err != nil {
			return false, err
		}
		canceledAt := time.Now().UTC()
		a.Status = constvars.AppointmentStatusCanceled
		a.CancellationReason = request.Reason
		a.CanceledAt = &canceledAt
		if a.PaymentStatus == constvars.PaymentStatusPaid {
			a.RefundStatus = constvars.RefundStatusPending
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your appointment on %s has been canceled. Reason: %s",
		appointment.ScheduledAt.Format(time.RFC1123), request.Reason)
	if appointment.RefundStatus == constvars.RefundStatusPending {
		message += ". Your refund is being processed"
	}
	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventAppointmentCanceled, appointment, message)
	uc.notify(ctx, appointment.DoctorID, constvars.NotificationEventAppointmentCanceled, appointment,
		fmt.Sprintf("Appointment with %s on %s has been canceled", appointment.PatientName, appointment.ScheduledAt.Format(time.RFC1123)))
	return appointment, nil
}

// CompletePrescription is idempotent once the prescription is completed.
func (uc *appointmentUsecase) CompletePrescription(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	return uc.transition(ctx, "CompletePrescription", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := requireOwningDoctor(principal, a); err != nil {
			return false, err
		}
		if a.Status != constvars.AppointmentStatusCompleted {
			return false, exceptions.ErrInvalidTransition(nil, a.Status, "prescription:"+constvars.PrescriptionStatusCompleted)
		}
		if a.PrescriptionStatus == constvars.PrescriptionStatusCompleted {
			return false, nil
		}
		a.PrescriptionStatus = constvars.PrescriptionStatusCompleted
		return true, nil
	})
}

func (uc *appointmentUsecase) UpdateNotes(ctx context.Context, principal models.Principal, appointmentID string, request *requests.UpdateAppointmentNotes) (*models.Appointment, error) {
	request.Notes = strings.TrimSpace(request.Notes)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	return uc.transition(ctx, "UpdateNotes", principal, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := requireOwningDoctor(principal, a); err != nil {
			return false, err
		}
		if a.Notes == request.Notes {
			return false, nil
		}
		a.Notes = request.Notes
		return true, nil
	})
}

// transition wraps ApplyConditionalUpdate with the logging every state
// change shares.
func (uc *appointmentUsecase) transition(ctx context.Context, operation string, principal models.Principal, appointmentID string, mutate Mutation) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase."+operation+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingPrincipalRoleKey, principal.Role),
	)

	appointment, changed, err := ApplyConditionalUpdate(ctx, uc.AppointmentRepository, appointmentID, mutate)
	if err != nil {
		uc.Log.Info("appointmentUsecase."+operation+" rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.String(constvars.LoggingErrorCodeKey, exceptions.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	if changed {
		utils.LogBusinessEvent(uc.Log, "appointment_"+strings.ToLower(operation), requestID,
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingStatusKey, appointment.Status),
		)
	}
	return appointment, nil
}

// notify delivers a best-effort notification. Failures never fail the
// operation that triggered them.
func (uc *appointmentUsecase) notify(ctx context.Context, recipientID, event string, appointment *models.Appointment, message string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	err := uc.Notifier.Notify(ctx, recipientID, event, message, map[string]string{
		"appointmentId": appointment.ID,
		"status":        appointment.Status,
	})
	if err != nil {
		uc.Log.Warn("appointmentUsecase.notify error calling Notifier.Notify",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}

func (uc *appointmentUsecase) gatewayTimeout() time.Duration {
	if uc.InternalConfig == nil || uc.InternalConfig.PaymentGateway.RequestTimeoutInSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(uc.InternalConfig.PaymentGateway.RequestTimeoutInSeconds) * time.Second
}

func requireOwningDoctor(principal models.Principal, appointment *models.Appointment) error {
	if principal.Role != constvars.RoleDoctor || appointment.DoctorID != principal.ID {
		return exceptions.ErrAppointmentForbidden(nil)
	}
	return nil
}

func requireTransition(appointment *models.Appointment, target string) error {
	if !appointment.CanTransitionTo(target) {
		return exceptions.ErrInvalidTransition(nil, appointment.Status, target)
	}
	return nil
}
