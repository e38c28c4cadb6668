package payments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/appointments"
	"telemed-service/internal/app/services/shared/payment_gateway"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type paymentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	PaymentGateway        contracts.PaymentGatewayService
	SettingsUsecase       contracts.PlatformSettingsUsecase
	Locker                contracts.LockerService
	Notifier              contracts.NotificationService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

var (
	paymentUsecaseInstance contracts.PaymentUsecase
	oncePaymentUsecase     sync.Once
)

func NewPaymentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	settingsUsecase contracts.PlatformSettingsUsecase,
	locker contracts.LockerService,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	oncePaymentUsecase.Do(func() {
		paymentUsecaseInstance = newPaymentUsecase(appointmentRepository, paymentGateway, settingsUsecase, locker, notifier, internalConfig, logger)
	})
	return paymentUsecaseInstance
}

func newPaymentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	settingsUsecase contracts.PlatformSettingsUsecase,
	locker contracts.LockerService,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *paymentUsecase {
	return &paymentUsecase{
		AppointmentRepository: appointmentRepository,
		PaymentGateway:        paymentGateway,
		SettingsUsecase:       settingsUsecase,
		Locker:                locker,
		Notifier:              notifier,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *paymentUsecase) CreateOrder(ctx context.Context, principal models.Principal, request *requests.CreateOrder) (*responses.CreateOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
	)

	request.AppointmentID = strings.TrimSpace(request.AppointmentID)
	if !utils.IsFiniteAmount(request.Amount) {
		return nil, exceptions.ErrInvalidInput(nil, "amount must be a number")
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if !uc.PaymentGateway.IsConfigured() {
		return nil, exceptions.ErrPaymentGatewayNotConfigured(nil)
	}

	receipt := fmt.Sprintf(constvars.GatewayReceiptOrderFormat, time.Now().Unix())
	notes := map[string]string{}
	if request.AppointmentID != "" {
		appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appointment == nil {
			return nil, exceptions.ErrAppointmentNotFound(nil)
		}
		if !ownsAsPatient(principal, appointment) {
			return nil, exceptions.ErrAppointmentForbidden(nil)
		}
		receipt = fmt.Sprintf(constvars.GatewayReceiptAppointmentFormat, appointment.ID)
		notes["appointmentId"] = appointment.ID
	}
	notes["principalId"] = principal.ID

	amountMinorUnits := utils.ToMinorUnits(request.Amount, constvars.GatewayMinorUnitsPerMajorUnit)
	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout())
	defer cancel()

	order, err := uc.PaymentGateway.CreateOrder(gatewayCtx, &requests.GatewayOrder{
		Amount:   amountMinorUnits,
		Currency: constvars.GatewayCurrencyINR,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.CreateOrder error calling PaymentGateway.CreateOrder",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAmountKey, amountMinorUnits),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "payment_order_created", requestID,
		zap.String(constvars.LoggingOrderIDKey, order.ID),
		zap.Int64(constvars.LoggingAmountKey, amountMinorUnits),
	)

	return &responses.CreateOrder{
		OrderID:          order.ID,
		Amount:           utils.FromMinorUnits(amountMinorUnits, constvars.GatewayMinorUnitsPerMajorUnit),
		AmountMinorUnits: amountMinorUnits,
		Currency:         constvars.GatewayCurrencyINR,
		Receipt:          receipt,
		KeyID:            uc.PaymentGateway.KeyID(),
	}, nil
}

// VerifyPayment checks the checkout signature and, when an appointment is
// named, records the captured payment on it. Replaying a verification that
// already succeeded returns success without writing or notifying.
func (uc *paymentUsecase) VerifyPayment(ctx context.Context, principal models.Principal, request *requests.VerifyPayment) (*responses.VerifyPayment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.VerifyPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, request.OrderID),
		zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
	)

	request.AppointmentID = strings.TrimSpace(request.AppointmentID)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if !uc.PaymentGateway.IsConfigured() {
		return nil, exceptions.ErrPaymentGatewayNotConfigured(nil)
	}
	if !uc.PaymentGateway.VerifySignature(request.OrderID, request.PaymentID, request.Signature) {
		utils.LogSecurityEvent(uc.Log, "payment_signature_mismatch", requestID, "medium",
			zap.String(constvars.LoggingOrderIDKey, request.OrderID),
			zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
			zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		)
		return nil, exceptions.ErrSignatureMismatch(nil)
	}

	if request.AppointmentID == "" {
		return &responses.VerifyPayment{Verified: true}, nil
	}

	appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil)
	}
	if !ownsAsPatient(principal, appointment) {
		return nil, exceptions.ErrAppointmentForbidden(nil)
	}
	if done, err := alreadyPaid(appointment, request.PaymentID); err != nil || done {
		if err != nil {
			return nil, err
		}
		return verifiedResponse(appointment, true), nil
	}
	owner, err := uc.AppointmentRepository.FindByPaymentID(ctx, request.PaymentID)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.ID != appointment.ID {
		utils.LogSecurityEvent(uc.Log, "payment_id_reused", requestID, "high",
			zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		)
		return nil, exceptions.ErrPaymentAlreadyRecorded(nil, request.PaymentID)
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout())
	defer cancel()
	payment, err := payment_gateway.VerifyAuthorization(gatewayCtx, uc.PaymentGateway, request.OrderID, request.PaymentID, request.Signature)
	if err != nil {
		uc.Log.Error("paymentUsecase.VerifyPayment payment authorization failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}
	expectedMinorUnits := utils.ToMinorUnits(appointment.TotalFee, constvars.GatewayMinorUnitsPerMajorUnit)
	if payment.Amount < expectedMinorUnits {
		return nil, exceptions.ErrPaymentAmountMismatch(nil, payment.Amount, expectedMinorUnits)
	}

	now := time.Now().UTC()
	capturedAt := payment.CapturedAt
	if capturedAt == nil {
		capturedAt = &now
	}
	updated, changed, err := appointments.ApplyConditionalUpdate(ctx, uc.AppointmentRepository, appointment.ID, func(a *models.Appointment) (bool, error) {
		if done, err := alreadyPaid(a, request.PaymentID); err != nil || done {
			return false, err
		}
		a.PaymentStatus = constvars.PaymentStatusPaid
		a.BookingStatus = constvars.BookingStatusBooked
		a.Payment = &models.PaymentDetails{
			OrderID:        request.OrderID,
			PaymentID:      request.PaymentID,
			Signature:      request.Signature,
			Method:         payment.Method,
			AmountCaptured: utils.FromMinorUnits(payment.Amount, constvars.GatewayMinorUnitsPerMajorUnit),
			CapturedAt:     capturedAt,
		}
		return true, nil
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.VerifyPayment error recording payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}
	if !changed {
		return verifiedResponse(updated, true), nil
	}

	utils.LogBusinessEvent(uc.Log, "payment_verified", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, updated.ID),
		zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
		zap.Float64(constvars.LoggingAmountKey, updated.Payment.AmountCaptured),
	)
	uc.notify(ctx, updated.PatientID, constvars.NotificationEventPaymentVerified, updated,
		fmt.Sprintf("Payment of %.2f received for your appointment", updated.Payment.AmountCaptured))
	uc.notify(ctx, updated.DoctorID, constvars.NotificationEventPaymentVerified, updated,
		fmt.Sprintf("Payment confirmed for the appointment with %s", updated.PatientName))

	return verifiedResponse(updated, false), nil
}

func (uc *paymentUsecase) notify(ctx context.Context, recipientID, event string, appointment *models.Appointment, message string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	err := uc.Notifier.Notify(ctx, recipientID, event, message, map[string]string{
		"appointmentId": appointment.ID,
		"paymentStatus": appointment.PaymentStatus,
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.notify error calling Notifier.Notify",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}

func (uc *paymentUsecase) gatewayTimeout() time.Duration {
	if uc.InternalConfig == nil || uc.InternalConfig.PaymentGateway.RequestTimeoutInSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(uc.InternalConfig.PaymentGateway.RequestTimeoutInSeconds) * time.Second
}

// alreadyPaid reports whether the appointment already records paymentID. A
// different recorded payment is an error.
func alreadyPaid(appointment *models.Appointment, paymentID string) (bool, error) {
	if appointment.PaymentStatus != constvars.PaymentStatusPaid && appointment.PaymentStatus != constvars.PaymentStatusRefunded {
		return false, nil
	}
	if appointment.Payment != nil && appointment.Payment.PaymentID == paymentID {
		return true, nil
	}
	recorded := ""
	if appointment.Payment != nil {
		recorded = appointment.Payment.PaymentID
	}
	return false, exceptions.ErrPaymentAlreadyRecorded(nil, recorded)
}

func ownsAsPatient(principal models.Principal, appointment *models.Appointment) bool {
	return principal.IsAdmin() || (principal.Role == constvars.RolePatient && appointment.PatientID == principal.ID)
}

func verifiedResponse(appointment *models.Appointment, alreadyVerified bool) *responses.VerifyPayment {
	return &responses.VerifyPayment{
		Verified:        true,
		AlreadyVerified: alreadyVerified,
		AppointmentID:   appointment.ID,
		PaymentStatus:   appointment.PaymentStatus,
	}
}
