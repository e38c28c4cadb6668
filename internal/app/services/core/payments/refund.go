package payments

import (
	"context"
	"fmt"
	"strconv"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/appointments"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RefundBreakdown is computed once when a refund is issued and stored on the
// appointment as is.
type RefundBreakdown struct {
	TotalFee            float64
	CancellationFee     float64
	MaxRefundable       float64
	GatewayFee          float64
	GSTOnGatewayFee     float64
	ResidualAfterRefund float64
}

// ComputeRefundBreakdown derives the refund bound and fee split for a
// canceled appointment. It fails with AmountExceeded when refundAmount is
// above totalFee minus the cancellation fee.
func ComputeRefundBreakdown(totalFee, refundAmount float64, policy models.FinancePolicy) (*RefundBreakdown, error) {
	if !utils.IsFiniteAmount(refundAmount) || refundAmount <= 0 {
		return nil, exceptions.ErrInvalidInput(nil, "refundAmount must be greater than 0")
	}

	total := utils.Money(totalFee)
	cancellationFee := utils.Money(policy.CancellationFee)
	maxRefundable := decimal.Max(total.Sub(cancellationFee), decimal.Zero)
	refund := utils.Money(refundAmount)
	if refund.GreaterThan(maxRefundable) {
		return nil, exceptions.ErrRefundAmountExceeded(nil, refund.String(), maxRefundable.StringFixed(2))
	}

	gatewayFee := utils.Percent(total, policy.GatewayFeePct).Round(2)
	gst := utils.Percent(gatewayFee, policy.GSTOnGatewayFeePct).Round(2)
	residual := total.Sub(gatewayFee).Sub(gst).Sub(refund)

	return &RefundBreakdown{
		TotalFee:            utils.RoundMoney(total),
		CancellationFee:     utils.RoundMoney(cancellationFee),
		MaxRefundable:       utils.RoundMoney(maxRefundable),
		GatewayFee:          utils.RoundMoney(gatewayFee),
		GSTOnGatewayFee:     utils.RoundMoney(gst),
		ResidualAfterRefund: utils.RoundMoney(residual),
	}, nil
}

// checkRefundable returns the guard violation that blocks a refund, if any.
func checkRefundable(appointment *models.Appointment) error {
	if appointment.Status != constvars.AppointmentStatusCanceled {
		return exceptions.ErrAppointmentNotCancelable(nil, appointment.Status)
	}
	if appointment.RefundStatus == constvars.RefundStatusProcessed || appointment.PaymentStatus == constvars.PaymentStatusRefunded {
		return exceptions.ErrRefundAlreadyProcessed(nil)
	}
	if appointment.PaymentStatus != constvars.PaymentStatusPaid {
		return exceptions.ErrAppointmentNoPayment(nil, appointment.PaymentStatus)
	}
	return nil
}

// ProcessRefund issues the refund for a canceled, paid appointment. No lock
// is held while the gateway is called: the record is claimed with a
// conditional update first and the guards are re-checked when committing.
func (uc *paymentUsecase) ProcessRefund(ctx context.Context, principal models.Principal, request *requests.ProcessRefund) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessRefund called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
		zap.Float64(constvars.LoggingAmountKey, request.RefundAmount),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
	)

	if !principal.IsAdmin() {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	if !utils.IsFiniteAmount(request.RefundAmount) {
		return nil, exceptions.ErrInvalidInput(nil, "refundAmount must be a number")
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil)
	}
	if err := checkRefundable(appointment); err != nil {
		return nil, err
	}

	policy := uc.SettingsUsecase.GetFinancePolicy()
	breakdown, err := ComputeRefundBreakdown(appointment.TotalFee, request.RefundAmount, policy)
	if err != nil {
		uc.Log.Warn("paymentUsecase.ProcessRefund refund amount rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Float64(constvars.LoggingAmountKey, request.RefundAmount),
			zap.Error(err),
		)
		return nil, err
	}

	paymentID := ""
	if appointment.Payment != nil {
		paymentID = appointment.Payment.PaymentID
	}
	if paymentID == "" || !uc.PaymentGateway.IsConfigured() {
		return uc.recordManualRefund(ctx, appointment.ID, request.RefundAmount, breakdown)
	}
	return uc.refundThroughGateway(ctx, appointment.ID, paymentID, request.RefundAmount, breakdown)
}

func (uc *paymentUsecase) recordManualRefund(ctx context.Context, appointmentID string, amount float64, breakdown *RefundBreakdown) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Warn("paymentUsecase.ProcessRefund recording manual refund without gateway call",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Float64(constvars.LoggingAmountKey, amount),
	)

	now := time.Now().UTC()
	refundID := fmt.Sprintf(constvars.RefundManualIDFormat, now.Unix())
	updated, _, err := appointments.ApplyConditionalUpdate(ctx, uc.AppointmentRepository, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := checkRefundable(a); err != nil {
			return false, err
		}
		if a.RefundStatus == constvars.RefundStatusApproved && !uc.claimExpired(a, now) {
			return false, exceptions.ErrRefundInProgress(nil)
		}
		markRefunded(a, refundID, amount, breakdown, now, now)
		a.Refund.Manual = true
		return true, nil
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.ProcessRefund error recording manual refund",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Float64(constvars.LoggingAmountKey, amount),
			zap.Error(err),
		)
		return nil, err
	}

	uc.afterRefund(ctx, updated)
	return updated, nil
}

func (uc *paymentUsecase) refundThroughGateway(ctx context.Context, appointmentID, paymentID string, amount float64, breakdown *RefundBreakdown) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	claimedAt, err := uc.claimRefund(ctx, appointmentID, amount, breakdown)
	if err != nil {
		return nil, err
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout())
	defer cancel()

	payment, err := uc.PaymentGateway.FetchPayment(gatewayCtx, paymentID)
	if err != nil {
		uc.releaseClaim(ctx, appointmentID, claimedAt, err)
		return nil, err
	}

	var refundID string
	refundedAmount := amount
	switch {
	case payment.Status != constvars.GatewayPaymentStatusCaptured:
		err := exceptions.ErrPaymentNotEligible(nil, payment.Status)
		uc.releaseClaim(ctx, appointmentID, claimedAt, err)
		return nil, err
	case payment.AmountRefunded > 0:
		// An appointment gets one refund, so any amount already refunded on
		// its payment comes from an earlier attempt whose result was lost.
		uc.Log.Warn("paymentUsecase.ProcessRefund payment already refunded upstream",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.String(constvars.LoggingPaymentIDKey, paymentID),
			zap.Int64(constvars.LoggingAmountKey, payment.AmountRefunded),
		)
		refundID = fmt.Sprintf(constvars.RefundAlreadyRefundedIDFormat, paymentID)
		refundedAmount = utils.FromMinorUnits(payment.AmountRefunded, constvars.GatewayMinorUnitsPerMajorUnit)
		if upstream, err := ComputeRefundBreakdown(breakdown.TotalFee, refundedAmount, uc.SettingsUsecase.GetFinancePolicy()); err == nil {
			breakdown = upstream
		}
	default:
		refund, err := uc.PaymentGateway.Refund(gatewayCtx, paymentID, &requests.GatewayRefund{
			Amount: utils.ToMinorUnits(amount, constvars.GatewayMinorUnitsPerMajorUnit),
			Notes:  map[string]string{"appointmentId": appointmentID},
		})
		if err != nil {
			uc.releaseClaim(ctx, appointmentID, claimedAt, err)
			return nil, err
		}
		refundID = refund.ID
	}

	now := time.Now().UTC()
	updated, _, err := appointments.ApplyConditionalUpdate(ctx, uc.AppointmentRepository, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := checkRefundable(a); err != nil {
			return false, err
		}
		if a.RefundStatus != constvars.RefundStatusApproved || a.Refund == nil || !a.Refund.InitiatedAt.Equal(claimedAt) {
			return false, exceptions.ErrRefundAlreadyProcessed(nil)
		}
		markRefunded(a, refundID, refundedAmount, breakdown, claimedAt, now)
		return true, nil
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.ProcessRefund gateway refund issued but not recorded, reconcile manually",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.String(constvars.LoggingPaymentIDKey, paymentID),
			zap.String(constvars.LoggingRefundIDKey, refundID),
			zap.Float64(constvars.LoggingAmountKey, refundedAmount),
			zap.Error(err),
		)
		return nil, err
	}

	uc.afterRefund(ctx, updated)
	return updated, nil
}

// claimRefund marks the refund Approved so a second request sees it in
// flight. The short redis lock only serializes the claim itself.
func (uc *paymentUsecase) claimRefund(ctx context.Context, appointmentID string, amount float64, breakdown *RefundBreakdown) (time.Time, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	lockKey := fmt.Sprintf(constvars.RedisKeyRefundAppointmentLock, appointmentID)

	acquired, lockValue, err := uc.Locker.TryLock(ctx, lockKey, uc.refundLockTTL())
	if err != nil {
		return time.Time{}, err
	}
	if !acquired {
		return time.Time{}, exceptions.ErrRefundInProgress(nil)
	}
	defer func() {
		if err := uc.Locker.Unlock(ctx, lockKey, lockValue); err != nil {
			uc.Log.Warn("paymentUsecase.claimRefund error calling Locker.Unlock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(err),
			)
		}
	}()

	claimedAt := time.Now().UTC()
	_, _, err = appointments.ApplyConditionalUpdate(ctx, uc.AppointmentRepository, appointmentID, func(a *models.Appointment) (bool, error) {
		if err := checkRefundable(a); err != nil {
			return false, err
		}
		if a.RefundStatus == constvars.RefundStatusApproved && !uc.claimExpired(a, claimedAt) {
			return false, exceptions.ErrRefundInProgress(nil)
		}
		a.RefundStatus = constvars.RefundStatusApproved
		a.Refund = &models.RefundDetails{
			Amount:              amount,
			Status:              constvars.RefundStatusApproved,
			InitiatedAt:         claimedAt,
			CancellationFee:     breakdown.CancellationFee,
			GatewayFee:          breakdown.GatewayFee,
			GSTOnGatewayFee:     breakdown.GSTOnGatewayFee,
			ResidualAfterRefund: breakdown.ResidualAfterRefund,
		}
		return true, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return claimedAt, nil
}

// releaseClaim puts the refund back to Pending after a failed gateway call so
// it can be retried.
func (uc *paymentUsecase) releaseClaim(ctx context.Context, appointmentID string, claimedAt time.Time, cause error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Error("paymentUsecase.ProcessRefund gateway refund failed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingErrorCodeKey, exceptions.CodeOf(cause)),
		zap.Error(cause),
	)

	_, _, err := appointments.ApplyConditionalUpdate(context.WithoutCancel(ctx), uc.AppointmentRepository, appointmentID, func(a *models.Appointment) (bool, error) {
		if a.RefundStatus != constvars.RefundStatusApproved || a.Refund == nil || !a.Refund.InitiatedAt.Equal(claimedAt) {
			return false, nil
		}
		a.RefundStatus = constvars.RefundStatusPending
		a.Refund.Status = constvars.RefundStatusPending
		return true, nil
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.releaseClaim error resetting refund status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
	}
}

// claimExpired reports whether an Approved claim is old enough that its
// owner must have given up.
func (uc *paymentUsecase) claimExpired(appointment *models.Appointment, now time.Time) bool {
	if appointment.Refund == nil || appointment.Refund.InitiatedAt.IsZero() {
		return true
	}
	return now.Sub(appointment.Refund.InitiatedAt) > 2*uc.gatewayTimeout()
}

func (uc *paymentUsecase) refundLockTTL() time.Duration {
	if uc.InternalConfig == nil || uc.InternalConfig.Locker.RefundLockTTLInSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(uc.InternalConfig.Locker.RefundLockTTLInSeconds) * time.Second
}

func (uc *paymentUsecase) afterRefund(ctx context.Context, appointment *models.Appointment) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	utils.LogBusinessEvent(uc.Log, "refund_processed", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingRefundIDKey, appointment.Refund.RefundID),
		zap.Float64(constvars.LoggingAmountKey, appointment.Refund.Amount),
		zap.Bool("manual", appointment.Refund.Manual),
	)
	uc.notify(ctx, appointment.PatientID, constvars.NotificationEventRefundProcessed, appointment,
		"Your refund of "+strconv.FormatFloat(appointment.Refund.Amount, 'f', 2, 64)+" has been processed")
}

func markRefunded(a *models.Appointment, refundID string, amount float64, breakdown *RefundBreakdown, initiatedAt, processedAt time.Time) {
	a.PaymentStatus = constvars.PaymentStatusRefunded
	a.RefundStatus = constvars.RefundStatusProcessed
	a.RefundedAt = &processedAt
	a.Refund = &models.RefundDetails{
		RefundID:            refundID,
		Amount:              amount,
		Status:              constvars.RefundStatusProcessed,
		InitiatedAt:         initiatedAt,
		ProcessedAt:         processedAt,
		CancellationFee:     breakdown.CancellationFee,
		GatewayFee:          breakdown.GatewayFee,
		GSTOnGatewayFee:     breakdown.GSTOnGatewayFee,
		ResidualAfterRefund: breakdown.ResidualAfterRefund,
	}
}
