package controllers

import (
	"context"
	"net/http"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
}

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase) *PaymentController {
	return &PaymentController{
		Log:            logger,
		PaymentUsecase: paymentUsecase,
	}
}

func (ctrl *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	const operation = "PaymentController.CreateOrder"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	request := new(requests.CreateOrder)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := ctrl.PaymentUsecase.CreateOrder(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, order.OrderID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.PaymentOrderCreatedMessage, order)
}

func (ctrl *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	const operation = "PaymentController.VerifyPayment"
	start := time.Now()
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	utils.LogSecurityEvent(ctrl.Log, "payment_verification_received", requestID, "info",
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
		zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
	)

	request := new(requests.VerifyPayment)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.VerifyPayment(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIDKey, request.PaymentID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentVerifiedMessage, result)
}

func (ctrl *PaymentController) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	const operation = "PaymentController.ProcessRefund"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	appointmentID, ok := urlParam(ctrl.Log, w, r, requestID, constvars.URLParamAppointmentID)
	if !ok {
		return
	}
	request := new(requests.ProcessRefund)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}
	request.AppointmentID = appointmentID

	// The gateway call runs under its own timeout inside the usecase.
	ctx, cancel := context.WithTimeout(r.Context(), 2*requestTimeout)
	defer cancel()

	appointment, err := ctrl.PaymentUsecase.ProcessRefund(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "refund_request_completed", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.Float64(constvars.LoggingAmountKey, request.RefundAmount),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.RefundProcessedMessage, appointment)
}
