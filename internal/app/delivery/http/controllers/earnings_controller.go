package controllers

import (
	"context"
	"net/http"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EarningsController struct {
	Log             *zap.Logger
	EarningsUsecase contracts.EarningsUsecase
}

func NewEarningsController(logger *zap.Logger, earningsUsecase contracts.EarningsUsecase) *EarningsController {
	return &EarningsController{
		Log:             logger,
		EarningsUsecase: earningsUsecase,
	}
}

func (ctrl *EarningsController) FindMine(w http.ResponseWriter, r *http.Request) {
	ctrl.doctorEarnings(w, r, "EarningsController.FindMine", "")
}

func (ctrl *EarningsController) FindByDoctorID(w http.ResponseWriter, r *http.Request) {
	ctrl.doctorEarnings(w, r, "EarningsController.FindByDoctorID", chi.URLParam(r, constvars.URLParamDoctorID))
}

func (ctrl *EarningsController) doctorEarnings(w http.ResponseWriter, r *http.Request, operation, doctorID string) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}
	if doctorID == "" {
		doctorID = principal.ID
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	earnings, err := ctrl.EarningsUsecase.ComputeDoctorEarnings(ctx, principal, &requests.DoctorEarnings{
		DoctorID: doctorID,
		From:     from,
		To:       to,
	})
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Int(constvars.LoggingCountKey, earnings.CompletedAppointments),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.EarningsFetchedMessage, earnings)
}

func (ctrl *EarningsController) FindPlatform(w http.ResponseWriter, r *http.Request) {
	const operation = "EarningsController.FindPlatform"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	earnings, err := ctrl.EarningsUsecase.ComputePlatformEarnings(ctx, principal, &requests.PlatformEarnings{From: from, To: to})
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.EarningsFetchedMessage, earnings)
}
