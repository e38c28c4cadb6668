package controllers

import (
	"context"
	"net/http"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type SettingsController struct {
	Log             *zap.Logger
	SettingsUsecase contracts.PlatformSettingsUsecase
}

func NewSettingsController(logger *zap.Logger, settingsUsecase contracts.PlatformSettingsUsecase) *SettingsController {
	return &SettingsController{
		Log:             logger,
		SettingsUsecase: settingsUsecase,
	}
}

func (ctrl *SettingsController) Find(w http.ResponseWriter, r *http.Request) {
	const operation = "SettingsController.Find"
	requestID, _, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	settings, err := ctrl.SettingsUsecase.GetCurrentRates(ctx)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SettingsFetchedMessage, ctrl.present(settings))
}

func (ctrl *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	const operation = "SettingsController.Update"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	request := new(requests.UpdatePlatformSettings)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	settings, err := ctrl.SettingsUsecase.UpdateSettings(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SettingsUpdatedMessage, ctrl.present(settings))
}

func (ctrl *SettingsController) present(settings *models.PlatformSettings) *responses.PlatformSettings {
	policy := ctrl.SettingsUsecase.GetFinancePolicy()
	response := &responses.PlatformSettings{
		PatientCommission:  settings.PatientCommission,
		DoctorCommission:   settings.DoctorCommission,
		UpdatedBy:          settings.UpdatedBy,
		CancellationFee:    policy.CancellationFee,
		GatewayFeePct:      policy.GatewayFeePct,
		GSTOnGatewayFeePct: policy.GSTOnGatewayFeePct,
		MinimumWithdrawal:  policy.MinimumWithdrawal,
	}
	if !settings.UpdatedAt.IsZero() {
		updatedAt := settings.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}
