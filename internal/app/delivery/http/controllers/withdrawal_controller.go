package controllers

import (
	"context"
	"net/http"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type WithdrawalController struct {
	Log               *zap.Logger
	WithdrawalUsecase contracts.WithdrawalUsecase
}

func NewWithdrawalController(logger *zap.Logger, withdrawalUsecase contracts.WithdrawalUsecase) *WithdrawalController {
	return &WithdrawalController{
		Log:               logger,
		WithdrawalUsecase: withdrawalUsecase,
	}
}

func (ctrl *WithdrawalController) Request(w http.ResponseWriter, r *http.Request) {
	const operation = "WithdrawalController.Request"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	request := new(requests.RequestWithdrawal)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	withdrawal, err := ctrl.WithdrawalUsecase.RequestWithdrawal(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
		zap.Float64(constvars.LoggingAmountKey, withdrawal.Amount),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.WithdrawalRequestedMessage, withdrawal)
}

func (ctrl *WithdrawalController) FindAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctrl.list(w, r, "WithdrawalController.FindAll", &requests.WithdrawalFilter{
		Status:   query.Get(constvars.QueryParamStatus),
		DoctorID: query.Get("doctorId"),
	})
}

func (ctrl *WithdrawalController) FindMine(w http.ResponseWriter, r *http.Request) {
	ctrl.list(w, r, "WithdrawalController.FindMine", &requests.WithdrawalFilter{
		Status: r.URL.Query().Get(constvars.QueryParamStatus),
	})
}

func (ctrl *WithdrawalController) list(w http.ResponseWriter, r *http.Request, operation string, filter *requests.WithdrawalFilter) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	withdrawals, err := ctrl.WithdrawalUsecase.List(ctx, principal, filter)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(withdrawals)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.WithdrawalsFetchedMessage, withdrawals)
}

func (ctrl *WithdrawalController) Approve(w http.ResponseWriter, r *http.Request) {
	request := new(requests.ApproveWithdrawal)
	ctrl.decide(w, r, "WithdrawalController.Approve", constvars.WithdrawalApprovedMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Withdrawal, error) {
			request.WithdrawalID = id
			return ctrl.WithdrawalUsecase.Approve(ctx, principal, request)
		})
}

func (ctrl *WithdrawalController) Reject(w http.ResponseWriter, r *http.Request) {
	request := new(requests.RejectWithdrawal)
	ctrl.decide(w, r, "WithdrawalController.Reject", constvars.WithdrawalRejectedMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Withdrawal, error) {
			request.WithdrawalID = id
			return ctrl.WithdrawalUsecase.Reject(ctx, principal, request)
		})
}

func (ctrl *WithdrawalController) decide(
	w http.ResponseWriter,
	r *http.Request,
	operation, successMessage string,
	request interface{},
	call func(ctx context.Context, principal models.Principal, withdrawalID string) (*models.Withdrawal, error),
) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}
	withdrawalID, ok := urlParam(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	withdrawal, err := call(ctx, principal, withdrawalID)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
		zap.String(constvars.LoggingStatusKey, withdrawal.Status),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, successMessage, withdrawal)
}
