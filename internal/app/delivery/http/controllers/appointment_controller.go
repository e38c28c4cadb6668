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

type AppointmentController struct {
	Log                *zap.Logger
	AppointmentUsecase contracts.AppointmentUsecase
}

func NewAppointmentController(logger *zap.Logger, appointmentUsecase contracts.AppointmentUsecase) *AppointmentController {
	return &AppointmentController{
		Log:                logger,
		AppointmentUsecase: appointmentUsecase,
	}
}

func (ctrl *AppointmentController) Book(w http.ResponseWriter, r *http.Request) {
	const operation = "AppointmentController.Book"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	request := new(requests.BookAppointment)
	if !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.Book(ctx, principal, request)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.AppointmentBookedMessage, appointment)
}

// FindAll serves the admin listing. Status, doctorId and patientId narrow
// the result.
func (ctrl *AppointmentController) FindAll(w http.ResponseWriter, r *http.Request) {
	const operation = "AppointmentController.FindAll"
	query := r.URL.Query()
	ctrl.list(w, r, operation, &requests.AppointmentFilter{
		Status:    query.Get(constvars.QueryParamStatus),
		DoctorID:  query.Get("doctorId"),
		PatientID: query.Get("patientId"),
	})
}

// FindMine lists the caller's own appointments, as patient or as doctor.
func (ctrl *AppointmentController) FindMine(w http.ResponseWriter, r *http.Request) {
	const operation = "AppointmentController.FindMine"
	ctrl.list(w, r, operation, &requests.AppointmentFilter{
		Status: r.URL.Query().Get(constvars.QueryParamStatus),
	})
}

func (ctrl *AppointmentController) list(w http.ResponseWriter, r *http.Request, operation string, filter *requests.AppointmentFilter) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	appointments, err := ctrl.AppointmentUsecase.List(ctx, principal, filter)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentsFetchedMessage, appointments)
}

func (ctrl *AppointmentController) FindByID(w http.ResponseWriter, r *http.Request) {
	const operation = "AppointmentController.FindByID"
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	appointmentID, ok := urlParam(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.GetByID(ctx, principal, appointmentID)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentFetchedMessage, appointment)
}

func (ctrl *AppointmentController) Accept(w http.ResponseWriter, r *http.Request) {
	ctrl.transition(w, r, "AppointmentController.Accept", constvars.AppointmentAcceptedMessage, nil,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.Accept(ctx, principal, id)
		})
}

func (ctrl *AppointmentController) Reject(w http.ResponseWriter, r *http.Request) {
	request := new(requests.RejectAppointment)
	ctrl.transition(w, r, "AppointmentController.Reject", constvars.AppointmentRejectedMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.Reject(ctx, principal, id, request)
		})
}

func (ctrl *AppointmentController) Reschedule(w http.ResponseWriter, r *http.Request) {
	request := new(requests.RescheduleAppointment)
	ctrl.transition(w, r, "AppointmentController.Reschedule", constvars.AppointmentRescheduledMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.Reschedule(ctx, principal, id, request)
		})
}

func (ctrl *AppointmentController) Complete(w http.ResponseWriter, r *http.Request) {
	request := new(requests.CompleteAppointment)
	ctrl.transition(w, r, "AppointmentController.Complete", constvars.AppointmentCompletedMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.Complete(ctx, principal, id, request)
		})
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	request := new(requests.CancelAppointment)
	ctrl.transition(w, r, "AppointmentController.Cancel", constvars.AppointmentCanceledMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.Cancel(ctx, principal, id, request)
		})
}

func (ctrl *AppointmentController) CompletePrescription(w http.ResponseWriter, r *http.Request) {
	ctrl.transition(w, r, "AppointmentController.CompletePrescription", constvars.AppointmentPrescriptionCompletedMessage, nil,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.CompletePrescription(ctx, principal, id)
		})
}

func (ctrl *AppointmentController) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	request := new(requests.UpdateAppointmentNotes)
	ctrl.transition(w, r, "AppointmentController.UpdateNotes", constvars.AppointmentNotesUpdatedMessage, request,
		func(ctx context.Context, principal models.Principal, id string) (*models.Appointment, error) {
			return ctrl.AppointmentUsecase.UpdateNotes(ctx, principal, id, request)
		})
}

// transition decodes body into request when it is non-nil and then runs
// call against the appointment named in the URL.
func (ctrl *AppointmentController) transition(
	w http.ResponseWriter,
	r *http.Request,
	operation, successMessage string,
	request interface{},
	call func(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error),
) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}
	appointmentID, ok := urlParam(ctrl.Log, w, r, requestID, constvars.URLParamID)
	if !ok {
		return
	}
	if request != nil && !decodeBody(ctrl.Log, w, r, requestID, operation, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	appointment, err := call(ctx, principal, appointmentID)
	if err != nil {
		respondUsecaseError(ctrl.Log, w, requestID, operation, err)
		return
	}

	ctrl.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingStatusKey, appointment.Status),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, successMessage, appointment)
}
