package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// requestScope pulls the request id and the authenticated principal out of
// the request context. It writes the error response itself when either is
// missing.
func requestScope(log *zap.Logger, w http.ResponseWriter, r *http.Request, operation string) (string, models.Principal, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		log.Error(operation+" requestID not found in context",
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", models.Principal{}, false
	}

	principal, ok := middlewares.PrincipalFromContext(r.Context())
	if !ok {
		log.Error(operation+" principal not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrPrincipalMissing(nil))
		return "", models.Principal{}, false
	}

	log.Info(operation+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingPrincipalRoleKey, principal.Role),
	)
	return requestID, principal, true
}

func decodeBody(log *zap.Logger, w http.ResponseWriter, r *http.Request, requestID, operation string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error(operation+" error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "JSON parsing"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrCannotParseJSON(err))
		return false
	}
	return true
}

func respondUsecaseError(log *zap.Logger, w http.ResponseWriter, requestID, operation string, err error) {
	log.Error(operation+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingErrorCodeKey, exceptions.CodeOf(err)),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(log, w, err)
}

// urlParam reads a required path parameter.
func urlParam(log *zap.Logger, w http.ResponseWriter, r *http.Request, requestID, name string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		log.Error("URL parameter missing",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("param", name),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrURLParamIDValidation(nil, name))
		return "", false
	}
	return value, true
}

// parseDateRange reads the optional from and to query parameters. The to
// date covers its whole day.
func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	from, err := utils.ParseOptionalDate(r.URL.Query().Get(constvars.QueryParamFrom))
	if err != nil {
		return nil, nil, exceptions.ErrCannotParseDate(err)
	}
	to, err := utils.ParseOptionalDate(r.URL.Query().Get(constvars.QueryParamTo))
	if err != nil {
		return nil, nil, exceptions.ErrCannotParseDate(err)
	}
	if to != nil {
		endOfDay := utils.EndOfDay(*to)
		to = &endOfDay
	}
	return from, to, nil
}
