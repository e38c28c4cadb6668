package exceptions

import (
	"errors"
	"fmt"
	"runtime"
	"telemed-service/internal/pkg/constvars"
)

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	Code          string     `json:"code,omitempty"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	cause         error
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	last := e.Locations[len(e.Locations)-1]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, last.File, last.Line, last.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

// WithCode tags the error with a stable machine-readable kind.
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// BuildNewCustomError records the location of whoever called the error
// constructor. When err is already a CustomError its locations are kept so
// the response carries the whole trail.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	customErr := &CustomError{
		StatusCode:    statusCode,
		Code:          codeForStatus(statusCode),
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		cause:         err,
	}

	if err != nil {
		customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
		var wrapped *CustomError
		if errors.As(err, &wrapped) {
			customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, wrapped.DevMessage)
			customErr.Locations = append(customErr.Locations, wrapped.Locations...)
		}
	}

	customErr.Locations = append(customErr.Locations, getLocation(3))
	return customErr
}

// HasCode reports whether the outermost CustomError in err's chain has the
// given code.
func HasCode(err error, code string) bool {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return false
	}
	return customErr.Code == code
}

// CodeOf returns the code of the outermost CustomError in err's chain.
func CodeOf(err error) string {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return ""
	}
	return customErr.Code
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case constvars.StatusBadRequest:
		return CodeValidationError
	case constvars.StatusUnauthorized:
		return CodeUnauthorized
	case constvars.StatusForbidden:
		return CodeForbidden
	case constvars.StatusNotFound:
		return CodeNotFound
	case constvars.StatusConflict:
		return CodeConflict
	case constvars.StatusTooManyRequests:
		return CodeRateLimited
	case constvars.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternal
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         "unknown",
			Line:         0,
			FunctionName: "unknown",
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
