package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the handler-facing projection of an error. Unknown errors
// collapse to a generic 500 so raw infrastructure messages never leak to
// clients.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		out := HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if appErr.Err != nil && appErr.HTTPStatus < http.StatusInternalServerError {
			out.Details = appErr.Err.Error()
		}
		return out
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "An unexpected error occurred",
	}
}
