package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps the error families to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorBody(err error) ErrorResponse {
	body := ErrorResponse{Error: err.Error()}
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	return body
}

// apiError converts err into an echo.HTTPError carrying an ErrorResponse.
func apiError(c echo.Context, err error) error {
	code := statusFor(err)
	body := errorBody(err)
	if code >= http.StatusInternalServerError {
		logging.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
	}
	return echo.NewHTTPError(code, body)
}
