package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/retention"
)

// Error codes returned in the "error" field of failed responses.
const (
	codeValidation      = "validation_error"
	codeUnknownStudent  = "unknown_student"
	codeDuplicate       = "duplicate"
	codeNotFound        = "not_found"
	codeSweepInProgress = "sweep_in_progress"
	codeStoreCorrupt    = "store_corrupt"
	codeTooLarge        = "payload_too_large"
	codeUnavailable     = "unavailable"
	codeInternal        = "internal_error"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// respondError maps err to a status code and writes the error body.
// Storage failures get a generic message; the cause is logged.
func respondError(c *gin.Context, err error) {
	status, body := classifyError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func classifyError(err error) (int, errorResponse) {
	var (
		validationErr *attendance.ValidationError
		duplicateErr  *attendance.DuplicateError
		notFoundErr   *attendance.NotFoundError
		exportErr     *attendance.ExportError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, errorResponse{
			Error:   codeValidation,
			Message: validationErr.Message,
			Field:   validationErr.Field,
		}

	case errors.As(err, &notFoundErr) && notFoundErr.Kind == "student":
		return http.StatusBadRequest, errorResponse{
			Error:   codeUnknownStudent,
			Message: "student " + notFoundErr.ID + " is not on the roster",
			Field:   "mssv",
		}

	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, errorResponse{
			Error:   codeNotFound,
			Message: notFoundErr.Error(),
		}

	case errors.As(err, &duplicateErr):
		return http.StatusConflict, errorResponse{
			Error:   codeDuplicate,
			Message: duplicateErr.Error(),
			Field:   "mssv",
		}

	case errors.Is(err, retention.ErrSweepInProgress):
		return http.StatusConflict, errorResponse{
			Error:   codeSweepInProgress,
			Message: "a sweep is already running",
		}

	case errors.As(err, &exportErr):
		return http.StatusBadRequest, errorResponse{
			Error:   codeValidation,
			Message: exportErr.Error(),
			Field:   "format",
		}

	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, errorResponse{
			Error:   codeTooLarge,
			Message: "request body too large",
		}

	case errors.Is(err, attendance.ErrStoreCorrupt):
		return http.StatusServiceUnavailable, errorResponse{
			Error:   codeStoreCorrupt,
			Message: "attendance log is unavailable until it is repaired",
		}

	default:
		return http.StatusInternalServerError, errorResponse{
			Error:   codeInternal,
			Message: "internal error, please try again",
		}
	}
}
