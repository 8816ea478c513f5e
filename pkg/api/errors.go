package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/scholarforge/scholarforge/pkg/jobs"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// mapJobError maps facade errors to HTTP error responses.
func mapJobError(err error) *echo.HTTPError {
	var verr *models.RequestValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, verr.Error())
	}
	if errors.Is(err, jobs.ErrUnknownJob) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown proposal request")
	}
	if errors.Is(err, jobs.ErrJobFinished) {
		return echo.NewHTTPError(http.StatusConflict, "job is not in a cancellable state")
	}
	if errors.Is(err, jobs.ErrShuttingDown) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server is shutting down")
	}

	slog.Error("Unexpected job error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
