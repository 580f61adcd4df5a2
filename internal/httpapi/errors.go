package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/report"
	"github.com/nguyentantai21042004/meetflow/internal/speaker"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrSpeakerExists):
		return http.StatusConflict
	case errors.Is(err, meeting.ErrInvalidToken), errors.Is(err, speaker.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, meeting.ErrInvalidInput), errors.Is(err, meeting.ErrNoUpload), errors.Is(err, report.ErrNotCompleted),
		errors.Is(err, speaker.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *implServer) fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
