package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/meetflow/internal/meeting"
)

const callbackTokenHeader = "x-callback-token"

// requireCallbackToken rejects callbacks before anything reads the body.
func (s *implServer) requireCallbackToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get(callbackTokenHeader)
		if s.cfg.CallbackToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CallbackToken)) != 1 {
			s.logger.Warn(c.Request().Context(), "Rejected callback for %s: invalid token", c.Request().URL.Path)
			return c.JSON(http.StatusForbidden, errorResponse{Error: meeting.ErrInvalidToken.Error()})
		}
		return next(c)
	}
}

func (s *implServer) health(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "error", "error": err.Error()})
	}
	counts, err := s.queue.Counts(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "jobs": counts})
}

func (s *implServer) createMeeting(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "audio file is required")
	}

	var extra map[string]any
	if raw := c.FormValue("extra"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			return badRequest(c, "extra must be a JSON object")
		}
	}

	f, err := fh.Open()
	if err != nil {
		return s.fail(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	m, err := s.meeting.Create(c.Request().Context(), meeting.CreateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Filename:    fh.Filename,
		MimeType:    fh.Header.Get(echo.HeaderContentType),
		Body:        f,
		Extra:       extra,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *implServer) listMeetings(c echo.Context) error {
	list, err := s.meeting.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *implServer) getMeeting(c echo.Context) error {
	d, err := s.meeting.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *implServer) meetingStatus(c echo.Context) error {
	st, err := s.meeting.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (s *implServer) meetingAudio(c echo.Context) error {
	a, err := s.meeting.AudioFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, a.MimeType)
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", a.Filename))
	return c.File(a.Path)
}

type updateRequest struct {
	Extra map[string]any `json:"extra"`
}

func (s *implServer) updateMeeting(c echo.Context) error {
	var req updateRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	m, err := s.meeting.UpdateExtra(c.Request().Context(), c.Param("id"), req.Extra)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *implServer) retryMeeting(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	res, err := s.meeting.Retry(ctx, id)
	if err != nil {
		return s.fail(c, err)
	}
	st, err := s.meeting.Status(ctx, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]any{"meeting": st, "mode": res.Mode, "segments": res.Segments})
}

func (s *implServer) deleteMeeting(c echo.Context) error {
	if err := s.meeting.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *implServer) exportMeeting(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := s.meeting.Get(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	dir, err := os.MkdirTemp("", "meetflow-export-")
	if err != nil {
		return s.fail(c, err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, d.ID+".docx")
	if err := s.report.WriteMeeting(ctx, d.Meeting, out); err != nil {
		return s.fail(c, err)
	}
	return c.Attachment(out, d.ID+".docx")
}

func (s *implServer) meetingCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "unreadable body")
	}
	var in meeting.CallbackInput
	if err := json.Unmarshal(body, &in); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	in.Raw = body

	token := c.Request().Header.Get(callbackTokenHeader)
	m, err := s.meeting.HandleCallback(c.Request().Context(), c.Param("id"), token, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *implServer) segmentCallback(c echo.Context) error {
	var in meeting.SegmentCallbackInput
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	token := c.Request().Header.Get(callbackTokenHeader)
	seg, err := s.meeting.HandleSegmentCallback(c.Request().Context(), c.Param("id"), c.Param("segmentId"), token, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, seg)
}
