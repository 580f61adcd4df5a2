package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/meetflow/internal/speaker"
)

func (s *implServer) createSpeaker(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "multipart form is required")
	}

	in := speaker.CreateInput{Name: c.FormValue("name")}
	for _, fh := range form.File["samples"] {
		f, err := fh.Open()
		if err != nil {
			return s.fail(c, fmt.Errorf("open sample: %w", err))
		}
		defer f.Close()
		in.Samples = append(in.Samples, speaker.Sample{
			Filename: fh.Filename,
			MimeType: fh.Header.Get(echo.HeaderContentType),
			Body:     f,
		})
	}

	sp, err := s.speaker.Create(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sp)
}

func (s *implServer) listSpeakers(c echo.Context) error {
	list, err := s.speaker.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *implServer) getSpeaker(c echo.Context) error {
	sp, err := s.speaker.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, sp)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *implServer) renameSpeaker(c echo.Context) error {
	var req renameRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	sp, err := s.speaker.Rename(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (s *implServer) deleteSpeaker(c echo.Context) error {
	if err := s.speaker.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *implServer) syncSpeakers(c echo.Context) error {
	res, err := s.speaker.Sync(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type speakerDeletedRequest struct {
	SpeakerName string `json:"speaker_name"`
}

func (s *implServer) speakerDeleted(c echo.Context) error {
	var req speakerDeletedRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && err != io.EOF {
		return badRequest(c, "invalid JSON body")
	}

	token := c.Request().Header.Get(callbackTokenHeader)
	if err := s.speaker.HandleDeleted(c.Request().Context(), token, req.SpeakerName); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Speaker deleted from DB"})
}
