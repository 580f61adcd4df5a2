package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const speakerListTimeout = 30 * time.Second

func (c *implClient) EnrollSpeaker(ctx context.Context, req EnrollRequest) error {
	paths := make([]string, len(req.SamplePaths))
	for i, p := range req.SamplePaths {
		paths[i] = normalizePath(p)
	}
	req.SamplePaths = paths

	var out queuedResponse
	err := c.post(ctx, "/enroll-speaker", c.cfg.EnrollTimeout, req, &out)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s", ErrEnrollmentRejected, se.Body)
	}
	if err != nil {
		return err
	}
	c.logger.Info(ctx, "Speaker %s enrolled with %d samples: %s", req.SpeakerName, len(req.SamplePaths), statusOr(out.Status))
	return nil
}

func (c *implClient) ListEnrolledSpeakers(ctx context.Context) ([]string, error) {
	var out speakerListResponse
	if err := c.do(ctx, http.MethodGet, "/speakers/list", speakerListTimeout, nil, &out); err != nil {
		return nil, err
	}
	return out.Speakers, nil
}

func (c *implClient) RemoveEnrolledSpeaker(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/speakers/"+url.PathEscape(name), speakerListTimeout, nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("speaker %s: %w", name, ErrSpeakerNotEnrolled)
	}
	return err
}
