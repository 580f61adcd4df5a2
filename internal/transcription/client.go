package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

const maxErrorBody = 512

func (c *implClient) Health(ctx context.Context) error {
	if c.cfg.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HealthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: "/health", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *implClient) WaitHealthy(ctx context.Context, policy config.HealthRetry) error {
	var lastErr error
	for i := 0; i < policy.Attempts; i++ {
		if lastErr = c.Health(ctx); lastErr == nil {
			if i > 0 {
				c.logger.Info(ctx, "Transcription service healthy after %d attempts", i+1)
			}
			return nil
		}
		if i == policy.Attempts-1 {
			break
		}

		wait := healthWait(policy, i)
		c.logger.Warn(ctx, "Transcription service not ready (attempt %d/%d), retrying in %s: %v",
			i+1, policy.Attempts, wait, lastErr)
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrUnhealthy, policy.Attempts, lastErr)
}

// healthWait is min(base * 2^attempt, max).
func healthWait(policy config.HealthRetry, attempt int) time.Duration {
	wait := policy.Base
	for j := 0; j < attempt && wait < policy.Max; j++ {
		wait *= 2
	}
	if policy.Max > 0 && wait > policy.Max {
		wait = policy.Max
	}
	return wait
}

func (c *implClient) Process(ctx context.Context, req ProcessRequest) error {
	req.AudioPath = normalizePath(req.AudioPath)
	if req.Language == "" {
		req.Language = c.cfg.Language
	}

	var out queuedResponse
	if err := c.post(ctx, "/process", c.cfg.ProcessTimeout, req, &out); err != nil {
		return err
	}
	c.logger.Info(ctx, "Direct processing queued for meeting %s: %s", req.MeetingID, statusOr(out.Status))
	return nil
}

func (c *implClient) ProcessSegment(ctx context.Context, req SegmentRequest) error {
	req.SegmentPath = normalizePath(req.SegmentPath)
	if req.Language == "" {
		req.Language = c.cfg.Language
	}

	var out queuedResponse
	if err := c.post(ctx, "/process-segment", c.cfg.SegmentTimeout, req, &out); err != nil {
		return err
	}
	c.logger.Info(ctx, "Segment %d of meeting %s queued: %s", req.SegmentIndex, req.MeetingID, statusOr(out.Status))
	return nil
}

func (c *implClient) GenerateSummary(ctx context.Context, transcript []store.TranscriptEntry) (SummaryResponse, error) {
	if len(transcript) == 0 {
		return SummaryResponse{}, fmt.Errorf("cannot generate summary from empty transcript")
	}

	var out SummaryResponse
	if err := c.post(ctx, "/generate-summary", c.cfg.SummaryTimeout, summaryRequest{Transcript: transcript}, &out); err != nil {
		return SummaryResponse{}, fmt.Errorf("summary generation failed: %w", err)
	}
	if out.FormattedLines == nil {
		out.FormattedLines = []store.FormattedLine{}
	}
	return out, nil
}

func (c *implClient) post(ctx context.Context, endpoint string, timeout time.Duration, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, timeout, body, out)
}

// do sends body as JSON (nil sends none) and decodes a 2xx answer into out.
func (c *implClient) do(ctx context.Context, method, endpoint string, timeout time.Duration, body, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.ServiceToken != "" {
		req.Header.Set(ServiceTokenHeader, c.cfg.ServiceToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// normalizePath sends forward slashes so Windows paths survive JSON escaping.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func statusOr(s string) string {
	if s == "" {
		return "queued"
	}
	return s
}
