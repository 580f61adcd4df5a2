package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

const summaryPrompt = `Bạn là một thư ký cuộc họp chuyên nghiệp. Dựa trên bản ghi cuộc họp bên dưới, hãy viết một biên bản tóm tắt CHI TIẾT bằng TIẾNG VIỆT.

Yêu cầu:
- Bắt đầu bằng một câu mô tả chủ đề chính của cuộc họp
- Liệt kê các nội dung thảo luận theo thứ tự thời gian
- Ghi rõ các quyết định đã được thống nhất và người phụ trách (nếu có)
- Liệt kê các đầu việc cần làm tiếp theo
- Nếu có thuật ngữ chuyên ngành, giữ nguyên thuật ngữ tiếng Anh trong ngoặc
- Sử dụng format markdown: heading, bullet points, bold cho từ khóa quan trọng

Bản ghi cuộc họp:
---
%s
---`

var errEmptyResponse = errors.New("empty response from Gemini")

func (s *implGemini) Summarize(ctx context.Context, transcript []store.TranscriptEntry) (Summary, error) {
	lines := FormatLines(transcript)
	text, err := s.callGemini(ctx, renderTranscript(lines))
	if err != nil {
		return Summary{}, err
	}
	return Summary{Text: strings.TrimSpace(text), FormattedLines: lines}, nil
}

// callGemini rotates API keys on 429 / quota errors.
func (s *implGemini) callGemini(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, transcript)

	var lastErr error
	for range len(s.apiKeys) {
		idx, key := s.key()

		text, err := s.generate(ctx, key, s.model, prompt)
		if err != nil {
			if isRateLimited(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implGemini) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

func (s *implGemini) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateContent(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", errEmptyResponse
	}
	return text.String(), nil
}
