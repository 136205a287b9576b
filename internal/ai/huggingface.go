package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceProvider talks to the Hugging Face inference router, which
// exposes an OpenAI-style chat completions endpoint. Raw answers may carry a
// <think> reasoning block; Chat returns the answer with it stripped.
type HuggingFaceProvider struct {
	BaseURL string
	Token   string
	Model   string
	Client  *http.Client
}

func NewHuggingFaceProvider(baseURL, token, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = "https://router.huggingface.co"
	}
	if model == "" {
		model = "deepseek-ai/DeepSeek-R1-0528"
	}
	return &HuggingFaceProvider{
		BaseURL: baseURL,
		Token:   token,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type hfMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatResp struct {
	Choices []struct {
		Message hfMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if p.Client == nil {
		return "", errors.New("huggingface: http client is nil")
	}
	if strings.TrimSpace(p.Token) == "" {
		return "", errors.New("huggingface: api token is required")
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", errors.New("huggingface: model is required")
	}

	msgs := make([]hfMsg, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, hfMsg{Role: m.Role, Content: m.Content})
	}

	// Passthrough keys land at the request top level, so the body is built as
	// a map rather than a fixed struct.
	body := map[string]any{
		"model":    model,
		"messages": msgs,
		"stream":   false,
	}
	for k, v := range opts.Extra {
		if _, reserved := body[k]; !reserved {
			body[k] = v
		}
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.Token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("huggingface: %s", msg)
	}

	var decoded hfChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("huggingface: empty response")
	}
	return StripReasoning(decoded.Choices[0].Message.Content), nil
}
