package openai

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

	"quant_trainer/internal/ai"
)

// Client ходит в OpenAI-совместимый endpoint; реализует и чат, и TTS
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Reply(ctx context.Context, messages []ai.Message, opts ai.ChatOptions) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("не задан OPENAI_API_KEY")
	}

	temp := opts.Temperature
	if temp == 0 {
		temp = 0.8
	}

	msgs := make([]map[string]string, 0, len(messages)+1)
	if opts.System != "" {
		msgs = append(msgs, map[string]string{"role": "system", "content": opts.System})
	}
	for _, m := range messages {
		msgs = append(msgs, map[string]string{"role": m.Role, "content": m.Content})
	}

	payload := map[string]any{
		"model":       c.model,
		"messages":    msgs,
		"temperature": temp,
		"max_tokens":  300,
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("пустой ответ модели")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Synthesize - TTS через /v1/audio/speech, отдает mpeg
func (c *Client) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New("не задан OPENAI_API_KEY")
	}

	payload := map[string]any{
		"model":           "tts-1",
		"input":           text,
		"voice":           "onyx",
		"response_format": "mp3",
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/audio/speech", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("openai tts status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
