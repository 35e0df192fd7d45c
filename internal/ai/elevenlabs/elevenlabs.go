package elevenlabs

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

// Client - TTS через ElevenLabs; первый провайдер в цепочке озвучки
type Client struct {
	apiKey  string
	voiceID string
	baseURL string
	http    *http.Client
}

func New(apiKey, voiceID string) *Client {
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	return &Client{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: "https://api.elevenlabs.io",
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string { return "elevenlabs" }

func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New("не задан ELEVENLABS_API_KEY")
	}

	payload := map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(c.baseURL, "/"), c.voiceID)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("elevenlabs status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
