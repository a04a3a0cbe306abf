package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sundinlabs/multibot/internal/domain"
)

const realtimeSessionsURL = "https://api.openai.com/v1/realtime/sessions"

// EphemeralSessionParams shapes one browser-facing realtime session.
type EphemeralSessionParams struct {
	Model        string
	Voice        string
	Instructions string
	Modalities   []string
	VAD          domain.VADParams
}

type sessionResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Voice        string `json:"voice"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateEphemeralSession mints a short-lived realtime session with
// server-side VAD turn detection, returning the client secret the
// browser uses to connect directly.
func (c *Client) CreateEphemeralSession(ctx context.Context, params EphemeralSessionParams) (*domain.RealtimeSession, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	modalities := params.Modalities
	if len(modalities) == 0 {
		modalities = []string{"audio", "text"}
	}

	body := map[string]interface{}{
		"model":        params.Model,
		"modalities":   modalities,
		"instructions": params.Instructions,
		"turn_detection": map[string]interface{}{
			"type":                "server_vad",
			"threshold":           params.VAD.Threshold,
			"silence_duration_ms": params.VAD.HoldMs,
			"prefix_padding_ms":   params.VAD.MinVoiceMs,
		},
	}
	if params.Voice != "" {
		body["voice"] = params.Voice
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, realtimeSessionsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "realtime=v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("openai: session API error status %d", resp.StatusCode)
	}

	var result sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("openai: decode session response: %w", err)
	}
	if result.ClientSecret.Value == "" {
		return nil, fmt.Errorf("openai: session response has no client secret")
	}

	return &domain.RealtimeSession{
		ID:           result.ID,
		ClientSecret: result.ClientSecret.Value,
		ExpiresAt:    result.ClientSecret.ExpiresAt,
		Model:        result.Model,
		Voice:        result.Voice,
	}, nil
}
