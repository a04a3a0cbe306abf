package elevenlabs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/pkg/config"
)

const convaiWebRTCURL = "https://api.elevenlabs.io/v1/convai/conversation/webrtc"

// Client forwards WebRTC SDP offers to the ElevenLabs ConvAI endpoint.
// Browsers never see the API key; they talk to the local proxy with a
// short-lived token and the server attaches the key here.
type Client struct {
	cfg    config.ElevenLabsConfig
	log    *zap.Logger
	client *http.Client
}

func NewClient(cfg config.ElevenLabsConfig, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// ForwardSDP posts the SDP offer for the agent and returns the answer.
func (c *Client) ForwardSDP(ctx context.Context, agentID, offer string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("elevenlabs: API key not configured")
	}
	if agentID == "" {
		agentID = c.cfg.AgentID
	}
	if agentID == "" {
		return "", fmt.Errorf("elevenlabs: no agent id")
	}

	endpoint := convaiWebRTCURL + "?agent_id=" + url.QueryEscape(agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(offer))
	if err != nil {
		return "", fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("elevenlabs: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.log.Warn("convai sdp exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("agent_id", agentID))
		return "", fmt.Errorf("elevenlabs: API error status %d", resp.StatusCode)
	}
	return string(body), nil
}
