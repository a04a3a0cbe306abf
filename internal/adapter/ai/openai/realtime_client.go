package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const realtimeWSURL = "wss://api.openai.com/v1/realtime"

// RealtimeClient is one live bidirectional connection to the OpenAI
// Realtime API, carrying one phone call.
type RealtimeClient struct {
	apiKey string
	log    *zap.Logger
	conn   *websocket.Conn
}

// RealtimeSessionParams configures the session after dialing. A nil
// TurnDetection disables server VAD, leaving commits to the caller.
type RealtimeSessionParams struct {
	Instructions  string
	Voice         string
	Modalities    []string
	TurnDetection map[string]interface{}
}

func NewRealtimeClient(apiKey string, log *zap.Logger) *RealtimeClient {
	return &RealtimeClient{
		apiKey: apiKey,
		log:    log,
	}
}

// Connect dials the realtime endpoint for the given model and applies
// the session configuration.
func (c *RealtimeClient) Connect(ctx context.Context, model string, params RealtimeSessionParams) error {
	if c.apiKey == "" {
		return fmt.Errorf("openai: API key not configured")
	}

	headers := http.Header{
		"Authorization": []string{"Bearer " + c.apiKey},
		"OpenAI-Beta":   []string{"realtime=v1"},
	}

	conn, _, err := websocket.Dial(ctx, realtimeWSURL+"?model="+model, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return fmt.Errorf("openai: realtime dial: %w", err)
	}
	conn.SetReadLimit(1 << 22)
	c.conn = conn

	modalities := params.Modalities
	if len(modalities) == 0 {
		modalities = []string{"audio", "text"}
	}

	session := map[string]interface{}{
		"modalities":          modalities,
		"instructions":        params.Instructions,
		"input_audio_format":  "pcm16",
		"output_audio_format": "pcm16",
		"turn_detection":      params.TurnDetection,
	}
	if params.Voice != "" {
		session["voice"] = params.Voice
	}

	return c.send(ctx, map[string]interface{}{
		"type":    "session.update",
		"session": session,
	})
}

// AppendAudio feeds PCM16 audio into the input buffer.
func (c *RealtimeClient) AppendAudio(ctx context.Context, pcm []byte) error {
	return c.send(ctx, map[string]interface{}{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(pcm),
	})
}

// CommitAudio closes the current input turn and asks for a response.
func (c *RealtimeClient) CommitAudio(ctx context.Context) error {
	if err := c.send(ctx, map[string]interface{}{"type": "input_audio_buffer.commit"}); err != nil {
		return err
	}
	return c.send(ctx, map[string]interface{}{"type": "response.create"})
}

// ServerEvent is one message from the realtime stream. Audio deltas
// come base64-encoded in Delta.
type ServerEvent struct {
	Type       string `json:"type"`
	Delta      string `json:"delta,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Error      struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// AudioDelta decodes the event's audio payload.
func (e *ServerEvent) AudioDelta() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Delta)
}

func (c *RealtimeClient) ReadEvent(ctx context.Context) (*ServerEvent, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	var ev ServerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("openai: decode realtime event: %w", err)
	}
	return &ev, nil
}

func (c *RealtimeClient) send(ctx context.Context, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *RealtimeClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close(websocket.StatusNormalClosure, "done")
}
