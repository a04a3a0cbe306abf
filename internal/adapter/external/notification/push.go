package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/ports"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// PushAdapter sends push notifications via Firebase Cloud Messaging (FCM)
type PushAdapter struct {
	serverKey  string
	httpClient *http.Client
	log        *zap.Logger
}

// NewPushAdapter creates a new Firebase push notification adapter
func NewPushAdapter(serverKey string, log *zap.Logger) *PushAdapter {
	return &PushAdapter{
		serverKey:  serverKey,
		httpClient: &http.Client{},
		log:        log,
	}
}

var _ ports.PushService = (*PushAdapter)(nil)

// fcmMessage represents an FCM message payload
type fcmMessage struct {
	To              string            `json:"to,omitempty"`
	RegistrationIDs []string          `json:"registration_ids,omitempty"`
	Notification    *fcmNotification  `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// SanitizeData coerces arbitrary payload values into the string-only
// map FCM data messages require.
func SanitizeData(in map[string]interface{}) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
			// skip
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

// SendToTopic sends a push notification to all devices subscribed to a topic
func (a *PushAdapter) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if a.serverKey == "" {
		a.log.Warn("Push adapter not configured, skipping topic send", zap.String("topic", topic))
		return nil
	}

	msg := fcmMessage{
		To:           "/topics/" + topic,
		Notification: &fcmNotification{Title: title, Body: body},
		Data:         data,
	}
	_, _, err := a.send(ctx, msg)
	return err
}

// SendToToken sends a push notification to a single device token
func (a *PushAdapter) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	if a.serverKey == "" {
		a.log.Warn("Push adapter not configured, skipping send")
		return nil
	}

	msg := fcmMessage{
		To:           token,
		Notification: &fcmNotification{Title: title, Body: body},
		Data:         data,
	}
	_, _, err := a.send(ctx, msg)
	return err
}

// SendToTokens fans out one notification to a token batch and reports
// per-device success and failure counts.
func (a *PushAdapter) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, error) {
	if a.serverKey == "" {
		a.log.Warn("Push adapter not configured, skipping batch send", zap.Int("tokens", len(tokens)))
		return 0, len(tokens), nil
	}
	if len(tokens) == 0 {
		return 0, 0, nil
	}

	msg := fcmMessage{
		RegistrationIDs: tokens,
		Notification:    &fcmNotification{Title: title, Body: body},
		Data:            data,
	}
	return a.send(ctx, msg)
}

func (a *PushAdapter) send(ctx context.Context, msg fcmMessage) (int, int, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("push: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fcmEndpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, fmt.Errorf("push: create request: %w", err)
	}

	req.Header.Set("Authorization", "key="+a.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.log.Error("Failed to send push notification", zap.Error(err))
		return 0, 0, fmt.Errorf("push: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		a.log.Error("FCM API error", zap.Int("status", resp.StatusCode))
		return 0, 0, fmt.Errorf("push: FCM error status %d", resp.StatusCode)
	}

	var out fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// single-recipient responses may come back without counters
		out = fcmResponse{Success: 1}
	}

	a.log.Info("Push notification sent",
		zap.String("to", msg.To),
		zap.Int("success", out.Success),
		zap.Int("failure", out.Failure),
	)
	return out.Success, out.Failure, nil
}
