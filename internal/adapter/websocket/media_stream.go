package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/ai/openai"
	"github.com/sundinlabs/multibot/internal/audio"
	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
)

const (
	phoneSampleRate = 8000
	modelSampleRate = 24000
)

// RealtimeConn is the model side of the bridge.
type RealtimeConn interface {
	AppendAudio(ctx context.Context, pcm []byte) error
	CommitAudio(ctx context.Context) error
	ReadEvent(ctx context.Context) (*openai.ServerEvent, error)
	Close() error
}

// RealtimeDialer opens a model connection for one call.
type RealtimeDialer func(ctx context.Context, model string, params openai.RealtimeSessionParams) (RealtimeConn, error)

// MediaStreamHandler bridges Twilio Media Streams calls to the
// realtime model: μ-law 8 kHz phone audio up, PCM model audio back.
type MediaStreamHandler struct {
	registry       ports.BotRegistry
	dial           RealtimeDialer
	model          string
	commitInterval time.Duration
	log            *zap.Logger
}

func NewMediaStreamHandler(registry ports.BotRegistry, dial RealtimeDialer, model string, commitInterval time.Duration, log *zap.Logger) *MediaStreamHandler {
	if commitInterval <= 0 {
		commitInterval = 1200 * time.Millisecond
	}
	return &MediaStreamHandler{
		registry:       registry,
		dial:           dial,
		model:          model,
		commitInterval: commitInterval,
		log:            log,
	}
}

// twilioEvent covers the Media Streams frames the bridge reacts to.
type twilioEvent struct {
	Event string `json:"event"`
	Start struct {
		StreamSID        string            `json:"streamSid"`
		CallSID          string            `json:"callSid"`
		CustomParameters map[string]string `json:"customParameters"`
	} `json:"start"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

type mediaFrame struct {
	Event     string `json:"event"`
	StreamSID string `json:"streamSid"`
	Media     struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

// HandleMediaStream runs one call. The read loop owns the Twilio
// connection; a pump goroutine owns the model connection.
func (h *MediaStreamHandler) HandleMediaStream(c *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetry.ActiveVoiceSessions.Inc()
	defer telemetry.ActiveVoiceSessions.Dec()

	var (
		call       domain.VoiceCall
		model      RealtimeConn
		lastCommit time.Time
		buffered   bool
	)
	defer func() {
		if model != nil {
			model.Close()
		}
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		var ev twilioEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}

		switch ev.Event {
		case "start":
			call = domain.VoiceCall{
				CallSID:   ev.Start.CallSID,
				StreamSID: ev.Start.StreamSID,
				To:        ev.Start.CustomParameters["to_number"],
				From:      ev.Start.CustomParameters["from_number"],
			}

			bot, err := h.registry.FindByNumber(call.To)
			if err != nil {
				h.log.Warn("no bot for dialed number",
					zap.String("to", call.To),
					zap.String("call_sid", call.CallSID))
				return
			}
			call.Bot = bot.Slug

			model, err = h.connectModel(ctx, bot)
			if err != nil {
				h.log.Error("realtime connect failed", zap.Error(err), zap.String("bot", bot.Slug))
				return
			}
			lastCommit = time.Now()
			go h.pumpModelAudio(ctx, model, c, call.StreamSID)

			h.log.Info("voice bridge started",
				zap.String("bot", bot.Slug),
				zap.String("call_sid", call.CallSID),
				zap.String("from", call.From))

		case "media":
			if model == nil {
				continue
			}
			mu, err := base64.StdEncoding.DecodeString(ev.Media.Payload)
			if err != nil {
				continue
			}
			pcm := audio.Resample(audio.DecodeMulaw(mu), phoneSampleRate, modelSampleRate)
			if err := model.AppendAudio(ctx, pcm); err != nil {
				h.log.Warn("append audio failed", zap.Error(err))
				return
			}
			buffered = true

			if buffered && time.Since(lastCommit) >= h.commitInterval {
				if err := model.CommitAudio(ctx); err != nil {
					h.log.Warn("commit failed", zap.Error(err))
					return
				}
				lastCommit = time.Now()
				buffered = false
			}

		case "stop":
			h.log.Info("voice bridge stopped", zap.String("call_sid", call.CallSID))
			return
		}
	}
}

func (h *MediaStreamHandler) connectModel(ctx context.Context, bot *domain.BotCard) (RealtimeConn, error) {
	model := h.model
	if bot.Realtime.Model != "" {
		model = bot.Realtime.Model
	}
	instructions := bot.Realtime.Instructions
	if instructions == "" {
		instructions = bot.SystemMessage()
	}

	return h.dial(ctx, model, openai.RealtimeSessionParams{
		Instructions: instructions,
		Voice:        bot.Realtime.Voice,
		Modalities:   bot.Realtime.Modalities,
		// commits are time-driven on the phone leg
		TurnDetection: nil,
	})
}

// pumpModelAudio relays model audio deltas back to Twilio, re-encoded
// to μ-law and framed for the stream.
func (h *MediaStreamHandler) pumpModelAudio(ctx context.Context, model RealtimeConn, c *websocket.Conn, streamSID string) {
	for {
		ev, err := model.ReadEvent(ctx)
		if err != nil {
			return
		}

		switch ev.Type {
		case "response.audio.delta":
			pcm, err := ev.AudioDelta()
			if err != nil {
				continue
			}
			mu := audio.EncodeMulaw(audio.Resample(pcm, modelSampleRate, phoneSampleRate))

			frame := mediaFrame{Event: "media", StreamSID: streamSID}
			frame.Media.Payload = base64.StdEncoding.EncodeToString(mu)
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case "response.audio_transcript.done":
			if ev.Transcript != "" {
				h.log.Debug("assistant said", zap.String("transcript", ev.Transcript))
			}

		case "error":
			h.log.Warn("realtime error",
				zap.String("code", ev.Error.Code),
				zap.String("message", ev.Error.Message))
		}
	}
}
