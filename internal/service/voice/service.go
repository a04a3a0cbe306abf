package voice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/ai/openai"
	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

// SessionCreator mints ephemeral realtime sessions.
type SessionCreator interface {
	CreateEphemeralSession(ctx context.Context, params openai.EphemeralSessionParams) (*domain.RealtimeSession, error)
}

// Service owns the browser-facing realtime session flow: resolving
// the bot's voice persona and merging VAD dials before minting.
type Service struct {
	creator  SessionCreator
	registry ports.BotRegistry
	cfg      config.RealtimeConfig
	log      *zap.Logger
}

func NewService(creator SessionCreator, registry ports.BotRegistry, cfg config.RealtimeConfig, log *zap.Logger) *Service {
	return &Service{
		creator:  creator,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

// VADOverrides are optional dial values from one source; nil fields
// leave the previous layer untouched.
type VADOverrides struct {
	HoldMs     *int
	Threshold  *float64
	MinVoiceMs *int
}

// MergeVAD layers the configured defaults, then query params, then
// the JSON body, and clamps the result.
func (s *Service) MergeVAD(query, body VADOverrides) domain.VADParams {
	params := domain.VADParams{
		HoldMs:     s.cfg.VADHoldMs,
		Threshold:  s.cfg.VADThreshold,
		MinVoiceMs: s.cfg.VADMinVoiceMs,
	}
	for _, layer := range []VADOverrides{query, body} {
		if layer.HoldMs != nil {
			params.HoldMs = *layer.HoldMs
		}
		if layer.Threshold != nil {
			params.Threshold = *layer.Threshold
		}
		if layer.MinVoiceMs != nil {
			params.MinVoiceMs = *layer.MinVoiceMs
		}
	}
	return ClampVAD(params)
}

// ClampVAD bounds the dials to ranges the realtime API accepts.
func ClampVAD(p domain.VADParams) domain.VADParams {
	if p.HoldMs < 200 {
		p.HoldMs = 200
	}
	if p.HoldMs > 15000 {
		p.HoldMs = 15000
	}
	if p.Threshold < 0 {
		p.Threshold = 0
	}
	if p.Threshold > 1 {
		p.Threshold = 1
	}
	if p.MinVoiceMs < 0 {
		p.MinVoiceMs = 0
	}
	if p.MinVoiceMs > 3000 {
		p.MinVoiceMs = 3000
	}
	return p
}

// CreateSession mints an ephemeral session for the named bot, or for
// a bare persona from the configured defaults when slug is empty.
func (s *Service) CreateSession(ctx context.Context, slug string, vad domain.VADParams) (*domain.RealtimeSession, error) {
	params := openai.EphemeralSessionParams{
		Model: s.cfg.Model,
		Voice: s.cfg.Voice,
		VAD:   vad,
	}

	if slug != "" {
		bot, err := s.registry.Get(slug)
		if err != nil {
			return nil, fmt.Errorf("unknown bot %q: %w", slug, err)
		}
		if bot.Realtime.Model != "" {
			params.Model = bot.Realtime.Model
		}
		if bot.Realtime.Voice != "" {
			params.Voice = bot.Realtime.Voice
		}
		params.Modalities = bot.Realtime.Modalities
		params.Instructions = bot.Realtime.Instructions
		if params.Instructions == "" {
			params.Instructions = bot.SystemMessage()
		}
	}

	session, err := s.creator.CreateEphemeralSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime session: %w", err)
	}

	s.log.Info("realtime session created",
		zap.String("bot", slug),
		zap.String("model", params.Model),
		zap.Int("vad_hold_ms", vad.HoldMs))
	return session, nil
}
