package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL  string
	CallSID    string
	StreamSID  string
	ToNumber   string
	FromNumber string
	FrameMs    int     // frame duration, Twilio uses 20ms
	ToneHz     float64 // synthetic caller voice frequency
	BurstMs    int     // length of one simulated utterance
	PauseMs    int     // silence between utterances
}

// Simulator simulates one Twilio Media Streams call leg: it opens the
// media websocket, sends a start frame, pushes μ-law audio bursts of a
// sine tone, and counts the audio the bot plays back.
type Simulator struct {
	config *SimulatorConfig
	conn   *websocket.Conn
	log    *zap.Logger

	mu            sync.Mutex
	framesSent    int
	framesEchoed  int
	bytesReceived int

	stopChan chan struct{}
	wg       sync.WaitGroup
}

type startPayload struct {
	StreamSID        string            `json:"streamSid"`
	CallSID          string            `json:"callSid"`
	CustomParameters map[string]string `json:"customParameters"`
}

type mediaPayload struct {
	Payload string `json:"payload"`
}

// outboundFrame is the subset of the Media Streams protocol the
// simulator emits.
type outboundFrame struct {
	Event     string        `json:"event"`
	Start     *startPayload `json:"start,omitempty"`
	StreamSID string        `json:"streamSid,omitempty"`
	Media     *mediaPayload `json:"media,omitempty"`
}

type inboundFrame struct {
	Event string       `json:"event"`
	Media mediaPayload `json:"media"`
}

// NewSimulator creates a new media stream simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	if config.FrameMs <= 0 {
		config.FrameMs = 20
	}
	return &Simulator{
		config:   config,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Connect opens the media stream websocket and announces the call.
func (s *Simulator) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.config.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	s.conn = conn

	start := outboundFrame{
		Event: "start",
		Start: &startPayload{
			StreamSID: s.config.StreamSID,
			CallSID:   s.config.CallSID,
			CustomParameters: map[string]string{
				"to_number":   s.config.ToNumber,
				"from_number": s.config.FromNumber,
			},
		},
	}
	if err := s.conn.WriteJSON(start); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send start frame: %w", err)
	}

	s.log.Info("Media stream started",
		zap.String("url", s.config.ServerURL),
		zap.String("call_sid", s.config.CallSID),
		zap.String("to", s.config.ToNumber),
	)
	return nil
}

// Run streams caller audio until Stop is called: one tone burst, one
// pause, repeat. The read loop runs alongside and tallies bot audio.
func (s *Simulator) Run() {
	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
}

// Stop ends the call and closes the connection.
func (s *Simulator) Stop() {
	close(s.stopChan)

	stop := outboundFrame{Event: "stop", StreamSID: s.config.StreamSID}
	if err := s.conn.WriteJSON(stop); err != nil {
		s.log.Debug("stop frame failed", zap.Error(err))
	}
	s.conn.Close()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("Call finished",
		zap.Int("frames_sent", s.framesSent),
		zap.Int("frames_received", s.framesEchoed),
		zap.Float64("bot_audio_seconds", float64(s.bytesReceived)/8000.0),
	)
}

func (s *Simulator) writeLoop() {
	defer s.wg.Done()

	samplesPerFrame := 8000 * s.config.FrameMs / 1000
	framesPerBurst := s.config.BurstMs / s.config.FrameMs
	framesPerCycle := framesPerBurst + s.config.PauseMs/s.config.FrameMs

	ticker := time.NewTicker(time.Duration(s.config.FrameMs) * time.Millisecond)
	defer ticker.Stop()

	phase := 0.0
	frameInCycle := 0
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			var payload []byte
			if frameInCycle < framesPerBurst {
				payload, phase = toneFrame(samplesPerFrame, s.config.ToneHz, phase)
			} else {
				payload = silenceFrame(samplesPerFrame)
			}
			frameInCycle++
			if frameInCycle >= framesPerCycle {
				frameInCycle = 0
			}

			frame := outboundFrame{
				Event:     "media",
				StreamSID: s.config.StreamSID,
				Media:     &mediaPayload{Payload: base64.StdEncoding.EncodeToString(payload)},
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}

			s.mu.Lock()
			s.framesSent++
			s.mu.Unlock()
		}
	}
}

func (s *Simulator) readLoop() {
	defer s.wg.Done()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Event != "media" {
			continue
		}

		decoded, err := base64.StdEncoding.DecodeString(frame.Media.Payload)
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.framesEchoed++
		s.bytesReceived += len(decoded)
		s.mu.Unlock()
	}
}

// toneFrame encodes one frame of a sine tone as μ-law, carrying the
// phase across frames so the tone is continuous.
func toneFrame(samples int, hz, phase float64) ([]byte, float64) {
	out := make([]byte, samples)
	step := 2 * math.Pi * hz / 8000.0
	for i := 0; i < samples; i++ {
		sample := int16(12000 * math.Sin(phase))
		out[i] = encodeMulawSample(sample)
		phase += step
	}
	return out, math.Mod(phase, 2*math.Pi)
}

func silenceFrame(samples int) []byte {
	out := make([]byte, samples)
	for i := range out {
		out[i] = 0xFF // μ-law silence
	}
	return out
}

// encodeMulawSample converts one PCM16 sample to G.711 μ-law.
func encodeMulawSample(sample int16) byte {
	const bias = 0x84
	const clip = 32635

	sign := byte(0)
	if sample < 0 {
		sign = 0x80
		sample = -sample
	}
	if sample > clip {
		sample = clip
	}
	sample += bias

	exponent := byte(7)
	for mask := int16(0x4000); exponent > 0 && sample&mask == 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte(sample>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}
