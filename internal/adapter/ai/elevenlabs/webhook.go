package elevenlabs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how stale a signed webhook timestamp may be.
const signatureTolerance = 30 * time.Minute

// VerifySignature checks the ElevenLabs-Signature header against the
// raw body. The header carries "t=<unix>,v0=<hex hmac>" where the mac
// covers "<unix>.<body>".
func VerifySignature(body []byte, header, secret string, now time.Time) bool {
	var ts, mac string
	for _, part := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			ts = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v0="):
			mac = strings.TrimPrefix(part, "v0=")
		}
	}
	if ts == "" || mac == "" {
		return false
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(unix, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return false
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(ts))
	h.Write([]byte("."))
	h.Write(body)
	want := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(want), []byte(mac))
}

// PostCall is the digest of a ConvAI post-call webhook: who called,
// which agent handled it and what was said.
type PostCall struct {
	AgentID      string
	CallerID     string
	CalledNumber string
	Turns        []TranscriptTurn
}

type TranscriptTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type postCallPayload struct {
	Type string `json:"type"`
	Data struct {
		AgentID    string           `json:"agent_id"`
		Transcript []TranscriptTurn `json:"transcript"`
		Metadata   struct {
			PhoneCall struct {
				ExternalNumber string `json:"external_number"`
				AgentNumber    string `json:"agent_number"`
			} `json:"phone_call"`
		} `json:"metadata"`
		ConversationInitiationClientData struct {
			DynamicVariables map[string]interface{} `json:"dynamic_variables"`
		} `json:"conversation_initiation_client_data"`
	} `json:"data"`
}

// ParsePostCall decodes a post-call webhook body. Caller and called
// numbers are taken from the dynamic variables when present, falling
// back to the phone-call metadata.
func ParsePostCall(body []byte) (*PostCall, error) {
	var payload postCallPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("elevenlabs: decode post-call webhook: %w", err)
	}

	pc := &PostCall{
		AgentID:      payload.Data.AgentID,
		CallerID:     payload.Data.Metadata.PhoneCall.ExternalNumber,
		CalledNumber: payload.Data.Metadata.PhoneCall.AgentNumber,
		Turns:        payload.Data.Transcript,
	}

	vars := payload.Data.ConversationInitiationClientData.DynamicVariables
	if v, ok := vars["system__caller_id"].(string); ok && v != "" {
		pc.CallerID = v
	}
	if v, ok := vars["system__called_number"].(string); ok && v != "" {
		pc.CalledNumber = v
	}
	return pc, nil
}

// UserSaid reports whether any user turn contains one of the phrases,
// case-insensitive.
func (p *PostCall) UserSaid(phrases []string) bool {
	for _, turn := range p.Turns {
		if turn.Role != "user" {
			continue
		}
		text := strings.ToLower(turn.Message)
		for _, phrase := range phrases {
			if strings.Contains(text, strings.ToLower(phrase)) {
				return true
			}
		}
	}
	return false
}
