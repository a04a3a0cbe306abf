package domain

// VoiceCall is one live Twilio Media Streams call bridged to the model.
type VoiceCall struct {
	CallSID   string `json:"call_sid"`
	StreamSID string `json:"stream_sid"`
	Bot       string `json:"bot"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// VADParams are the server-VAD dials for a realtime session, already
// clamped to their valid ranges.
type VADParams struct {
	HoldMs     int     `json:"hold_ms"`
	Threshold  float64 `json:"threshold"`
	MinVoiceMs int     `json:"min_voice_ms"`
}

// RealtimeSession is the ephemeral session handed to a browser client.
type RealtimeSession struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	ExpiresAt    int64  `json:"expires_at"`
	Model        string `json:"model"`
	Voice        string `json:"voice"`
}

// ElevenSession is the short-lived local token for the SDP proxy.
type ElevenSession struct {
	Token     string `json:"token"`
	AgentID   string `json:"agent_id"`
	ExpiresAt int64  `json:"expires_at"`
	ProxyURL  string `json:"proxy_url"`
}
