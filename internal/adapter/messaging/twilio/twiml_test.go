package twilio

import (
	"strings"
	"testing"
)

func TestMessageReply(t *testing.T) {
	out, err := MessageReply("Hola, ¿en qué puedo ayudarte?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<Message>Hola, ¿en qué puedo ayudarte?</Message>") {
		t.Errorf("expected message verb, got %s", s)
	}
	if !strings.HasPrefix(s, "<?xml") {
		t.Errorf("expected xml declaration, got %s", s)
	}
}

func TestMessageReply_Empty(t *testing.T) {
	out, err := MessageReply("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "<Message>") {
		t.Errorf("expected no message verb, got %s", out)
	}
}

func TestStreamReply(t *testing.T) {
	out, err := StreamReply("wss://example.com/voice/stream", "+15551230000", "+15559870000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`<Stream url="wss://example.com/voice/stream">`,
		`<Parameter name="to_number" value="+15551230000">`,
		`<Parameter name="from_number" value="+15559870000">`,
		"<Connect>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in twiml, got %s", want, s)
		}
	}
}

func TestRejectReply(t *testing.T) {
	out, err := RejectReply("Lo sentimos, no hay un agente disponible.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<Say>Lo sentimos, no hay un agente disponible.</Say>") {
		t.Errorf("expected say verb, got %s", s)
	}
	if !strings.Contains(s, "<Hangup>") {
		t.Errorf("expected hangup verb, got %s", s)
	}
}
