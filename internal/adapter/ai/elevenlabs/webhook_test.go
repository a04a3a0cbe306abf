package elevenlabs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

const postCallBody = `{
  "type": "post_call_transcription",
  "data": {
    "agent_id": "agent-abc",
    "transcript": [
      {"role": "agent", "message": "Hola, ¿en qué puedo ayudarte?"},
      {"role": "user", "message": "Quiero agendar una cita"}
    ],
    "metadata": {
      "phone_call": {
        "external_number": "+15551230000",
        "agent_number": "+15559870000"
      }
    },
    "conversation_initiation_client_data": {
      "dynamic_variables": {
        "system__caller_id": "+15551234567",
        "system__called_number": "+15559876543"
      }
    }
  }
}`

func TestParsePostCall(t *testing.T) {
	pc, err := ParsePostCall([]byte(postCallBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pc.AgentID != "agent-abc" {
		t.Errorf("expected agent-abc, got %s", pc.AgentID)
	}
	if pc.CallerID != "+15551234567" {
		t.Errorf("expected dynamic caller id to win, got %s", pc.CallerID)
	}
	if pc.CalledNumber != "+15559876543" {
		t.Errorf("expected dynamic called number to win, got %s", pc.CalledNumber)
	}
	if len(pc.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(pc.Turns))
	}
}

func TestParsePostCall_MetadataFallback(t *testing.T) {
	body := `{"data":{"agent_id":"a","metadata":{"phone_call":{"external_number":"+15550001111","agent_number":"+15550002222"}}}}`
	pc, err := ParsePostCall([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.CallerID != "+15550001111" {
		t.Errorf("expected metadata caller, got %s", pc.CallerID)
	}
}

func TestParsePostCall_BadJSON(t *testing.T) {
	if _, err := ParsePostCall([]byte("nope")); err == nil {
		t.Error("expected error for invalid json")
	}
}

func signBody(secret string, ts int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(body)
	return fmt.Sprintf("t=%d,v0=%s", ts, hex.EncodeToString(h.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(postCallBody)
	now := time.Unix(1756500000, 0)
	header := signBody("wsec_test", now.Unix(), body)

	if !VerifySignature(body, header, "wsec_test", now) {
		t.Error("expected valid signature to pass")
	}
	if VerifySignature(body, header, "wsec_other", now) {
		t.Error("wrong secret must fail")
	}
	if VerifySignature([]byte("tampered"), header, "wsec_test", now) {
		t.Error("tampered body must fail")
	}
	if VerifySignature(body, "", "wsec_test", now) {
		t.Error("missing header must fail")
	}
	if VerifySignature(body, "t=abc,v0=zz", "wsec_test", now) {
		t.Error("malformed header must fail")
	}
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	body := []byte(postCallBody)
	now := time.Unix(1756500000, 0)
	old := now.Add(-time.Hour)

	header := signBody("wsec_test", old.Unix(), body)
	if VerifySignature(body, header, "wsec_test", now) {
		t.Error("stale timestamp must fail")
	}
}

func TestUserSaid(t *testing.T) {
	pc, _ := ParsePostCall([]byte(postCallBody))

	if !pc.UserSaid([]string{"agendar"}) {
		t.Error("expected match on user turn")
	}
	if pc.UserSaid([]string{"ayudarte"}) {
		t.Error("agent turns must not match")
	}
	if pc.UserSaid([]string{"factura"}) {
		t.Error("expected no match")
	}
}
