package audio

import (
	"math"
	"testing"
)

func TestMulaw_RoundTripSilence(t *testing.T) {
	got := DecodeMulawSample(EncodeMulawSample(0))
	if got < -8 || got > 8 {
		t.Errorf("silence should round-trip near zero, got %d", got)
	}
}

func TestMulaw_RoundTripPreservesSignAndScale(t *testing.T) {
	cases := []int16{100, -100, 1000, -1000, 8000, -8000, 30000, -30000}
	for _, want := range cases {
		got := DecodeMulawSample(EncodeMulawSample(want))

		if (want > 0) != (got > 0) {
			t.Errorf("sample %d: sign flipped to %d", want, got)
		}
		// logarithmic coding, allow ~6% relative error
		diff := math.Abs(float64(got) - float64(want))
		if diff > math.Abs(float64(want))*0.06+16 {
			t.Errorf("sample %d decoded to %d (diff %.0f)", want, got, diff)
		}
	}
}

func TestMulaw_FrameRoundTrip(t *testing.T) {
	// one cycle of a 400 Hz tone at 8 kHz
	pcm := make([]byte, 40)
	for i := 0; i < 20; i++ {
		s := int16(12000 * math.Sin(2*math.Pi*float64(i)/20))
		pcm[i*2] = byte(s)
		pcm[i*2+1] = byte(s >> 8)
	}

	mu := EncodeMulaw(pcm)
	if len(mu) != 20 {
		t.Fatalf("expected 20 mulaw bytes, got %d", len(mu))
	}
	back := DecodeMulaw(mu)
	if len(back) != 40 {
		t.Fatalf("expected 40 pcm bytes, got %d", len(back))
	}
}

func TestEncodeMulaw_DropsOddByte(t *testing.T) {
	if got := EncodeMulaw([]byte{1, 2, 3}); len(got) != 1 {
		t.Errorf("expected 1 byte, got %d", len(got))
	}
}

func TestResample_Upsample(t *testing.T) {
	pcm := pcmRamp(80) // 10 ms at 8 kHz
	out := Resample(pcm, 8000, 24000)

	if len(out) != len(pcm)*3 {
		t.Errorf("expected %d bytes, got %d", len(pcm)*3, len(out))
	}
}

func TestResample_Downsample(t *testing.T) {
	pcm := pcmRamp(240)
	out := Resample(pcm, 24000, 8000)

	if len(out) != len(pcm)/3 {
		t.Errorf("expected %d bytes, got %d", len(pcm)/3, len(out))
	}
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	pcm := pcmRamp(40)
	out := Resample(pcm, 8000, 8000)
	if &out[0] != &pcm[0] {
		t.Error("expected same buffer back")
	}
}

func TestResample_PreservesMonotoneRamp(t *testing.T) {
	pcm := pcmRamp(100)
	out := Resample(pcm, 8000, 16000)

	prev := int16(math.MinInt16)
	for i := 0; i+1 < len(out); i += 2 {
		s := int16(out[i]) | int16(out[i+1])<<8
		if s < prev {
			t.Fatalf("ramp not monotone at sample %d: %d < %d", i/2, s, prev)
		}
		prev = s
	}
}

func TestResample_Empty(t *testing.T) {
	if out := Resample(nil, 8000, 16000); out != nil {
		t.Errorf("expected nil, got %d bytes", len(out))
	}
}

func pcmRamp(samples int) []byte {
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		s := int16(i * 50)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
