// Package audio holds the transcode primitives for the telephony
// bridge: G.711 μ-law coding and sample-rate conversion over 16-bit
// little-endian PCM.
package audio

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// EncodeMulawSample compresses one PCM16 sample to 8-bit μ-law.
func EncodeMulawSample(s int16) byte {
	v := int32(s)
	sign := byte(0)
	if v < 0 {
		v = -v
		sign = 0x80
	}
	if v > mulawClip {
		v = mulawClip
	}
	v += mulawBias

	exponent := byte(7)
	for mask := int32(0x4000); (v&mask) == 0 && exponent > 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte((v >> (uint(exponent) + 3)) & 0x0F)
	return ^(sign | (exponent << 4) | mantissa)
}

// DecodeMulawSample expands one μ-law byte to a PCM16 sample.
func DecodeMulawSample(u byte) int16 {
	u = ^u
	sign := u & 0x80
	exponent := (u >> 4) & 0x07
	mantissa := u & 0x0F

	v := ((int32(mantissa) << 3) + mulawBias) << exponent
	v -= mulawBias
	if sign != 0 {
		v = -v
	}
	return int16(v)
}

// DecodeMulaw expands a μ-law frame into PCM16 little-endian bytes.
func DecodeMulaw(mu []byte) []byte {
	out := make([]byte, len(mu)*2)
	for i, b := range mu {
		s := DecodeMulawSample(b)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// EncodeMulaw compresses PCM16 little-endian bytes into a μ-law frame.
// A trailing odd byte is dropped.
func EncodeMulaw(pcm []byte) []byte {
	n := len(pcm) / 2
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = EncodeMulawSample(s)
	}
	return out
}
