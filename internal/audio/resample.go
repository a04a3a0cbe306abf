package audio

// Resample converts PCM16 little-endian audio between sample rates
// using linear interpolation. Good enough for narrowband speech; the
// callers move between the 8 kHz phone leg and the model's rate.
func Resample(pcm []byte, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return pcm
	}

	in := make([]int16, len(pcm)/2)
	for i := range in {
		in[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	if len(in) == 0 {
		return nil
	}

	outLen := int(int64(len(in)) * int64(toRate) / int64(fromRate))
	if outLen == 0 {
		return nil
	}

	out := make([]byte, outLen*2)
	ratio := float64(fromRate) / float64(toRate)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			s := in[len(in)-1]
			out[i*2] = byte(s)
			out[i*2+1] = byte(s >> 8)
			continue
		}
		frac := pos - float64(idx)
		s := int16(float64(in[idx])*(1-frac) + float64(in[idx+1])*frac)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
