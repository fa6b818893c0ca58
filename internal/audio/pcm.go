package audio

// QuantizePCM16 converts float samples in nominal range [-1, 1] to 16-bit
// signed PCM. Out-of-range input is clamped first so a hot microphone cannot
// wrap around into noise.
func QuantizePCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		if s < 0 {
			out[i] = int16(s * 0x8000)
		} else {
			out[i] = int16(s * 0x7FFF)
		}
	}
	return out
}

// SampleBuffer accumulates the fixed-size float chunks a processing callback
// delivers during a fallback recording. Single-owner; callers serialize
// access through the capture controller.
type SampleBuffer struct {
	chunks  [][]float32
	samples int
}

// NewSampleBuffer returns an empty buffer.
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

// Push appends one processing-callback chunk. The chunk is copied: browser
// processors reuse their backing array between callbacks.
func (b *SampleBuffer) Push(chunk []float32) {
	if len(chunk) == 0 {
		return
	}
	copied := make([]float32, len(chunk))
	copy(copied, chunk)
	b.chunks = append(b.chunks, copied)
	b.samples += len(copied)
}

// Len returns the total number of buffered samples.
func (b *SampleBuffer) Len() int {
	return b.samples
}

// Concat flattens all buffered chunks into one contiguous sample slice in
// arrival order.
func (b *SampleBuffer) Concat() []float32 {
	out := make([]float32, 0, b.samples)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Reset discards all buffered data.
func (b *SampleBuffer) Reset() {
	b.chunks = nil
	b.samples = 0
}
