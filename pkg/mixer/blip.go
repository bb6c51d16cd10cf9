package mixer

// BlipBuffer is a band-limited delta accumulator: chip generators submit
// (cycle, delta) pairs as their amplitude changes, and the buffer
// integrates them into a running DC level that is resampled down to the
// output sample rate. The resample step splits each delta fractionally
// between the two output samples nearest its cycle position, which
// approximates the antialiasing a full sinc-kernel synthesizer gives
// without requiring one: this module accepts the simpler two-tap split in
// exchange for not hand-transcribing a precomputed windowed-sinc kernel
// table untested.
type BlipBuffer struct {
	clockRate  float64
	sampleRate float64
	factor     float64 // output samples per input cycle

	// frame holds the fractional delta contribution for every output
	// sample position reachable within the current frame, plus one extra
	// slot so a delta landing on the last cycle can still split forward.
	frame    []int32
	accum    int32 // running integrated amplitude, carried across frames
	samples  []int16
	maxDelta int32
}

// NewBlipBuffer returns an accumulator with no rates set; call SetRates
// before use.
func NewBlipBuffer() *BlipBuffer {
	return &BlipBuffer{}
}

// SetRates configures the input (CPU master clock) rate and the output
// sample rate. The internal working buffer is sized for 1/50 s of input
// cycles; AddDelta grows it when a delta lands beyond that.
func (b *BlipBuffer) SetRates(cpuClocksPerSecond, sampleRate float64) {
	b.clockRate = cpuClocksPerSecond
	b.sampleRate = sampleRate
	b.factor = sampleRate / cpuClocksPerSecond
	// A generous per-frame cap; AddDelta grows this on demand for unusually
	// long frames (e.g. NSF playback driven at non-standard frame lengths).
	need := int(cpuClocksPerSecond/50) + 8
	if len(b.frame) < need {
		b.frame = make([]int32, need)
	}
}

// AddDelta records a signed amplitude change at cycle, a master-clock
// timestamp relative to the current frame's start. Calls must be in
// non-decreasing cycle order.
func (b *BlipBuffer) AddDelta(cycle uint32, delta int32) {
	if delta == 0 {
		return
	}
	pos := float64(cycle) * b.factor
	i := int(pos)
	frac := pos - float64(i)
	if i+1 >= len(b.frame) {
		grown := make([]int32, i+2)
		copy(grown, b.frame)
		b.frame = grown
	}
	d := float64(delta)
	b.frame[i] += int32(d * (1 - frac))
	b.frame[i+1] += int32(d * frac)
}

// EndFrame commits every delta recorded so far (for cycles in
// [0, cyclesInFrame)) into resampled PCM, then resets the working buffer
// for the next frame. The running DC level (accum) carries forward so a
// channel held at a non-zero amplitude across a frame boundary keeps
// sounding.
func (b *BlipBuffer) EndFrame(cyclesInFrame uint32) {
	frameSamples := int(float64(cyclesInFrame) * b.factor)
	if frameSamples > len(b.frame) {
		frameSamples = len(b.frame)
	}
	for i := 0; i < frameSamples; i++ {
		b.accum += b.frame[i]
		b.samples = append(b.samples, clamp16(b.accum))
	}
	// Carry any contribution that landed past frameSamples (from a delta
	// very close to the frame boundary) into the next frame's buffer.
	remainder := len(b.frame) - frameSamples
	copy(b.frame[:remainder], b.frame[frameSamples:])
	for i := remainder; i < len(b.frame); i++ {
		b.frame[i] = 0
	}
}

func clamp16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// SamplesAvailable reports how many mono samples are buffered and ready
// for ReadSamples.
func (b *BlipBuffer) SamplesAvailable() int {
	return len(b.samples)
}

// ReadSamples decimates up to len(out) samples into out. If stereo, out is
// filled in interleaved L/R pairs with each mono sample duplicated, so
// len(out) must be even and only len(out)/2 mono samples are consumed.
// Returns the number of elements written.
func (b *BlipBuffer) ReadSamples(out []int16, stereo bool) int {
	if stereo {
		n := len(out) / 2
		if n > len(b.samples) {
			n = len(b.samples)
		}
		for i := 0; i < n; i++ {
			out[2*i] = b.samples[i]
			out[2*i+1] = b.samples[i]
		}
		b.samples = b.samples[n:]
		return n * 2
	}

	n := len(out)
	if n > len(b.samples) {
		n = len(b.samples)
	}
	copy(out, b.samples[:n])
	b.samples = b.samples[n:]
	return n
}
