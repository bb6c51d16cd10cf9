// Package audioout drains PCM samples out of a pkg/mixer.BlipBuffer and
// queues them to an SDL audio device, generalizing the sample-format
// negotiation and volume/backlog handling the teacher's pkg/gui used to
// do inline against a since-removed APU.Output slice.
package audioout

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/yoshiomiyamaegones/pkg/mixer"
	"github.com/yoshiomiyamaegones/pkg/ratectl"
)

// Device owns one open SDL audio output device.
type Device struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	buf []int16

	rate       *ratectl.Controller
	cpuClockHz float64
}

// SetRateControl attaches the dynamic rate controller that Drain consults
// on every call to keep the mixer's production rate tracking this device's
// actual drain rate, closing the producer/consumer loop spec.md §4.6 and
// §5 describe: pkg/ratectl is the producer-side throttle, this SDL queue is
// the consumer. cpuClockHz is the CPU master clock rate mix was built
// against (needed to re-derive mix's resampling ratio on every adjustment).
func (d *Device) SetRateControl(c *ratectl.Controller, cpuClockHz float64) {
	d.rate = c
	d.cpuClockHz = cpuClockHz
}

// Open negotiates an SDL audio device at sampleRate, preferring 32-bit
// float samples and falling back to 16-bit signed integer (better
// Windows driver compatibility, same fallback the teacher's initAudio
// used). bufferSize is the SDL callback-free queueing chunk size.
func Open(sampleRate, bufferSize int) (*Device, error) {
	want := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32LSB,
		Channels: 1,
		Samples:  uint16(bufferSize),
	}

	var have sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
	if err != nil {
		want.Format = sdl.AUDIO_S16LSB
		id, err = sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
		if err != nil {
			return nil, fmt.Errorf("audioout: open device: %w", err)
		}
	}

	d := &Device{id: id, spec: have}
	sdl.PauseAudioDevice(id, false)
	return d, nil
}

// SampleRate returns the device's actual negotiated sample rate, which
// callers should feed to mixer.BlipBuffer.SetRates — it may differ from
// what was requested.
func (d *Device) SampleRate() int { return int(d.spec.Freq) }

// QueuedBytes reports how much audio SDL still has buffered and hasn't
// played yet.
func (d *Device) QueuedBytes() uint32 {
	return sdl.GetQueuedAudioSize(d.id)
}

// Drain pulls every sample currently available from mix and queues it
// to the device, capping total backlog at maxQueuedBytes so a slow
// consumer doesn't build unbounded latency. volume scales linearly
// (1.0 = unity).
func (d *Device) Drain(mix *mixer.BlipBuffer, maxQueuedBytes uint32, volume float32) {
	n := mix.SamplesAvailable()
	if d.rate != nil {
		effRate := d.rate.Update(n)
		mix.SetRates(d.cpuClockHz, effRate)
	}
	if n == 0 {
		return
	}
	if d.QueuedBytes() >= maxQueuedBytes {
		// Backlog already full: still drain the buffer so the mixer
		// doesn't stall accumulating deltas, just discard the PCM.
		if cap(d.buf) < n {
			d.buf = make([]int16, n)
		}
		mix.ReadSamples(d.buf[:n], false)
		return
	}

	if cap(d.buf) < n {
		d.buf = make([]int16, n)
	}
	samples := d.buf[:n]
	mix.ReadSamples(samples, false)

	switch d.spec.Format {
	case sdl.AUDIO_F32LSB:
		out := make([]byte, n*4)
		for i, s := range samples {
			f := float32(s) / 32768.0 * volume
			bits := *(*uint32)(unsafe.Pointer(&f))
			out[i*4+0] = byte(bits)
			out[i*4+1] = byte(bits >> 8)
			out[i*4+2] = byte(bits >> 16)
			out[i*4+3] = byte(bits >> 24)
		}
		sdl.QueueAudio(d.id, out)
	case sdl.AUDIO_S16LSB:
		out := make([]byte, n*2)
		for i, s := range samples {
			v := float32(s) * volume
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			iv := int16(v)
			out[i*2+0] = byte(iv)
			out[i*2+1] = byte(iv >> 8)
		}
		sdl.QueueAudio(d.id, out)
	}
}

// Close shuts down the audio device.
func (d *Device) Close() {
	if d.id != 0 {
		sdl.CloseAudioDevice(d.id)
	}
}
