// Package audio converts between float sample frames and the 16-bit
// little-endian PCM representation the realtime voice providers consume.
package audio

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrBridgeClosed is returned when a destroyed bridge is used.
	ErrBridgeClosed = errors.New("audio bridge closed")
	// ErrEmptyFrame is returned when a decode is attempted on an empty buffer.
	ErrEmptyFrame = errors.New("empty pcm frame")
)

// Frame is a decoded block of normalized float samples.
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Bridge performs stateless float32 <-> PCM16LE conversion. It runs on every
// audio callback, so both directions allocate only the one output buffer.
type Bridge struct {
	sampleRate int
	closed     atomic.Bool
}

// NewBridge creates a bridge for the given playback sample rate.
func NewBridge(sampleRate int) *Bridge {
	return &Bridge{sampleRate: sampleRate}
}

// SampleRate returns the configured playback sample rate.
func (b *Bridge) SampleRate() int {
	return b.sampleRate
}

// Encode converts normalized float samples to 16-bit little-endian PCM.
// Each sample is clamped to [-1, 1], scaled by 32767 and truncated toward
// zero. The output is always exactly 2x the input length in bytes.
func (b *Bridge) Encode(samples []float32) ([]byte, error) {
	if b.closed.Load() {
		return nil, ErrBridgeClosed
	}

	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out, nil
}

// Decode converts a 16-bit little-endian PCM frame back to normalized
// floats via sample/32768. An odd trailing byte is dropped rather than
// misread as half a sample.
func (b *Bridge) Decode(frame []byte) (*Frame, error) {
	if b.closed.Load() {
		return nil, ErrBridgeClosed
	}
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	n := len(frame) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(frame[i*2]) | uint16(frame[i*2+1])<<8)
		samples[i] = float32(v) / 32768.0
	}
	return &Frame{Samples: samples, SampleRate: b.sampleRate}, nil
}

// Close marks the bridge destroyed. Subsequent Encode/Decode calls fail.
func (b *Bridge) Close() {
	b.closed.Store(true)
}

// Closed reports whether the bridge has been destroyed.
func (b *Bridge) Closed() bool {
	return b.closed.Load()
}
