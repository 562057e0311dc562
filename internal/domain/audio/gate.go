package audio

import "sync/atomic"

// Sink receives encoded PCM frames, typically a provider transport.
type Sink interface {
	WritePCM(frame []byte) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(frame []byte) error

func (f SinkFunc) WritePCM(frame []byte) error { return f(frame) }

// SinkGate sits between the bridge and the transport. While muted it stops
// invoking the downstream sink entirely instead of forwarding silence, so
// the transport-level "no audio sent" signal stays observable.
type SinkGate struct {
	sink  Sink
	muted atomic.Bool
}

// NewSinkGate wraps a downstream sink in a mute gate.
func NewSinkGate(sink Sink) *SinkGate {
	return &SinkGate{sink: sink}
}

// WritePCM forwards the frame unless the gate is muted.
func (g *SinkGate) WritePCM(frame []byte) error {
	if g.muted.Load() {
		return nil
	}
	return g.sink.WritePCM(frame)
}

// SetMuted flips the gate. Muting never tears anything down.
func (g *SinkGate) SetMuted(muted bool) {
	g.muted.Store(muted)
}

// Muted reports the current gate state.
func (g *SinkGate) Muted() bool {
	return g.muted.Load()
}
