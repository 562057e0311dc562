package audio

import (
	"math"
	"testing"
)

func TestEncodeLength(t *testing.T) {
	b := NewBridge(24000)

	for _, n := range []int{0, 1, 7, 480, 1024} {
		samples := make([]float32, n)
		out, err := b.Encode(samples)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 2*n {
			t.Fatalf("expected %d bytes for %d samples, got %d", 2*n, n, len(out))
		}
	}
}

func TestEncodeClamping(t *testing.T) {
	b := NewBridge(24000)

	tests := []struct {
		name   string
		sample float32
		want   int16
	}{
		{"positive overflow clamps", 2.5, 32767},
		{"negative overflow clamps", -3.0, -32767},
		{"unity", 1.0, 32767},
		{"negative unity", -1.0, -32767},
		{"zero", 0.0, 0},
		{"half scale truncates toward zero", 0.5, 16383},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := b.Encode([]float32{tt.sample})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := int16(uint16(out[0]) | uint16(out[1])<<8)
			if got != tt.want {
				t.Fatalf("encoded %v as %d, want %d", tt.sample, got, tt.want)
			}
		})
	}
}

func TestRoundTripQuantizationBound(t *testing.T) {
	b := NewBridge(24000)

	samples := make([]float32, 0, 256)
	for i := -128; i < 128; i++ {
		samples = append(samples, float32(i)/128.0)
	}

	encoded, err := b.Encode(samples)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame, err := b.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(frame.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(frame.Samples))
	}

	const bound = 1.0 / 32768.0
	for i, s := range samples {
		if diff := math.Abs(float64(frame.Samples[i] - s)); diff > bound {
			t.Fatalf("sample %d: round-trip error %g exceeds %g", i, diff, bound)
		}
	}
}

func TestDecodeOddLengthDropsTrailingByte(t *testing.T) {
	b := NewBridge(24000)

	frame, err := b.Decode([]byte{0x00, 0x40, 0x7f})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(frame.Samples))
	}
	if frame.SampleRate != 24000 {
		t.Fatalf("expected sample rate 24000, got %d", frame.SampleRate)
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	b := NewBridge(24000)
	if _, err := b.Decode(nil); err != ErrEmptyFrame {
		t.Fatalf("expected ErrEmptyFrame, got %v", err)
	}
}

func TestClosedBridgeFails(t *testing.T) {
	b := NewBridge(24000)
	b.Close()

	if _, err := b.Encode([]float32{0}); err != ErrBridgeClosed {
		t.Fatalf("expected ErrBridgeClosed from Encode, got %v", err)
	}
	if _, err := b.Decode([]byte{0, 0}); err != ErrBridgeClosed {
		t.Fatalf("expected ErrBridgeClosed from Decode, got %v", err)
	}
	if !b.Closed() {
		t.Fatal("expected Closed() to report true")
	}
}

func TestSinkGateStopsInvokingSink(t *testing.T) {
	calls := 0
	gate := NewSinkGate(SinkFunc(func(frame []byte) error {
		calls++
		return nil
	}))

	if err := gate.WritePCM([]byte{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate.SetMuted(true)
	for i := 0; i < 5; i++ {
		if err := gate.WritePCM([]byte{1, 2}); err != nil {
			t.Fatalf("unexpected error while muted: %v", err)
		}
	}
	gate.SetMuted(false)
	if err := gate.WritePCM([]byte{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Fatalf("sink invoked %d times, want 2 (muted writes must not reach the sink)", calls)
	}
}
