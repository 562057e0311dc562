package media

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

func TestMicrophonePipe(t *testing.T) {
	d := NewPipeDevices(zerolog.Nop())
	track, err := d.OpenMicrophone(context.Background(), 24000)
	if err != nil {
		t.Fatalf("OpenMicrophone failed: %v", err)
	}
	pipe, ok := d.AudioTrack(track.ID())
	if !ok {
		t.Fatal("opened track not registered")
	}

	if err := pipe.Push([]float32{0.1, 0.2}); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	got := <-track.Frames()
	if len(got) != 2 {
		t.Errorf("frame length = %d, want 2", len(got))
	}

	track.Stop()
	track.Stop() // idempotent
	if err := pipe.Push([]float32{0.3}); err == nil {
		t.Error("Push after Stop succeeded")
	}
	if _, ok := d.AudioTrack(track.ID()); ok {
		t.Error("stopped track still registered")
	}
	if _, open := <-track.Frames(); open {
		t.Error("frames channel not closed after Stop")
	}
}

func TestVideoPipeLatestFrame(t *testing.T) {
	d := NewPipeDevices(zerolog.Nop())
	track, err := d.OpenCamera(context.Background())
	if err != nil {
		t.Fatalf("OpenCamera failed: %v", err)
	}
	if _, err := track.Capture(); err == nil {
		t.Error("Capture before any frame succeeded")
	}

	pipe, _ := d.VideoTrack(track.ID())
	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 2, 2))
	_ = pipe.SetFrame(first)
	_ = pipe.SetFrame(second)

	img, err := track.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Error("Capture did not return the latest frame")
	}

	track.Stop()
	if _, err := track.Capture(); err == nil {
		t.Error("Capture after Stop succeeded")
	}
}

func TestDeniedCapture(t *testing.T) {
	d := NewPipeDevices(zerolog.Nop())
	d.Deny("microphone", true)
	d.Deny("screen", true)

	_, err := d.OpenMicrophone(context.Background(), 24000)
	if !errors.Is(err, session.ErrPermissionDenied) {
		t.Errorf("microphone error = %v, want ErrPermissionDenied", err)
	}
	_, err = d.OpenScreen(context.Background())
	if !errors.Is(err, session.ErrPermissionDenied) {
		t.Errorf("screen error = %v, want ErrPermissionDenied", err)
	}
	if _, err := d.OpenCamera(context.Background()); err != nil {
		t.Errorf("camera unexpectedly denied: %v", err)
	}
}
