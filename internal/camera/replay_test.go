package camera

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func flatFrame(width, height int, raw uint16, scale float64) *DepthFrame {
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = raw
	}
	return &DepthFrame{Width: width, Height: height, Data: data, Scale: scale}
}

func TestReplayRoundTrip(t *testing.T) {
	frames := []*DepthFrame{
		flatFrame(8, 4, 1000, 0.001),
		flatFrame(8, 4, 2000, 0.001),
	}

	var buf bytes.Buffer
	if err := WriteReplayFile(&buf, frames); err != nil {
		t.Fatalf("WriteReplayFile: %v", err)
	}

	path := filepath.Join(t.TempDir(), "frames.dbrf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	got, scale, err := ReadReplayFile(path)
	if err != nil {
		t.Fatalf("ReadReplayFile: %v", err)
	}
	if scale != 0.001 {
		t.Errorf("scale = %f, want 0.001", scale)
	}
	if len(got) != 2 {
		t.Fatalf("got %d frames, want 2", len(got))
	}
	if got[0].At(0, 0) != 1000 || got[1].At(0, 0) != 2000 {
		t.Errorf("frame samples = %d, %d; want 1000, 2000", got[0].At(0, 0), got[1].At(0, 0))
	}
}

func TestReplayRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.dbrf")
	if err := os.WriteFile(path, []byte("this is not a replay file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadReplayFile(path); err == nil {
		t.Error("ReadReplayFile accepted a file with bad magic")
	}
}

func TestReplaySessionLoops(t *testing.T) {
	frames := []*DepthFrame{
		flatFrame(8, 4, 100, 0.001),
		flatFrame(8, 4, 200, 0.001),
	}
	var buf bytes.Buffer
	if err := WriteReplayFile(&buf, frames); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "frames.dbrf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	d := &ReplayDriver{Path: path}
	sess, err := d.Connect([]StreamSpec{{Type: StreamDepth, Width: 8, Height: 4, Format: FormatZ16}})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer sess.Close()

	want := []uint16{100, 200, 100}
	for i, w := range want {
		set, err := sess.WaitForFrames(time.Second)
		if err != nil {
			t.Fatalf("WaitForFrames %d: %v", i, err)
		}
		if got := set.Depth.At(0, 0); got != w {
			t.Errorf("frame %d sample = %d, want %d", i, got, w)
		}
	}
}

func TestMockSessionExhaustion(t *testing.T) {
	sess := NewMockSession(0.001, MockResult{Set: &FrameSet{Depth: flatFrame(8, 4, 1, 0.001)}})
	if _, err := sess.WaitForFrames(time.Second); err != nil {
		t.Fatalf("first WaitForFrames: %v", err)
	}
	if _, err := sess.WaitForFrames(time.Second); !errors.Is(err, ErrFrameTimeout) {
		t.Errorf("exhausted session error = %v, want ErrFrameTimeout", err)
	}
}

func TestDepthFrameEmpty(t *testing.T) {
	var nilFrame *DepthFrame
	if !nilFrame.Empty() {
		t.Error("nil frame should be empty")
	}
	if !(&DepthFrame{Width: 4, Height: 4}).Empty() {
		t.Error("frame with no data should be empty")
	}
	if flatFrame(4, 4, 1, 0.001).Empty() {
		t.Error("populated frame should not be empty")
	}
}
