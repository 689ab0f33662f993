package camera

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// replayMagic identifies a depthbridge replay file.
var replayMagic = [4]byte{'D', 'B', 'R', 'F'}

// replayHeader is the fixed-size prefix of a replay file, little-endian:
// magic, frame width, frame height, frame count, then the depth scale as a
// float64, followed by count frames of width*height uint16 samples.
type replayHeader struct {
	Magic  [4]byte
	Width  uint16
	Height uint16
	Count  uint32
	Scale  float64
}

// ReplayDriver replays depth frames recorded to a file, looping when it
// reaches the end. It stands in for the hardware driver during development,
// the same way a fixtures file stands in for a live serial port.
type ReplayDriver struct {
	Path string
}

// Connect loads the replay file and returns a session over its frames. The
// requested stream specs only determine pacing (depth stream FPS); the
// recorded resolution wins.
func (d *ReplayDriver) Connect(specs []StreamSpec) (Session, error) {
	frames, scale, err := ReadReplayFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	interval := time.Duration(0)
	for _, spec := range specs {
		if spec.Type == StreamDepth && spec.FPS > 0 {
			interval = time.Second / time.Duration(spec.FPS)
		}
	}
	return &replaySession{frames: frames, scale: scale, interval: interval}, nil
}

type replaySession struct {
	mu       sync.Mutex
	frames   []*DepthFrame
	scale    float64
	interval time.Duration
	next     int
	closed   bool
}

func (s *replaySession) WaitForFrames(timeout time.Duration) (*FrameSet, error) {
	// pace playback at the requested frame rate
	if s.interval > 0 {
		time.Sleep(s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrFrameTimeout
	}
	frame := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)
	return &FrameSet{Depth: frame}, nil
}

func (s *replaySession) DepthScale() float64 {
	return s.scale
}

func (s *replaySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ReadReplayFile parses a replay file into frames and the recorded depth scale.
func ReadReplayFile(path string) ([]*DepthFrame, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var hdr replayHeader
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, fmt.Errorf("failed to read replay header: %w", err)
	}
	if hdr.Magic != replayMagic {
		return nil, 0, fmt.Errorf("not a replay file: bad magic %q", hdr.Magic)
	}
	if hdr.Width == 0 || hdr.Height == 0 || hdr.Count == 0 {
		return nil, 0, fmt.Errorf("replay file has degenerate geometry %dx%dx%d", hdr.Width, hdr.Height, hdr.Count)
	}

	frames := make([]*DepthFrame, 0, hdr.Count)
	for i := uint32(0); i < hdr.Count; i++ {
		data := make([]uint16, int(hdr.Width)*int(hdr.Height))
		if err := binary.Read(f, binary.LittleEndian, data); err != nil {
			return nil, 0, fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		frames = append(frames, &DepthFrame{
			Width:  int(hdr.Width),
			Height: int(hdr.Height),
			Data:   data,
			Scale:  hdr.Scale,
		})
	}
	return frames, hdr.Scale, nil
}

// WriteReplayFile records frames to w in the replay format. All frames must
// share the geometry and scale of the first.
func WriteReplayFile(w io.Writer, frames []*DepthFrame) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to write")
	}
	first := frames[0]
	hdr := replayHeader{
		Magic:  replayMagic,
		Width:  uint16(first.Width),
		Height: uint16(first.Height),
		Count:  uint32(len(frames)),
		Scale:  first.Scale,
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	for i, frame := range frames {
		if frame.Width != first.Width || frame.Height != first.Height {
			return fmt.Errorf("frame %d geometry %dx%d differs from first frame %dx%d",
				i, frame.Width, frame.Height, first.Width, first.Height)
		}
		if err := binary.Write(w, binary.LittleEndian, frame.Data); err != nil {
			return err
		}
	}
	return nil
}
