package camera

import (
	"math"
	"sync"
	"time"
)

// SyntheticDriver generates depth frames of a slowly oscillating wall, for
// running the bridge with no hardware and no recording on hand.
type SyntheticDriver struct {
	Scale float64 // raw-unit-to-meters factor; defaults to 0.001
}

// Connect returns a session producing synthetic frames at the requested
// depth stream geometry and rate.
func (d *SyntheticDriver) Connect(specs []StreamSpec) (Session, error) {
	scale := d.Scale
	if scale == 0 {
		scale = 0.001
	}
	sess := &syntheticSession{scale: scale, width: 640, height: 480}
	for _, spec := range specs {
		if spec.Type != StreamDepth {
			continue
		}
		if spec.Width > 0 {
			sess.width = spec.Width
		}
		if spec.Height > 0 {
			sess.height = spec.Height
		}
		if spec.FPS > 0 {
			sess.interval = time.Second / time.Duration(spec.FPS)
		}
	}
	return sess, nil
}

type syntheticSession struct {
	mu       sync.Mutex
	scale    float64
	width    int
	height   int
	interval time.Duration
	cycle    int
	closed   bool
}

func (s *syntheticSession) WaitForFrames(timeout time.Duration) (*FrameSet, error) {
	if s.interval > 0 {
		time.Sleep(s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrFrameTimeout
	}
	s.cycle++

	// a flat wall at ~3m that drifts half a meter either way, with a slight
	// left-to-right slant so sectors differ
	base := 3.0 + 0.5*math.Sin(float64(s.cycle)/30)
	data := make([]uint16, s.width*s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			m := base + 0.5*float64(x)/float64(s.width)
			data[y*s.width+x] = uint16(m / s.scale)
		}
	}
	return &FrameSet{Depth: &DepthFrame{
		Width:  s.width,
		Height: s.height,
		Data:   data,
		Scale:  s.scale,
	}}, nil
}

func (s *syntheticSession) DepthScale() float64 {
	return s.scale
}

func (s *syntheticSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
