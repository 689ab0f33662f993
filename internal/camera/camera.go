// Package camera abstracts the depth camera behind a session interface so
// the pipeline can run against real hardware, a recorded replay file, or
// synthetic frames without changing the acquisition code.
package camera

import (
	"errors"
	"time"
)

// StreamType identifies a stream requested from the device.
type StreamType int

const (
	StreamDepth StreamType = iota
	StreamColor
)

// PixelFormat identifies how samples are encoded within a frame.
type PixelFormat int

const (
	FormatZ16 PixelFormat = iota
	FormatBGR8
)

// StreamSpec fixes resolution, pixel format, and frame rate for one stream.
type StreamSpec struct {
	Type   StreamType
	Width  int
	Height int
	Format PixelFormat
	FPS    int
}

var (
	// ErrConnect is returned when the device cannot be opened.
	ErrConnect = errors.New("camera: connect failed")

	// ErrFrameTimeout is returned when no coherent frame set arrives
	// within the driver timeout.
	ErrFrameTimeout = errors.New("camera: timed out waiting for frames")
)

// DepthFrame is one captured depth image: row-major uint16 samples plus the
// device depth scale converting one raw unit to meters. Frames are treated
// as immutable after capture; filters return new frames.
type DepthFrame struct {
	Width  int
	Height int
	Data   []uint16
	Scale  float64
}

// At returns the raw sample at column x, row y.
func (f *DepthFrame) At(x, y int) uint16 {
	return f.Data[y*f.Width+x]
}

// Empty reports whether the frame carries no usable samples.
func (f *DepthFrame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Data) < f.Width*f.Height
}

// FrameSet is one coherent set of frames from the device.
type FrameSet struct {
	Depth *DepthFrame
}

// Session is an open stream from a connected device.
type Session interface {
	// WaitForFrames blocks until the next coherent frame set is available
	// or the timeout elapses, in which case it returns ErrFrameTimeout.
	WaitForFrames(timeout time.Duration) (*FrameSet, error)

	// DepthScale returns the device's raw-unit-to-meters factor.
	DepthScale() float64

	// Close releases the stream.
	Close() error
}

// Driver opens sessions against a camera backend.
type Driver interface {
	Connect(specs []StreamSpec) (Session, error)
}
