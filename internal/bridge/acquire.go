package bridge

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/banshee-data/depthbridge/internal/camera"
	"github.com/banshee-data/depthbridge/internal/depth"
	"github.com/banshee-data/depthbridge/internal/monitoring"
	"github.com/banshee-data/depthbridge/internal/timeutil"
)

// State of the acquisition loop.
type State int32

const (
	StateConnecting State = iota
	StateStreaming
	StateDegraded
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDegraded:
		return "degraded"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Previewer renders a best-effort debug view of one acquisition cycle. It
// must never block the pipeline beyond the render itself.
type Previewer interface {
	Render(input, filtered *camera.DepthFrame, fps float64)
}

// Acquisition owns the camera-to-buffer pipeline: connect with retry, wait
// for frames, filter, extract, publish. It rendezvouses with the publisher
// only through the shared buffer and holds no lock across the blocking
// frame wait.
type Acquisition struct {
	Driver         camera.Driver
	Specs          []camera.StreamSpec
	Chain          depth.Chain
	Extractor      depth.Extractor
	Buffer         *DistanceBuffer
	Clock          timeutil.Clock
	FrameTimeout   time.Duration
	ConnectBackoff time.Duration

	// Preview and Record are optional per-cycle hooks.
	Preview Previewer
	Record  func(tsUsec uint64, dist depth.DistanceArray)

	state atomic.Int32
}

// State reports the loop's current state.
func (a *Acquisition) State() State {
	return State(a.state.Load())
}

func (a *Acquisition) setState(s State) {
	a.state.Store(int32(s))
}

// Run drives the state machine until ctx is cancelled. A frame timeout
// re-enters connecting; any other streaming error is unrecoverable and is
// returned. The session is released on every exit path.
func (a *Acquisition) Run(ctx context.Context) error {
	defer a.setState(StateStopped)
	for {
		a.setState(StateConnecting)
		session, err := a.connect(ctx)
		if err != nil {
			return err
		}

		err = a.stream(ctx, session)
		if closeErr := session.Close(); closeErr != nil {
			monitoring.Logf("camera session close: %v", closeErr)
		}

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, camera.ErrFrameTimeout):
			monitoring.Logf("no frames within %s, reconnecting", a.FrameTimeout)
		default:
			return err
		}
	}
}

// connect retries until the camera is available or ctx is cancelled. There
// is deliberately no retry bound: the process runs unattended awaiting
// hardware.
func (a *Acquisition) connect(ctx context.Context) (camera.Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session, err := a.Driver.Connect(a.Specs)
		if err == nil {
			monitoring.Logf("camera connected, depth scale %g", session.DepthScale())
			return session, nil
		}
		monitoring.Logf("camera connect failed, retrying in %s: %v", a.ConnectBackoff, err)
		a.Clock.Sleep(a.ConnectBackoff)
	}
}

func (a *Acquisition) stream(ctx context.Context, session camera.Session) error {
	a.setState(StateStreaming)
	var out depth.DistanceArray
	lastCycle := a.Clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		set, err := session.WaitForFrames(a.FrameTimeout)
		if err != nil {
			return err
		}
		if set == nil || set.Depth.Empty() {
			// recoverable: skip the cycle without publishing a stale sweep
			a.setState(StateDegraded)
			monitoring.Logf("dropping empty depth frame")
			continue
		}
		a.setState(StateStreaming)

		tsUsec := uint64(a.Clock.Now().UnixMicro())
		filtered := a.Chain.Apply(set.Depth)
		if err := a.Extractor.Extract(filtered, &out); err != nil {
			a.setState(StateDegraded)
			monitoring.Logf("skipping frame: %v", err)
			continue
		}
		a.Buffer.Publish(out, tsUsec)

		if a.Record != nil {
			a.Record(tsUsec, out)
		}
		if a.Preview != nil {
			var fps float64
			if elapsed := a.Clock.Since(lastCycle); elapsed > 0 {
				fps = float64(time.Second) / float64(elapsed)
			}
			a.Preview.Render(set.Depth, filtered, fps)
		}
		lastCycle = a.Clock.Now()
	}
}
