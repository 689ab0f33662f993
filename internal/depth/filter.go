package depth

import (
	"errors"
	"fmt"

	"github.com/banshee-data/depthbridge/internal/camera"
)

// Filter is one post-processing step over a depth frame. Process must not
// mutate its input; it returns a new (or the same, unmodified) frame.
type Filter interface {
	Process(*camera.DepthFrame) *camera.DepthFrame
}

// FilterSpec pairs a filter with its enable flag and a human-readable name
// for startup announcements. Configuration, not runtime state.
type FilterSpec struct {
	Enabled bool
	Name    string
	Step    Filter
}

// Chain is an ordered sequence of filter specs. Order is significant and
// fixed by configuration: steps that operate in the disparity domain must
// be bracketed by a to-disparity / from-disparity pair, which Validate
// checks once at startup.
type Chain []FilterSpec

// ErrChainMisconfigured is returned by Validate for broken disparity pairing.
var ErrChainMisconfigured = errors.New("depth: filter chain misconfigured")

// Apply runs each enabled step in order over the output of the previous
// one. Disabled steps are skipped entirely.
func (c Chain) Apply(frame *camera.DepthFrame) *camera.DepthFrame {
	for _, spec := range c {
		if spec.Enabled {
			frame = spec.Step.Process(frame)
		}
	}
	return frame
}

// Validate checks the disparity-domain pairing invariant over the enabled
// steps: every transform into the disparity domain must be closed by a
// matching transform back, with no nesting, and the chain must hand depth
// frames to the extractor. Misconfiguration is fatal at startup rather than
// silently degrading the output.
func (c Chain) Validate() error {
	open := false
	for _, spec := range c {
		if !spec.Enabled {
			continue
		}
		dt, ok := spec.Step.(*DisparityTransform)
		if !ok {
			continue
		}
		if dt.ToDisparity {
			if open {
				return fmt.Errorf("%w: %q opens the disparity domain twice", ErrChainMisconfigured, spec.Name)
			}
			open = true
		} else {
			if !open {
				return fmt.Errorf("%w: %q closes a disparity domain that was never opened", ErrChainMisconfigured, spec.Name)
			}
			open = false
		}
	}
	if open {
		return fmt.Errorf("%w: chain leaves frames in the disparity domain", ErrChainMisconfigured)
	}
	return nil
}
