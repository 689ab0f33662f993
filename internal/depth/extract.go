package depth

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/depthbridge/internal/camera"
	"github.com/banshee-data/depthbridge/internal/units"
)

// ErrInvalidFrame is returned for frames too degenerate to sample.
var ErrInvalidFrame = errors.New("depth: invalid frame")

// Extractor reduces a depth frame to sector distances in centimeters.
//
// Each sector is a single point sample from the frame's center row rather
// than an area average. That is a deliberate speed/precision trade-off, and
// the exact row/column selection (row height/2, column floor(i*step)) is
// part of the output contract: consumers rely on that sector mapping.
type Extractor struct {
	MinRangeM float64
	MaxRangeM float64
}

// MinCm returns the lower range bound in centimeters.
func (e Extractor) MinCm() uint16 {
	return uint16(math.Round(e.MinRangeM * 100))
}

// MaxCm returns the upper range bound in centimeters.
func (e Extractor) MaxCm() uint16 {
	return uint16(math.Round(e.MaxRangeM * 100))
}

// SentinelCm returns the reserved value meaning "no valid reading in this
// sector": one past the maximum range, never zero.
func (e Extractor) SentinelCm() uint16 {
	return e.MaxCm() + 1
}

// Extract fills out from frame in a single pass with no accumulation across
// frames; the same frame and parameters always produce the same array.
// Samples outside [MinRangeM, MaxRangeM] write the sentinel.
func (e Extractor) Extract(frame *camera.DepthFrame, out *DistanceArray) error {
	if frame.Empty() {
		return fmt.Errorf("%w: empty frame", ErrInvalidFrame)
	}
	if frame.Width < NumSectors {
		return fmt.Errorf("%w: width %d is smaller than %d sectors", ErrInvalidFrame, frame.Width, NumSectors)
	}

	step := float64(frame.Width) / NumSectors
	row := frame.Height / 2
	for i := 0; i < NumSectors; i++ {
		raw := frame.At(int(float64(i)*step), row)
		distM := units.RawToMeters(raw, frame.Scale)
		if distM < e.MinRangeM || distM > e.MaxRangeM {
			out[i] = e.SentinelCm()
		} else {
			out[i] = units.MetersToCm(distM)
		}
	}
	return nil
}
