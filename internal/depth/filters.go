package depth

import (
	"sort"

	"github.com/banshee-data/depthbridge/internal/camera"
)

// The filter implementations below mirror the post-processing blocks the
// camera vendor ships: decimation, range threshold, disparity transforms,
// spatial and temporal smoothing, and hole filling. A raw sample of zero
// means "no reading" throughout and is never smoothed into a distance.

// DecimationFilter reduces frame complexity by downsampling with a
// magnitude-sized kernel: the median for 2x2 and 3x3 kernels, the mean for
// larger ones.
type DecimationFilter struct {
	Magnitude int
}

// NewDecimationFilter returns a decimation filter; magnitudes outside
// [2, 8] are clamped.
func NewDecimationFilter(magnitude int) *DecimationFilter {
	if magnitude < 2 {
		magnitude = 2
	}
	if magnitude > 8 {
		magnitude = 8
	}
	return &DecimationFilter{Magnitude: magnitude}
}

func (f *DecimationFilter) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	k := f.Magnitude
	outW := frame.Width / k
	outH := frame.Height / k
	if outW == 0 || outH == 0 {
		return frame
	}

	out := &camera.DepthFrame{
		Width:  outW,
		Height: outH,
		Data:   make([]uint16, outW*outH),
		Scale:  frame.Scale,
	}
	patch := make([]uint16, 0, k*k)
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			patch = patch[:0]
			for dy := 0; dy < k; dy++ {
				for dx := 0; dx < k; dx++ {
					patch = append(patch, frame.At(ox*k+dx, oy*k+dy))
				}
			}
			if k <= 3 {
				sort.Slice(patch, func(i, j int) bool { return patch[i] < patch[j] })
				out.Data[oy*outW+ox] = patch[len(patch)/2]
			} else {
				var sum uint64
				for _, v := range patch {
					sum += uint64(v)
				}
				out.Data[oy*outW+ox] = uint16(sum / uint64(len(patch)))
			}
		}
	}
	return out
}

// ThresholdFilter invalidates samples outside [MinM, MaxM] meters by
// writing zero, the device's "no reading" value.
type ThresholdFilter struct {
	MinM float64
	MaxM float64
}

func NewThresholdFilter(minM, maxM float64) *ThresholdFilter {
	return &ThresholdFilter{MinM: minM, MaxM: maxM}
}

func (f *ThresholdFilter) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	out := cloneFrame(frame)
	for i, raw := range frame.Data {
		m := float64(raw) * frame.Scale
		if m < f.MinM || m > f.MaxM {
			out.Data[i] = 0
		}
	}
	return out
}

// disparityK maps raw depth to disparity and back; chosen so that typical
// indoor raws (hundreds to thousands of units) stay within uint16.
const disparityK = 1 << 22

// DisparityTransform converts frames between the depth and disparity
// domains. The two directions must bracket disparity-domain steps in the
// chain; Chain.Validate enforces the pairing.
type DisparityTransform struct {
	ToDisparity bool
}

func NewDepthToDisparity() *DisparityTransform {
	return &DisparityTransform{ToDisparity: true}
}

func NewDisparityToDepth() *DisparityTransform {
	return &DisparityTransform{ToDisparity: false}
}

func (f *DisparityTransform) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	out := cloneFrame(frame)
	for i, raw := range frame.Data {
		if raw == 0 {
			continue
		}
		v := uint32(disparityK / uint32(raw))
		if v > 0xFFFF {
			v = 0xFFFF
		}
		out.Data[i] = uint16(v)
	}
	return out
}

// SpatialFilter smooths each row with a forward and a backward
// exponential pass, only blending neighbors closer than Delta raw units so
// object edges survive.
type SpatialFilter struct {
	Alpha float64
	Delta float64
}

func NewSpatialFilter(alpha, delta float64) *SpatialFilter {
	return &SpatialFilter{Alpha: alpha, Delta: delta}
}

func (f *SpatialFilter) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	out := cloneFrame(frame)
	for y := 0; y < frame.Height; y++ {
		row := out.Data[y*frame.Width : (y+1)*frame.Width]
		f.pass(row, 1)
		f.pass(row, -1)
	}
	return out
}

func (f *SpatialFilter) pass(row []uint16, dir int) {
	start, end := 0, len(row)
	if dir < 0 {
		start, end = len(row)-1, -1
	}
	prev := -1.0
	for i := start; i != end; i += dir {
		cur := float64(row[i])
		if cur == 0 {
			prev = -1
			continue
		}
		if prev >= 0 {
			diff := cur - prev
			if diff < 0 {
				diff = -diff
			}
			if diff < f.Delta {
				cur = f.Alpha*cur + (1-f.Alpha)*prev
				row[i] = uint16(cur)
			}
		}
		prev = cur
	}
}

// TemporalFilter blends each pixel with its value in the previous frame and
// persists the previous reading over a transient hole. It carries history
// between calls but is side-effect-free from the chain's point of view: it
// never touches the input frame.
type TemporalFilter struct {
	Alpha float64
	prev  []uint16
	width int
}

func NewTemporalFilter(alpha float64) *TemporalFilter {
	return &TemporalFilter{Alpha: alpha}
}

func (f *TemporalFilter) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	out := cloneFrame(frame)
	// history resets when the geometry changes (e.g. decimation retuned)
	if f.width != frame.Width || len(f.prev) != len(frame.Data) {
		f.prev = make([]uint16, len(frame.Data))
		copy(f.prev, frame.Data)
		f.width = frame.Width
		return out
	}
	for i, cur := range frame.Data {
		prev := f.prev[i]
		switch {
		case cur == 0 && prev != 0:
			out.Data[i] = prev
		case cur != 0 && prev != 0:
			out.Data[i] = uint16(f.Alpha*float64(cur) + (1-f.Alpha)*float64(prev))
		}
		f.prev[i] = out.Data[i]
	}
	return out
}

// HoleFillingFilter rectifies missing samples from the nearest valid
// neighbor to the left on the same row.
type HoleFillingFilter struct{}

func NewHoleFillingFilter() *HoleFillingFilter {
	return &HoleFillingFilter{}
}

func (f *HoleFillingFilter) Process(frame *camera.DepthFrame) *camera.DepthFrame {
	out := cloneFrame(frame)
	for y := 0; y < frame.Height; y++ {
		var left uint16
		for x := 0; x < frame.Width; x++ {
			i := y*frame.Width + x
			if out.Data[i] == 0 {
				out.Data[i] = left
			} else {
				left = out.Data[i]
			}
		}
	}
	return out
}

func cloneFrame(frame *camera.DepthFrame) *camera.DepthFrame {
	out := &camera.DepthFrame{
		Width:  frame.Width,
		Height: frame.Height,
		Data:   make([]uint16, len(frame.Data)),
		Scale:  frame.Scale,
	}
	copy(out.Data, frame.Data)
	return out
}
