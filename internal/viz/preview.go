// Package viz renders a live side-by-side preview of the raw and filtered
// depth streams, served as a PNG over the debug HTTP listener.
package viz

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"

	"github.com/fogleman/gg"

	"github.com/banshee-data/depthbridge/internal/camera"
	"github.com/banshee-data/depthbridge/internal/monitoring"
)

// Preview keeps the most recent rendered frame pair. Render is called from
// the acquisition loop; Handler serves whatever was rendered last.
type Preview struct {
	// MaxRangeM bounds the color ramp. Zero means 8 meters.
	MaxRangeM float64

	mu  sync.Mutex
	png []byte
}

func (p *Preview) maxRange() float64 {
	if p.MaxRangeM <= 0 {
		return 8.0
	}
	return p.MaxRangeM
}

// Render draws the raw and filtered frames side by side with the measured
// frame rate in the corner. Rendering failures are logged, never fatal; the
// preview is a debug aid and must not disturb acquisition.
func (p *Preview) Render(input, filtered *camera.DepthFrame, fps float64) {
	if input.Empty() {
		return
	}
	if filtered.Empty() {
		filtered = input
	}

	w, h := input.Width, input.Height
	dc := gg.NewContext(w*2, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.DrawImage(p.colorize(input), 0, 0)

	// the filtered frame may be decimated; scale it back up to match
	right := p.colorize(filtered)
	dc.Push()
	dc.Translate(float64(w), 0)
	if filtered.Width != w || filtered.Height != h {
		dc.Scale(float64(w)/float64(filtered.Width), float64(h)/float64(filtered.Height))
	}
	dc.DrawImage(right, 0, 0)
	dc.Pop()

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("FPS %.1f", fps), 4, 4, 0, 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		monitoring.Logf("viz: failed to encode preview: %v", err)
		return
	}

	p.mu.Lock()
	p.png = buf.Bytes()
	p.mu.Unlock()
}

// colorize maps raw depth to a blue-to-red ramp. Zero (invalid) stays black.
func (p *Preview) colorize(f *camera.DepthFrame) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	maxRaw := p.maxRange() / f.Scale
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			raw := f.At(x, y)
			if raw == 0 {
				continue
			}
			t := float64(raw) / maxRaw
			if t > 1 {
				t = 1
			}
			// near is red, far is blue
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * (1 - t)),
				G: uint8(80 * (1 - t)),
				B: uint8(255 * t),
				A: 255,
			})
		}
	}
	return img
}

// Handler serves the latest preview PNG. Responds 503 until the first
// frame has been rendered.
func (p *Preview) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		data := p.png
		p.mu.Unlock()
		if len(data) == 0 {
			http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	})
}
