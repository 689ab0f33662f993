package viz

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/depthbridge/internal/camera"
)

func gradientFrame(width, height int) *camera.DepthFrame {
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = uint16((i * 8000) / len(data))
	}
	return &camera.DepthFrame{Width: width, Height: height, Data: data, Scale: 0.001}
}

func TestHandlerBeforeFirstRender(t *testing.T) {
	p := &Preview{}
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before the first render", rec.Code)
	}
}

func TestRenderProducesSideBySidePNG(t *testing.T) {
	p := &Preview{}
	frame := gradientFrame(64, 32)
	p.Render(frame, frame, 14.7)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decoding served PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 128 || bounds.Dy() != 32 {
		t.Errorf("preview is %dx%d, want 128x32 (raw and filtered side by side)", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderScalesDecimatedFrame(t *testing.T) {
	p := &Preview{}
	input := gradientFrame(64, 32)
	filtered := gradientFrame(32, 16)
	p.Render(input, filtered, 15)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decoding served PNG: %v", err)
	}
	// the canvas is sized by the input frame, not the decimated one
	if img.Bounds().Dx() != 128 {
		t.Errorf("preview width = %d, want 128", img.Bounds().Dx())
	}
}

func TestRenderSkipsEmptyInput(t *testing.T) {
	p := &Preview{}
	p.Render(&camera.DepthFrame{}, nil, 0)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when only empty frames were offered", rec.Code)
	}
}
