package signature_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/signet-dev/signet/internal/signature"
)

func decodeValue(t *testing.T, v signature.Value) []byte {
	t.Helper()
	const prefix = "data:image/png;base64,"
	s := string(v)
	if !strings.HasPrefix(s, prefix) {
		t.Fatalf("value prefix = %q, want %q", s[:min(len(s), len(prefix))], prefix)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, prefix))
	if err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return data
}

func TestPad_SaveDimensions(t *testing.T) {
	pad := signature.NewPad()
	pad.Start(signature.PointerEvent{Kind: signature.Pointer, X: 50, Y: 50})
	pad.Draw(signature.PointerEvent{Kind: signature.Pointer, X: 200, Y: 120})
	pad.Stop()

	value, err := pad.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(decodeValue(t, value)))
	if err != nil {
		t.Fatalf("decode saved canvas: %v", err)
	}
	if cfg.Width != signature.CanvasWidth || cfg.Height != signature.CanvasHeight {
		t.Errorf("canvas = %dx%d, want %dx%d", cfg.Width, cfg.Height,
			signature.CanvasWidth, signature.CanvasHeight)
	}
}

func TestPad_DrawRequiresStart(t *testing.T) {
	pad := signature.NewPad()
	pad.Draw(signature.PointerEvent{Kind: signature.Pointer, X: 100, Y: 100})

	if !pad.Blank() {
		t.Error("Draw() before Start() marked the canvas, want ignored")
	}
}

func TestPad_StrokeMarksCanvas(t *testing.T) {
	pad := signature.NewPad()
	if !pad.Blank() {
		t.Fatal("new pad is not blank")
	}

	pad.Start(signature.PointerEvent{Kind: signature.Touch, X: 100, Y: 100})
	pad.Draw(signature.PointerEvent{Kind: signature.Touch, X: 300, Y: 150})
	pad.Stop()

	if pad.Blank() {
		t.Error("canvas blank after a stroke")
	}
}

func TestPad_StopEndsStroke(t *testing.T) {
	pad := signature.NewPad()
	pad.Start(signature.PointerEvent{X: 100, Y: 100})
	pad.Stop()
	pad.Clear()

	pad.Draw(signature.PointerEvent{X: 300, Y: 150})
	if !pad.Blank() {
		t.Error("Draw() after Stop() marked the canvas, want ignored")
	}
}

func TestPad_Clear(t *testing.T) {
	pad := signature.NewPad()
	pad.Start(signature.PointerEvent{X: 100, Y: 100})
	pad.Draw(signature.PointerEvent{X: 150, Y: 120})

	pad.Clear()
	if !pad.Blank() {
		t.Error("canvas not blank after Clear()")
	}

	// The capture session stays open across Clear.
	pad.Draw(signature.PointerEvent{X: 200, Y: 130})
	if pad.Blank() {
		t.Error("stroke did not continue after Clear()")
	}
}
