package signing_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/signing"
	"github.com/signet-dev/signet/pkg/routes"
)

const testToken = "11111111-2222-3333-4444-555555555555"

// stubSystem resolves a single known token and fails everything else.
type stubSystem struct{}

func (s *stubSystem) Send(_ context.Context, _ uuid.UUID, _ string) ([]signing.Request, error) {
	return nil, documents.ErrNotFound
}

func (s *stubSystem) Resolve(_ context.Context, token string) (*signing.View, error) {
	if token != testToken {
		return nil, signing.ErrTokenInvalid
	}
	return &signing.View{}, nil
}

func (s *stubSystem) Submit(_ context.Context, _ string, _ []documents.Field) (bool, error) {
	return false, signing.ErrTokenInvalid
}

func (s *stubSystem) SendTemplate(_ context.Context, _ uuid.UUID, _ []signing.TemplateParty, _ string) ([]signing.TemplateDispatch, error) {
	return nil, documents.ErrNotFound
}

func (s *stubSystem) Progress(_ context.Context, _ uuid.UUID) (*signing.Progress, error) {
	return nil, documents.ErrNotFound
}

func captureServer(maxSignatureSize int64) *http.ServeMux {
	h := signing.NewHandler(&stubSystem{}, maxSignatureSize, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	routes.Register(mux, "/api", h.Routes())
	return mux
}

func postCapture(t *testing.T, mux *http.ServeMux, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/signing/"+token+"/signature", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func captureValue(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Value
}

func TestCaptureTyped(t *testing.T) {
	mux := captureServer(0)

	rec := postCapture(t, mux, testToken, `{"kind":"typed","text":"Alice Smith","family":"classic","size":36}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if value := captureValue(t, rec); !strings.HasPrefix(value, "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got %.40s", value)
	}
}

func TestCaptureTypedValidation(t *testing.T) {
	mux := captureServer(0)

	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"kind":"typed","text":"   "}`},
		{"unknown family", `{"kind":"typed","text":"Alice","family":"gothic"}`},
		{"size out of range", `{"kind":"typed","text":"Alice","size":500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postCapture(t, mux, testToken, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestCaptureDraw(t *testing.T) {
	mux := captureServer(0)

	rec := postCapture(t, mux, testToken,
		`{"kind":"draw","strokes":[[{"x":20,"y":40},{"x":60,"y":80},{"x":120,"y":60}]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if value := captureValue(t, rec); !strings.HasPrefix(value, "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got %.40s", value)
	}
}

func TestCaptureDrawEmpty(t *testing.T) {
	mux := captureServer(0)

	if rec := postCapture(t, mux, testToken, `{"kind":"draw","strokes":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCaptureUploadTooLarge(t *testing.T) {
	mux := captureServer(10 * 1024 * 1024)

	payload := bytes.Repeat([]byte{0xa5}, 15*1024*1024)
	body, err := json.Marshal(map[string]string{
		"kind": "upload",
		"data": base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	rec := postCapture(t, mux, testToken, string(body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestCaptureUploadNotAnImage(t *testing.T) {
	mux := captureServer(0)

	body, err := json.Marshal(map[string]string{
		"kind": "upload",
		"data": base64.StdEncoding.EncodeToString([]byte("definitely not an image")),
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	if rec := postCapture(t, mux, testToken, string(body)); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCaptureInvalidToken(t *testing.T) {
	mux := captureServer(0)

	rec := postCapture(t, mux, "bogus-token", `{"kind":"typed","text":"Alice"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCaptureUnknownKind(t *testing.T) {
	mux := captureServer(0)

	if rec := postCapture(t, mux, testToken, `{"kind":"stamp"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
