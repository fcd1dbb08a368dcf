package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/draw"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/geometry"
	"github.com/signet-dev/signet/internal/raster"
	"github.com/signet-dev/signet/pkg/routes"
)

type memSys struct {
	store   map[uuid.UUID]documents.Document
	updates int
}

func (m *memSys) List(_ context.Context, _ uuid.UUID) ([]documents.Document, error) {
	out := make([]documents.Document, 0, len(m.store))
	for _, doc := range m.store {
		out = append(out, doc)
	}
	return out, nil
}

func (m *memSys) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	doc, ok := m.store[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return &doc, nil
}

func (m *memSys) Create(_ context.Context, doc documents.Document) (*documents.Document, error) {
	m.store[doc.ID] = doc
	return &doc, nil
}

func (m *memSys) Update(_ context.Context, doc documents.Document) (*documents.Document, error) {
	m.store[doc.ID] = doc
	m.updates++
	return &doc, nil
}

func (m *memSys) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

type memBlobs struct {
	blobs map[string][]byte
}

func (m *memBlobs) Store(_ context.Context, key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

func (m *memBlobs) Retrieve(_ context.Context, key string) ([]byte, error) {
	return m.blobs[key], nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *memBlobs) Path(_ context.Context, key string) (string, error) {
	return "/tmp/" + key, nil
}

type stubRasterizer struct {
	pages []documents.Page
}

func (s *stubRasterizer) Rasterize(_ context.Context, _, _ string, _ int) ([]documents.Page, error) {
	return s.pages, nil
}

// stubCompositor re-encodes the incoming pages and records the call.
type stubCompositor struct {
	called bool
}

func (s *stubCompositor) Compose(_ context.Context, doc documents.Document) ([]documents.Page, error) {
	s.called = true
	return doc.Pages, nil
}

func newServer(sys *memSys, comp *stubCompositor) *http.ServeMux {
	h := api.NewHandler(sys, &memBlobs{blobs: map[string][]byte{}}, &stubRasterizer{}, comp,
		50*1024*1024, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	routes.Register(mux, "/api", h.Routes())
	return mux
}

func pageFixture(t *testing.T) documents.Page {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	uri, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return documents.Page{Number: 1, Image: uri, Width: 100, Height: 100}
}

func draftDocument(t *testing.T, filled bool) documents.Document {
	t.Helper()
	recipient := documents.Recipient{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Order: 1}
	field := documents.Field{
		ID:          uuid.New(),
		Type:        documents.FieldText,
		PageNumber:  1,
		Rect:        geometry.Rect{X: 10, Y: 10, W: 80, H: 40},
		RecipientID: recipient.ID,
		Required:    true,
	}
	if filled {
		field.Value = "Alice Smith"
	}
	return documents.Document{
		ID:         uuid.New(),
		Name:       "Offer Letter",
		Status:     documents.StatusDraft,
		Recipients: []documents.Recipient{recipient},
		Fields:     []documents.Field{field},
		Pages:      []documents.Page{pageFixture(t)},
	}
}

func TestUpdateSelfSign(t *testing.T) {
	doc := draftDocument(t, true)
	sys := &memSys{store: map[uuid.UUID]documents.Document{doc.ID: doc}}
	comp := &stubCompositor{}
	mux := newServer(sys, comp)

	body := doc
	body.Status = documents.StatusCompleted
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/documents/"+doc.ID.String(), bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !comp.called {
		t.Error("expected field values burned into pages before completion")
	}

	stored := sys.store[doc.ID]
	if stored.Status != documents.StatusCompleted {
		t.Errorf("expected status %s, got %s", documents.StatusCompleted, stored.Status)
	}
	if stored.CompletedAt == nil {
		t.Error("expected completed timestamp")
	}
}

func TestUpdateSelfSignIncomplete(t *testing.T) {
	doc := draftDocument(t, false)
	sys := &memSys{store: map[uuid.UUID]documents.Document{doc.ID: doc}}
	comp := &stubCompositor{}
	mux := newServer(sys, comp)

	body := doc
	body.Status = documents.StatusCompleted
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/documents/"+doc.ID.String(), bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if comp.called {
		t.Error("expected no compositing for an incomplete document")
	}
	if sys.updates != 0 {
		t.Errorf("expected no persistence, got %d updates", sys.updates)
	}
	if got := sys.store[doc.ID].Status; got != documents.StatusDraft {
		t.Errorf("expected status %s, got %s", documents.StatusDraft, got)
	}
}

func TestAddRecipient(t *testing.T) {
	doc := draftDocument(t, false)
	sys := &memSys{store: map[uuid.UUID]documents.Document{doc.ID: doc}}
	mux := newServer(sys, &stubCompositor{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID.String()+"/recipients",
		strings.NewReader(`{"name":"Bob","email":"bob@example.com"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(sys.store[doc.ID].Recipients); got != 2 {
		t.Errorf("expected 2 recipients, got %d", got)
	}
}

func TestDownload(t *testing.T) {
	doc := draftDocument(t, false)
	sys := &memSys{store: map[uuid.UUID]documents.Document{doc.ID: doc}}
	mux := newServer(sys, &stubCompositor{})

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID.String()+"/download", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF payload")
	}
}
