// Package api serves the document management endpoints: listing, upload,
// recipient and field editing, and final PDF download. It composes the
// documents system with the rendering collaborators so the domain package
// stays free of transport and rendering concerns.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/export"
	"github.com/signet-dev/signet/internal/storage"
	"github.com/signet-dev/signet/pkg/handlers"
	"github.com/signet-dev/signet/pkg/routes"
)

// Rasterizer renders a stored source file into page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, contentType string, pageCount int) ([]documents.Page, error)
}

// Compositor burns captured field values into page rasters.
type Compositor interface {
	Compose(ctx context.Context, doc documents.Document) ([]documents.Page, error)
}

// Handler provides HTTP endpoints for document management: upload,
// recipient and field editing, templates, and final PDF download.
type Handler struct {
	sys           documents.System
	storage       storage.System
	rasterizer    Rasterizer
	compositor    Compositor
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a document handler with the specified configuration.
func NewHandler(
	sys documents.System,
	store storage.System,
	rasterizer Rasterizer,
	compositor Compositor,
	maxUploadSize int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sys:           sys,
		storage:       store,
		rasterizer:    rasterizer,
		compositor:    compositor,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("handler", "documents"),
	}
}

// Routes returns the document endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/recipients", Handler: h.AddRecipient},
			{Method: "DELETE", Pattern: "/{id}/recipients/{recipientId}", Handler: h.RemoveRecipient},
			{Method: "POST", Pattern: "/{id}/fields", Handler: h.AddField},
			{Method: "PATCH", Pattern: "/{id}/fields/{fieldId}", Handler: h.UpdateField},
			{Method: "DELETE", Pattern: "/{id}/fields/{fieldId}", Handler: h.RemoveField},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var ownerID uuid.UUID
	if owner := r.URL.Query().Get("owner"); owner != "" {
		parsed, err := uuid.Parse(owner)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		ownerID = parsed
	}

	docs, err := h.sys.List(r.Context(), ownerID)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, docs)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Upload accepts a multipart source file, stores it, rasterizes each page,
// and creates a draft document carrying the page images.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, documents.ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, documents.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	pageCount, err := extractPDFPageCount(data)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: %v", documents.ErrInvalidFile, err))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	session := documents.NewSession(name, h.logger)
	if owner := r.FormValue("owner"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		session.SetOwner(ownerID)
	}

	snapshot := session.Snapshot()
	key := fmt.Sprintf("documents/%s/source.pdf", snapshot.ID)
	if err := h.storage.Store(r.Context(), key, data); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	path, err := h.storage.Path(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	pages, err := h.rasterizer.Rasterize(r.Context(), path, contentType, pageCount)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, err)
		return
	}

	if err := session.SetPages(pages); err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	doc, err := h.sys.Create(r.Context(), session.Snapshot())
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var doc documents.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	doc.ID = id

	existing, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	if doc.Status == documents.StatusCompleted && existing.Status != documents.StatusCompleted {
		completed, err := h.selfSign(r.Context(), doc, existing.Status)
		if err != nil {
			handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
			return
		}
		doc = *completed
	}

	updated, err := h.sys.Update(r.Context(), doc)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, updated)
}

// selfSign validates and burns in a document the owner completes directly,
// without routing it through signature requests. The status transition
// enforces that every required field carries a value.
func (h *Handler) selfSign(ctx context.Context, doc documents.Document, current documents.Status) (*documents.Document, error) {
	if !documents.IsComplete(doc.Fields) {
		return nil, fmt.Errorf("%w: required fields are not filled", documents.ErrValidation)
	}

	doc.Status = current
	session := documents.LoadSession(doc, h.logger)

	composited, err := h.compositor.Compose(ctx, session.Snapshot())
	if err != nil {
		return nil, err
	}
	if err := session.SetPages(composited); err != nil {
		return nil, err
	}
	if err := session.Transition(documents.StatusCompleted); err != nil {
		return nil, err
	}

	snapshot := session.Snapshot()
	return &snapshot, nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	if err := h.storage.Delete(r.Context(), fmt.Sprintf("documents/%s/source.pdf", id)); err != nil {
		h.logger.Warn("failed to remove stored source", "document_id", id, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

type addRecipientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) AddRecipient(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(session *documents.Session, r *http.Request) (any, error) {
		var req addRecipientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}
		return session.AddRecipient(req.Name, req.Email)
	})
}

func (h *Handler) RemoveRecipient(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(session *documents.Session, r *http.Request) (any, error) {
		recipientID, err := uuid.Parse(r.PathValue("recipientId"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}
		return nil, session.RemoveRecipient(recipientID)
	})
}

func (h *Handler) AddField(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(session *documents.Session, r *http.Request) (any, error) {
		var spec documents.FieldSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}
		return session.AddField(spec)
	})
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(session *documents.Session, r *http.Request) (any, error) {
		fieldID, err := uuid.Parse(r.PathValue("fieldId"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}

		var patch documents.FieldPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}
		return nil, session.UpdateField(fieldID, patch)
	})
}

func (h *Handler) RemoveField(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(session *documents.Session, r *http.Request) (any, error) {
		fieldID, err := uuid.Parse(r.PathValue("fieldId"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", documents.ErrValidation, err)
		}
		return nil, session.RemoveField(fieldID)
	})
}

// Download assembles the document's current pages into a PDF. For a
// completed document those pages carry the burned-in field values.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	pdf, err := export.BuildPDF(doc.Pages)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.Name+".pdf"))
	w.Write(pdf)
}

// mutate runs a session operation against the persisted document: load,
// apply, persist, respond with the updated document. When the operation
// returns a non-nil result it is included alongside the document.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(*documents.Session, *http.Request) (any, error)) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	session := documents.LoadSession(*doc, h.logger)
	result, err := op(session, r)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	updated, err := h.sys.Update(r.Context(), session.Snapshot())
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	if result != nil {
		handlers.RespondJSON(w, http.StatusOK, map[string]any{
			"document": updated,
			"result":   result,
		})
		return
	}
	handlers.RespondJSON(w, http.StatusOK, updated)
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(data []byte) (int, error) {
	return pdfapi.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
