package signing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/signature"
	"github.com/signet-dev/signet/pkg/handlers"
	"github.com/signet-dev/signet/pkg/routes"
)

// Handler provides HTTP endpoints for the signing workflow: sending a
// document out for signature, token-gated signer views, signature capture,
// and submission.
type Handler struct {
	sys              System
	maxSignatureSize int64
	logger           *slog.Logger
}

// NewHandler creates a signing handler. maxSignatureSize caps uploaded
// signature images in bytes.
func NewHandler(sys System, maxSignatureSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		sys:              sys,
		maxSignatureSize: maxSignatureSize,
		logger:           logger.With("handler", "signing"),
	}
}

// Routes returns the signing endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/signing",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/documents/{id}/send", Handler: h.Send},
			{Method: "POST", Pattern: "/templates/{id}/send", Handler: h.SendTemplate},
			{Method: "GET", Pattern: "/documents/{id}/progress", Handler: h.Progress},
			{Method: "GET", Pattern: "/{token}", Handler: h.Resolve},
			{Method: "POST", Pattern: "/{token}/signature", Handler: h.Capture},
			{Method: "POST", Pattern: "/{token}/submit", Handler: h.Submit},
		},
	}
}

type sendRequest struct {
	Sender string `json:"sender"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req sendRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	requests, err := h.sys.Send(r.Context(), id, req.Sender)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, requests)
}

type sendTemplateRequest struct {
	Recipients []TemplateParty `json:"recipients"`
	Sender     string          `json:"sender"`
}

func (h *Handler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req sendTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(req.Recipients) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrValidation)
		return
	}

	dispatches, err := h.sys.SendTemplate(r.Context(), id, req.Recipients, req.Sender)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, dispatches)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	view, err := h.sys.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

// captureRequest selects one of the three signature producers. Strokes
// feed the drawing pad, Data carries an uploaded image as base64 or a data
// URI, and Text/Family/Size drive the typed renderer.
type captureRequest struct {
	Kind    string              `json:"kind"`
	Strokes [][]signature.Point `json:"strokes,omitempty"`
	Data    string              `json:"data,omitempty"`
	Text    string              `json:"text,omitempty"`
	Family  string              `json:"family,omitempty"`
	Size    float64             `json:"size,omitempty"`
}

type captureResponse struct {
	Value signature.Value `json:"value"`
}

// Capture turns signer input into a signature value ready to submit as a
// SIGNATURE or INITIALS field. The token must resolve to a live request.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sys.Resolve(r.Context(), r.PathValue("token")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	value, err := h.capture(req)
	if err != nil {
		handlers.RespondError(w, h.logger, captureStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, captureResponse{Value: value})
}

func (h *Handler) capture(req captureRequest) (signature.Value, error) {
	switch req.Kind {
	case "draw":
		pad := signature.NewPad()
		for _, stroke := range req.Strokes {
			if len(stroke) == 0 {
				continue
			}
			pad.Start(signature.PointerEvent{Kind: signature.Pointer, X: stroke[0].X, Y: stroke[0].Y})
			for _, p := range stroke[1:] {
				pad.Draw(signature.PointerEvent{Kind: signature.Pointer, X: p.X, Y: p.Y})
			}
			pad.Stop()
		}
		if pad.Blank() {
			return "", fmt.Errorf("%w: empty signature", documents.ErrValidation)
		}
		return pad.Save()

	case "upload":
		payload := req.Data
		if strings.HasPrefix(payload, "data:") {
			if i := strings.Index(payload, ","); i >= 0 {
				payload = payload[i+1:]
			}
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", fmt.Errorf("%w: %v", signature.ErrUndecodable, err)
		}
		upload := signature.NewUpload(h.maxSignatureSize)
		if err := upload.Accept(data); err != nil {
			return "", err
		}
		return upload.Save()

	case "typed":
		if strings.TrimSpace(req.Text) == "" {
			return "", fmt.Errorf("%w: empty signature text", documents.ErrValidation)
		}
		typed := signature.NewTyped()
		if req.Family != "" {
			if err := typed.SetFamily(signature.FontFamily(req.Family)); err != nil {
				return "", err
			}
		}
		if req.Size != 0 {
			if err := typed.SetSize(req.Size); err != nil {
				return "", err
			}
		}
		if err := typed.SetText(req.Text); err != nil {
			return "", err
		}
		return typed.Save()

	default:
		return "", fmt.Errorf("%w: unknown capture kind %q", documents.ErrValidation, req.Kind)
	}
}

// captureStatus maps producer errors first, then the workflow mapping.
func captureStatus(err error) int {
	if status := signature.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return MapHTTPStatus(err)
}

type submitRequest struct {
	Fields []documents.Field `json:"fields"`
}

type submitResponse struct {
	Completed bool `json:"completed"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	completed, err := h.sys.Submit(r.Context(), r.PathValue("token"), req.Fields)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, submitResponse{Completed: completed})
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	progress, err := h.sys.Progress(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, progress)
}
