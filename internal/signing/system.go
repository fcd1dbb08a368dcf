package signing

import (
	"context"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
)

// System defines the signing workflow operations.
type System interface {
	// Send routes a draft document to its recipients: it validates the
	// document can be sent, issues one token-gated request per recipient,
	// queues signing-link notifications, and advances the document to sent.
	Send(ctx context.Context, documentID uuid.UUID, sender string) ([]Request, error)

	// Resolve maps an access token to the recipient-scoped signing view,
	// advancing the request from pending to viewed.
	Resolve(ctx context.Context, token string) (*View, error)

	// Submit writes the recipient's captured values into the document and
	// marks their request signed. When every request is signed the document
	// is composited, completed, exported, and the final PDF queued for
	// delivery. It reports whether all parties have now signed.
	Submit(ctx context.Context, token string, fields []documents.Field) (bool, error)

	// SendTemplate fans a template out to multiple parties: each party
	// receives their own document cloned from the template, with every
	// field bound to them, sent and token-gated in one step.
	SendTemplate(ctx context.Context, templateID uuid.UUID, parties []TemplateParty, sender string) ([]TemplateDispatch, error)

	// Progress reports per-recipient signing state for a document.
	Progress(ctx context.Context, documentID uuid.UUID) (*Progress, error)
}

// TemplateParty names one recipient a template is fanned out to.
type TemplateParty struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TemplateDispatch reports one per-party document created from a template.
type TemplateDispatch struct {
	DocumentID uuid.UUID `json:"document_id"`
	Email      string    `json:"email"`
	Request    Request   `json:"request"`
}
