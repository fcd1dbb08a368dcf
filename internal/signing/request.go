// Package signing routes documents to recipients: it issues token-gated
// signature requests, projects the recipient-scoped signing view, accepts
// submitted values, and completes the document once every party has signed.
package signing

import (
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
)

// RequestStatus tracks a recipient's progress. It advances monotonically
// and independently of other recipients.
type RequestStatus string

// Per-recipient signing states.
const (
	StatusPending RequestStatus = "pending"
	StatusViewed  RequestStatus = "viewed"
	StatusSigned  RequestStatus = "signed"
)

// Validate checks that the status is a known signing state.
func (s RequestStatus) Validate() error {
	switch s {
	case StatusPending, StatusViewed, StatusSigned:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// CanTransition reports whether the status may advance to the target
// state. Viewing may be skipped when a recipient signs in one step.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusViewed || to == StatusSigned
	case StatusViewed:
		return to == StatusSigned
	default:
		return false
	}
}

// Request is one recipient's signature request, addressed by an opaque
// access token.
type Request struct {
	ID          uuid.UUID     `json:"id"`
	DocumentID  uuid.UUID     `json:"document_id"`
	SignerEmail string        `json:"signer_email"`
	SignerName  string        `json:"signer_name"`
	AccessToken string        `json:"access_token"`
	Status      RequestStatus `json:"status"`
	Order       int           `json:"order"`
	CreatedAt   time.Time     `json:"created_at"`
	SignedAt    *time.Time    `json:"signed_at,omitempty"`
}

// View is the token-gated projection of a document: the signing recipient's
// identity plus only the fields addressed to them. It is computed, never
// persisted.
type View struct {
	Document  documents.Document  `json:"document"`
	Recipient documents.Recipient `json:"recipient"`
	Fields    []documents.Field   `json:"fields"`
}

// NewView builds the recipient-scoped projection for a resolved request.
func NewView(doc documents.Document, req Request) (*View, error) {
	recipient := doc.RecipientByEmail(req.SignerEmail)
	if recipient == nil {
		return nil, ErrRecipientMissing
	}

	return &View{
		Document:  doc.Clone(),
		Recipient: *recipient,
		Fields:    documents.VisibleFields(doc, recipient.ID),
	}, nil
}

// Progress summarizes a document's multi-party signing state.
type Progress struct {
	DocumentID uuid.UUID `json:"document_id"`
	Signed     int       `json:"signed"`
	Total      int       `json:"total"`
	Requests   []Request `json:"requests"`
}
