package documents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/geometry"
)

// palette assigns recipient colors by insertion index, cycling when
// exhausted.
var palette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899",
}

// Observer receives the post-mutation document snapshot.
type Observer func(Document)

// Session owns the in-memory state of a single document under active
// editing or signing. All mutations are synchronous and all-or-nothing:
// a failed operation leaves the document untouched. A Session is not safe
// for concurrent use; one editing session owns one document at a time.
type Session struct {
	doc       Document
	observers []Observer
	logger    *slog.Logger
}

// NewSession creates a session around a fresh draft document.
func NewSession(name string, logger *slog.Logger) *Session {
	now := time.Now().UTC()
	return &Session{
		doc: Document{
			ID:         uuid.New(),
			Name:       name,
			Pages:      []Page{},
			Fields:     []Field{},
			Recipients: []Recipient{},
			Status:     StatusDraft,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		logger: logger.With("system", "session"),
	}
}

// LoadSession creates a session around a document hydrated from
// persistence.
func LoadSession(doc Document, logger *slog.Logger) *Session {
	return &Session{
		doc:    doc.Clone(),
		logger: logger.With("system", "session"),
	}
}

// Load replaces the session's state wholesale.
func (s *Session) Load(doc Document) {
	s.doc = doc.Clone()
	s.notify()
}

// SetOwner records the account the document belongs to.
func (s *Session) SetOwner(id uuid.UUID) {
	s.doc.OwnerID = id
	s.touch()
}

// Snapshot returns a deep copy of the current document.
func (s *Session) Snapshot() Document {
	return s.doc.Clone()
}

// Subscribe registers an observer for post-mutation snapshots.
func (s *Session) Subscribe(fn Observer) {
	s.observers = append(s.observers, fn)
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.doc.Clone()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func (s *Session) touch() {
	s.doc.UpdatedAt = time.Now().UTC()
	s.notify()
}

// mutable rejects mutations once the document is completed.
func (s *Session) mutable() error {
	if s.doc.Status == StatusCompleted {
		return ErrImmutable
	}
	return nil
}

// AddRecipient appends a signing party, assigning the next palette color
// and order index.
func (s *Session) AddRecipient(name, email string) (Recipient, error) {
	if err := s.mutable(); err != nil {
		return Recipient{}, err
	}
	if trimmed(name) == "" {
		return Recipient{}, fmt.Errorf("%w: recipient name required", ErrValidation)
	}
	if trimmed(email) == "" {
		return Recipient{}, fmt.Errorf("%w: recipient email required", ErrValidation)
	}

	r := Recipient{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Color: palette[len(s.doc.Recipients)%len(palette)],
		Order: len(s.doc.Recipients) + 1,
	}
	s.doc.Recipients = append(s.doc.Recipients, r)
	s.touch()

	s.logger.Info("recipient added", "document_id", s.doc.ID, "recipient_id", r.ID, "order", r.Order)
	return r, nil
}

// RemoveRecipient deletes the recipient and clears the binding of every
// field that referenced it. Orphaned fields stay on the document and must
// be reassigned before the document can be sent.
func (s *Session) RemoveRecipient(id uuid.UUID) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if s.doc.RecipientByID(id) == nil {
		return fmt.Errorf("%w: recipient %s", ErrNotFound, id)
	}

	kept := s.doc.Recipients[:0]
	for _, r := range s.doc.Recipients {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.doc.Recipients = kept

	orphaned := 0
	for i := range s.doc.Fields {
		if s.doc.Fields[i].RecipientID == id {
			s.doc.Fields[i].RecipientID = uuid.Nil
			orphaned++
		}
	}
	s.touch()

	s.logger.Info("recipient removed", "document_id", s.doc.ID, "recipient_id", id, "fields_unassigned", orphaned)
	return nil
}

// FieldSpec describes a field to place on a page.
type FieldSpec struct {
	Type        FieldType     `json:"type"`
	PageNumber  int           `json:"page_number"`
	Rect        geometry.Rect `json:"rect"`
	RecipientID uuid.UUID     `json:"recipient_id"`
	Required    bool          `json:"required"`
}

// AddField places a new field. The spec must name an existing recipient and
// page; the rect is clamped to the page before storing.
func (s *Session) AddField(spec FieldSpec) (Field, error) {
	if err := s.mutable(); err != nil {
		return Field{}, err
	}
	if err := spec.Type.Validate(); err != nil {
		return Field{}, fmt.Errorf("%w: %s", ErrInvalidFieldType, spec.Type)
	}
	if s.doc.PageByNumber(spec.PageNumber) == nil {
		return Field{}, fmt.Errorf("%w: page %d does not exist", ErrValidation, spec.PageNumber)
	}
	if s.doc.RecipientByID(spec.RecipientID) == nil {
		return Field{}, fmt.Errorf("%w: recipient %s does not exist", ErrValidation, spec.RecipientID)
	}

	f := Field{
		ID:          uuid.New(),
		Type:        spec.Type,
		PageNumber:  spec.PageNumber,
		Rect:        spec.Rect.Clamp(),
		RecipientID: spec.RecipientID,
		Required:    spec.Required,
	}
	s.doc.Fields = append(s.doc.Fields, f)
	s.touch()
	return f, nil
}

// FieldPatch carries the partial changes UpdateField merges into a field.
// Nil members are left untouched.
type FieldPatch struct {
	Rect        *geometry.Rect `json:"rect,omitempty"`
	Value       *string        `json:"value,omitempty"`
	RecipientID *uuid.UUID     `json:"recipient_id,omitempty"`
	Required    *bool          `json:"required,omitempty"`
}

// UpdateField merges the patch into the identified field. An unknown id is
// a no-op. Recipient reassignment must name an existing recipient, and a
// value must match the field's declared type: image fields take a data URI,
// the rest take plain strings.
func (s *Session) UpdateField(id uuid.UUID, patch FieldPatch) error {
	if err := s.mutable(); err != nil {
		return err
	}

	f := s.doc.FieldByID(id)
	if f == nil {
		return nil
	}

	if patch.RecipientID != nil && s.doc.RecipientByID(*patch.RecipientID) == nil {
		return fmt.Errorf("%w: recipient %s does not exist", ErrValidation, *patch.RecipientID)
	}
	if patch.Value != nil && *patch.Value != "" && f.Type.IsImage() && !isDataURI(*patch.Value) {
		return fmt.Errorf("%w: %s field requires an image data URI", ErrValidation, f.Type)
	}

	if patch.Rect != nil {
		f.Rect = patch.Rect.Clamp()
	}
	if patch.Value != nil {
		f.Value = *patch.Value
	}
	if patch.RecipientID != nil {
		f.RecipientID = *patch.RecipientID
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	s.touch()
	return nil
}

// RemoveField deletes the identified field. An unknown id is a no-op.
func (s *Session) RemoveField(id uuid.UUID) error {
	if err := s.mutable(); err != nil {
		return err
	}

	kept := s.doc.Fields[:0]
	for _, f := range s.doc.Fields {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.doc.Fields = kept
	s.touch()
	return nil
}

// SetPages replaces the page list, used after the source document has been
// rasterized and after compositing produces final page rasters.
func (s *Session) SetPages(pages []Page) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.doc.Pages = append([]Page(nil), pages...)
	s.touch()
	return nil
}
