// Package documents holds the signing data model: a document's pages,
// recipients, and typed fields, the session that mutates them, and the
// visibility and lifecycle rules that govern multi-party signing.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/geometry"
)

// Status is the document lifecycle state. Transitions only move forward.
type Status string

// Document lifecycle states.
const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
)

// Validate checks that the status is a known lifecycle state.
func (s Status) Validate() error {
	switch s {
	case StatusDraft, StatusSent, StatusCompleted:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// CanTransition reports whether the status may advance to the target state.
// draft may move directly to completed when an owner self-signs without
// routing the document to a remote recipient.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusSent || to == StatusCompleted
	case StatusSent:
		return to == StatusCompleted
	default:
		return false
	}
}

// FieldType identifies what kind of value a field captures.
type FieldType string

// Field types. SIGNATURE and INITIALS carry encoded raster images; the rest
// carry plain strings.
const (
	FieldSignature FieldType = "SIGNATURE"
	FieldInitials  FieldType = "INITIALS"
	FieldText      FieldType = "TEXT"
	FieldDate      FieldType = "DATE"
	FieldNumber    FieldType = "NUMBER"
)

// Validate checks that the field type is known.
func (t FieldType) Validate() error {
	switch t {
	case FieldSignature, FieldInitials, FieldText, FieldDate, FieldNumber:
		return nil
	default:
		return ErrInvalidFieldType
	}
}

// IsImage reports whether the field's value is an encoded raster image.
func (t FieldType) IsImage() bool {
	return t == FieldSignature || t == FieldInitials
}

// Page is a rasterized document page. Image is a data URI; Width and Height
// are the raster's pixel dimensions at capture scale. Pages are immutable
// once produced except that compositing replaces Image with the burned-in
// raster for the same page number.
type Page struct {
	Number int    `json:"page_number"`
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Recipient is a signing party. Color comes from an ordered palette cycled
// by insertion index; Order is the 1-based signing sequence position.
type Recipient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Color string    `json:"color"`
	Order int       `json:"order"`
}

// Field is a typed, positioned placeholder on a page awaiting a value from
// one recipient. RecipientID is uuid.Nil while the field is unassigned.
// Value holds an image data URI for SIGNATURE/INITIALS and a plain string
// otherwise.
type Field struct {
	ID            uuid.UUID `json:"id"`
	Type          FieldType `json:"type"`
	PageNumber    int       `json:"page_number"`
	geometry.Rect           // x, y in percent; width, height in canvas pixels
	RecipientID   uuid.UUID `json:"recipient_id"`
	Required      bool      `json:"required"`
	Value         string    `json:"value,omitempty"`
}

// Assigned reports whether the field is bound to a recipient.
func (f Field) Assigned() bool {
	return f.RecipientID != uuid.Nil
}

// HasValue reports whether the field carries a usable value. Image-valued
// fields count by presence; string-valued fields must be non-blank after
// trimming.
func (f Field) HasValue() bool {
	if f.Type.IsImage() {
		return f.Value != ""
	}
	return trimmed(f.Value) != ""
}

// Document is the authoritative signing state for one document.
type Document struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Name        string      `json:"name"`
	Pages       []Page      `json:"pages"`
	Fields      []Field     `json:"fields"`
	Recipients  []Recipient `json:"recipients"`
	Status      Status      `json:"status"`
	IsTemplate  bool        `json:"is_template"`
	TemplateID  *uuid.UUID  `json:"template_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	SentAt      *time.Time  `json:"sent_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// PageByNumber returns the page with the given 1-based number, or nil.
func (d *Document) PageByNumber(n int) *Page {
	for i := range d.Pages {
		if d.Pages[i].Number == n {
			return &d.Pages[i]
		}
	}
	return nil
}

// FieldByID returns the field with the given id, or nil.
func (d *Document) FieldByID(id uuid.UUID) *Field {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return &d.Fields[i]
		}
	}
	return nil
}

// RecipientByID returns the recipient with the given id, or nil.
func (d *Document) RecipientByID(id uuid.UUID) *Recipient {
	for i := range d.Recipients {
		if d.Recipients[i].ID == id {
			return &d.Recipients[i]
		}
	}
	return nil
}

// RecipientByEmail returns the first recipient with the given email, or nil.
func (d *Document) RecipientByEmail(email string) *Recipient {
	for i := range d.Recipients {
		if d.Recipients[i].Email == email {
			return &d.Recipients[i]
		}
	}
	return nil
}

// HasUnassignedFields reports whether any field lost its recipient binding.
// A document cannot be sent while unassigned fields remain.
func (d *Document) HasUnassignedFields() bool {
	for _, f := range d.Fields {
		if !f.Assigned() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to observers and callers.
func (d Document) Clone() Document {
	c := d
	c.Pages = append([]Page(nil), d.Pages...)
	c.Fields = append([]Field(nil), d.Fields...)
	c.Recipients = append([]Recipient(nil), d.Recipients...)
	if d.TemplateID != nil {
		id := *d.TemplateID
		c.TemplateID = &id
	}
	if d.SentAt != nil {
		t := *d.SentAt
		c.SentAt = &t
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
