package documents

import (
	"strings"

	"github.com/google/uuid"
)

// VisibleFields returns the subset of the document's fields addressable by
// the given recipient. uuid.Nil selects the owner/design view, which sees
// every field.
func VisibleFields(doc Document, recipientID uuid.UUID) []Field {
	if recipientID == uuid.Nil {
		return append([]Field(nil), doc.Fields...)
	}

	visible := make([]Field, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		if f.RecipientID == recipientID {
			visible = append(visible, f)
		}
	}
	return visible
}

// IsComplete reports whether every required field in the given set carries
// a value. The result is independent of field ordering.
func IsComplete(fields []Field) bool {
	for _, f := range fields {
		if f.Required && !f.HasValue() {
			return false
		}
	}
	return true
}

// Progress counts filled fields over the given (recipient-scoped) set.
// One captured SIGNATURE value satisfies every SIGNATURE field in the set,
// and likewise for INITIALS: the signer provides each image once and it is
// stamped wherever that type appears.
func Progress(fields []Field) (signed, total int) {
	signatureFilled := false
	initialsFilled := false
	for _, f := range fields {
		switch {
		case f.Type == FieldSignature && f.HasValue():
			signatureFilled = true
		case f.Type == FieldInitials && f.HasValue():
			initialsFilled = true
		}
	}

	for _, f := range fields {
		switch f.Type {
		case FieldSignature:
			if signatureFilled {
				signed++
			}
		case FieldInitials:
			if initialsFilled {
				signed++
			}
		default:
			if f.HasValue() {
				signed++
			}
		}
	}
	return signed, len(fields)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func isDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}
