package documents

import (
	"fmt"
	"time"
)

// Transition advances the document's lifecycle state. Guards:
//
//   - sent requires at least one recipient and no unassigned fields
//   - completed requires every required field in scope to carry a value;
//     the scope is the whole field list for a single-party document
//
// Multi-party flows that complete per-recipient should verify their scoped
// completeness with IsComplete before transitioning.
func (s *Session) Transition(to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !s.doc.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, s.doc.Status, to)
	}

	switch to {
	case StatusSent:
		if len(s.doc.Recipients) == 0 {
			return fmt.Errorf("%w: cannot send without recipients", ErrValidation)
		}
		if s.doc.HasUnassignedFields() {
			return fmt.Errorf("%w: cannot send with unassigned fields", ErrValidation)
		}
		now := time.Now().UTC()
		s.doc.SentAt = &now
	case StatusCompleted:
		if !IsComplete(s.doc.Fields) {
			return fmt.Errorf("%w: required fields are not filled", ErrValidation)
		}
		now := time.Now().UTC()
		s.doc.CompletedAt = &now
	}

	from := s.doc.Status
	s.doc.Status = to
	s.touch()

	s.logger.Info("document status advanced", "document_id", s.doc.ID, "from", from, "to", to)
	return nil
}
