package documents

import (
	"context"

	"github.com/google/uuid"
)

// System defines the document persistence operations. The in-memory Session
// governs how a document mutates; System governs how snapshots move to and
// from the store.
type System interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]Document, error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, doc Document) (*Document, error)
	Update(ctx context.Context, doc Document) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
