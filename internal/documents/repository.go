package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a document repository backed by PostgreSQL.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "documents"),
	}
}

// List returns documents newest first. A nil owner id lists every document.
func (r *repo) List(ctx context.Context, ownerID uuid.UUID) ([]Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM documents ORDER BY created_at DESC`, documentColumns)
	args := []any{}

	if ownerID != uuid.Nil {
		q = fmt.Sprintf(`SELECT %s FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`, documentColumns)
		args = append(args, ownerID)
	}

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return docs, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)

	doc, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &doc, nil
}

func (r *repo) Create(ctx context.Context, doc Document) (*Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if err := doc.Status.Validate(); err != nil {
		return nil, err
	}

	pages, fields, recipients, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`INSERT INTO documents(id, owner_id, name, pages, fields, recipients, status, is_template, template_id)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, documentColumns)

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			doc.ID, doc.OwnerID, doc.Name, pages, fields, recipients,
			doc.Status, doc.IsTemplate, doc.TemplateID,
		}, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", created.ID, "name", created.Name, "owner_id", created.OwnerID)
	return &created, nil
}

// Update persists a document snapshot. The stored status is authoritative:
// a completed document rejects any further writes, the incoming status must
// equal the stored one or be a legal forward transition, and advancing to
// completed requires every required field to carry a value.
func (r *repo) Update(ctx context.Context, doc Document) (*Document, error) {
	existing, err := r.Find(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	if existing.Status == StatusCompleted {
		return nil, ErrImmutable
	}
	if doc.Status != existing.Status && !existing.Status.CanTransition(doc.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransition, existing.Status, doc.Status)
	}
	if doc.Status == StatusCompleted && existing.Status != StatusCompleted && !IsComplete(doc.Fields) {
		return nil, fmt.Errorf("%w: required fields are not filled", ErrValidation)
	}

	pages, fields, recipients, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`UPDATE documents SET
			name = $1, pages = $2, fields = $3, recipients = $4, status = $5,
			is_template = $6, sent_at = $7, completed_at = $8, updated_at = $9
		WHERE id = $10
		RETURNING %s`, documentColumns)

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			doc.Name, pages, fields, recipients, doc.Status,
			doc.IsTemplate, doc.SentAt, doc.CompletedAt, time.Now().UTC(),
			doc.ID,
		}, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document updated", "id", updated.ID, "status", updated.Status)
	return &updated, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM documents WHERE id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, id)
	})
	if err != nil {
		mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
		if mapped == ErrNotFound {
			return nil
		}
		return mapped
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}
