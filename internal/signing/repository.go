package signing

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/compositor"
	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/export"
	"github.com/signet-dev/signet/internal/mailer"
	"github.com/signet-dev/signet/internal/storage"
	"github.com/signet-dev/signet/pkg/repository"
)

// requestStore persists signature requests. The workflow owns lifecycle
// guards; the store only reads and writes rows.
type requestStore interface {
	create(ctx context.Context, documentID uuid.UUID, recipient documents.Recipient) (*Request, error)
	byToken(ctx context.Context, token string) (*Request, error)
	advance(ctx context.Context, id uuid.UUID, to RequestStatus, signedAt *time.Time) error
	forDocument(ctx context.Context, documentID uuid.UUID) ([]Request, error)
}

type workflow struct {
	requests    requestStore
	docs        documents.System
	compositor  *compositor.Compositor
	storage     storage.System
	mail        *mailer.Queue
	logger      *slog.Logger
	frontendURL string
}

// New creates the signing workflow system.
func New(
	db *sql.DB,
	docs documents.System,
	comp *compositor.Compositor,
	store storage.System,
	mail *mailer.Queue,
	frontendURL string,
	logger *slog.Logger,
) System {
	return &workflow{
		requests:    &requestTable{db: db},
		docs:        docs,
		compositor:  comp,
		storage:     store,
		mail:        mail,
		frontendURL: frontendURL,
		logger:      logger.With("system", "signing"),
	}
}

// Send persists the sent transition before any request rows exist or any
// mail is queued, so a failed update never leaks live tokens for a draft.
func (w *workflow) Send(ctx context.Context, documentID uuid.UUID, sender string) ([]Request, error) {
	doc, err := w.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	session := documents.LoadSession(*doc, w.logger)
	if err := session.Transition(documents.StatusSent); err != nil {
		return nil, err
	}
	snapshot := session.Snapshot()

	if _, err := w.docs.Update(ctx, snapshot); err != nil {
		return nil, err
	}

	requests := make([]Request, 0, len(snapshot.Recipients))
	for _, recipient := range snapshot.Recipients {
		req, err := w.requests.create(ctx, documentID, recipient)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)

		link := fmt.Sprintf("%s/sign/%s", w.frontendURL, req.AccessToken)
		w.mail.EnqueueSigningLink(recipient.Email, recipient.Name, link, snapshot.Name, sender)
	}

	w.logger.Info("document sent", "document_id", documentID, "recipients", len(requests))
	return requests, nil
}

func (w *workflow) Resolve(ctx context.Context, token string) (*View, error) {
	req, err := w.requests.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	doc, err := w.docs.Find(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	if req.Status == StatusPending {
		if err := w.advanceRequest(ctx, req, StatusViewed, nil); err != nil {
			return nil, err
		}
	}

	return NewView(*doc, *req)
}

// Submit applies the recipient's values, verifies their scoped fields are
// complete, and persists the document before the request is marked signed.
// A failed validation or update leaves the request untouched so the signer
// can retry.
func (w *workflow) Submit(ctx context.Context, token string, fields []documents.Field) (bool, error) {
	req, err := w.requests.byToken(ctx, token)
	if err != nil {
		return false, err
	}
	if req.Status == StatusSigned {
		return false, ErrAlreadySigned
	}

	doc, err := w.docs.Find(ctx, req.DocumentID)
	if err != nil {
		return false, err
	}

	recipient := doc.RecipientByEmail(req.SignerEmail)
	if recipient == nil {
		return false, ErrRecipientMissing
	}

	session := documents.LoadSession(*doc, w.logger)
	for _, f := range fields {
		target := doc.FieldByID(f.ID)
		if target == nil || target.RecipientID != recipient.ID {
			continue
		}
		value := f.Value
		if err := session.UpdateField(f.ID, documents.FieldPatch{Value: &value}); err != nil {
			return false, err
		}
	}

	snapshot := session.Snapshot()
	if !documents.IsComplete(documents.VisibleFields(snapshot, recipient.ID)) {
		return false, fmt.Errorf("%w: required fields are not filled", documents.ErrValidation)
	}

	if _, err := w.docs.Update(ctx, snapshot); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if err := w.advanceRequest(ctx, req, StatusSigned, &now); err != nil {
		return false, err
	}

	allSigned, err := w.allSigned(ctx, req.DocumentID)
	if err != nil {
		return false, err
	}

	if allSigned {
		if err := w.complete(ctx, session); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// complete burns the captured values into the pages, advances the document
// to completed, persists it, and queues delivery of the exported PDF.
func (w *workflow) complete(ctx context.Context, session *documents.Session) error {
	snapshot := session.Snapshot()

	composited, err := w.compositor.Compose(ctx, snapshot)
	if err != nil {
		return err
	}

	if err := session.SetPages(composited); err != nil {
		return err
	}
	if err := session.Transition(documents.StatusCompleted); err != nil {
		return err
	}

	final := session.Snapshot()
	if _, err := w.docs.Update(ctx, final); err != nil {
		return err
	}

	pdf, err := export.BuildPDF(final.Pages)
	if err != nil {
		return fmt.Errorf("export signed document: %w", err)
	}

	key := fmt.Sprintf("signed/%s.pdf", final.ID)
	if err := w.storage.Store(ctx, key, pdf); err != nil {
		return fmt.Errorf("store signed document: %w", err)
	}

	emails := make([]string, 0, len(final.Recipients))
	for _, r := range final.Recipients {
		emails = append(emails, r.Email)
	}
	w.mail.EnqueueCompleted(emails, final.Name, pdf, "")

	w.logger.Info("document completed", "document_id", final.ID, "storage_key", key)
	return nil
}

func (w *workflow) SendTemplate(ctx context.Context, templateID uuid.UUID, parties []TemplateParty, sender string) ([]TemplateDispatch, error) {
	template, err := w.docs.Find(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate {
		return nil, fmt.Errorf("%w: %s", ErrNotTemplate, templateID)
	}

	dispatches := make([]TemplateDispatch, 0, len(parties))
	for _, party := range parties {
		dispatch, err := w.dispatchTemplate(ctx, *template, party, sender)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, *dispatch)
	}

	w.logger.Info("template dispatched", "template_id", templateID, "parties", len(dispatches))
	return dispatches, nil
}

// dispatchTemplate clones the template into a single-party document bound
// entirely to one recipient, sends it, and queues their signing link.
func (w *workflow) dispatchTemplate(ctx context.Context, template documents.Document, party TemplateParty, sender string) (*TemplateDispatch, error) {
	session := documents.NewSession(fmt.Sprintf("%s - %s", template.Name, party.Name), w.logger)
	session.SetOwner(template.OwnerID)

	if err := session.SetPages(template.Pages); err != nil {
		return nil, err
	}

	recipient, err := session.AddRecipient(party.Name, party.Email)
	if err != nil {
		return nil, err
	}

	for _, f := range template.Fields {
		if _, err := session.AddField(documents.FieldSpec{
			Type:        f.Type,
			PageNumber:  f.PageNumber,
			Rect:        f.Rect,
			RecipientID: recipient.ID,
			Required:    f.Required,
		}); err != nil {
			return nil, err
		}
	}

	if err := session.Transition(documents.StatusSent); err != nil {
		return nil, err
	}

	snapshot := session.Snapshot()
	snapshot.TemplateID = &template.ID

	doc, err := w.docs.Create(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	req, err := w.requests.create(ctx, doc.ID, recipient)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/sign/%s", w.frontendURL, req.AccessToken)
	w.mail.EnqueueSigningLink(party.Email, party.Name, link, doc.Name, sender)

	return &TemplateDispatch{
		DocumentID: doc.ID,
		Email:      party.Email,
		Request:    *req,
	}, nil
}

func (w *workflow) Progress(ctx context.Context, documentID uuid.UUID) (*Progress, error) {
	requests, err := w.requests.forDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	signed := 0
	for _, r := range requests {
		if r.Status == StatusSigned {
			signed++
		}
	}

	return &Progress{
		DocumentID: documentID,
		Signed:     signed,
		Total:      len(requests),
		Requests:   requests,
	}, nil
}

func (w *workflow) advanceRequest(ctx context.Context, req *Request, to RequestStatus, signedAt *time.Time) error {
	if !req.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, req.Status, to)
	}

	if err := w.requests.advance(ctx, req.ID, to, signedAt); err != nil {
		return err
	}

	req.Status = to
	req.SignedAt = signedAt
	return nil
}

func (w *workflow) allSigned(ctx context.Context, documentID uuid.UUID) (bool, error) {
	requests, err := w.requests.forDocument(ctx, documentID)
	if err != nil {
		return false, err
	}
	if len(requests) == 0 {
		return false, nil
	}

	for _, r := range requests {
		if r.Status != StatusSigned {
			return false, nil
		}
	}
	return true, nil
}

// requestTable is the PostgreSQL-backed request store.
type requestTable struct {
	db *sql.DB
}

func (t *requestTable) create(ctx context.Context, documentID uuid.UUID, recipient documents.Recipient) (*Request, error) {
	q := fmt.Sprintf(`INSERT INTO signature_requests(id, document_id, signer_email, signer_name, access_token, status, sign_order)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, requestColumns)

	req, err := repository.WithTx(ctx, t.db, func(tx *sql.Tx) (Request, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			uuid.New(), documentID, recipient.Email, recipient.Name,
			uuid.NewString(), StatusPending, recipient.Order,
		}, scanRequest)
	})
	if err != nil {
		return nil, fmt.Errorf("create signature request: %w", err)
	}
	return &req, nil
}

func (t *requestTable) byToken(ctx context.Context, token string) (*Request, error) {
	q := fmt.Sprintf(`SELECT %s FROM signature_requests WHERE access_token = $1`, requestColumns)

	req, err := repository.QueryOne(ctx, t.db, q, []any{token}, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrTokenInvalid, ErrTokenInvalid)
	}
	return &req, nil
}

func (t *requestTable) advance(ctx context.Context, id uuid.UUID, to RequestStatus, signedAt *time.Time) error {
	q := `UPDATE signature_requests SET status = $1, signed_at = $2 WHERE id = $3`

	_, err := repository.WithTx(ctx, t.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, to, signedAt, id)
	})
	if err != nil {
		return repository.MapError(err, ErrTokenInvalid, ErrTokenInvalid)
	}
	return nil
}

func (t *requestTable) forDocument(ctx context.Context, documentID uuid.UUID) ([]Request, error) {
	q := fmt.Sprintf(`SELECT %s FROM signature_requests WHERE document_id = $1 ORDER BY sign_order`, requestColumns)

	requests, err := repository.QueryMany(ctx, t.db, q, []any{documentID}, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query signature requests: %w", err)
	}
	return requests, nil
}
