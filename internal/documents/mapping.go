package documents

import (
	"encoding/json"
	"fmt"

	"github.com/signet-dev/signet/pkg/repository"
)

// documentColumns is the select list shared by every document query and
// RETURNING clause. Pages, fields, and recipients are stored as JSONB so a
// save/load round trip preserves every attribute.
const documentColumns = `id, owner_id, name, pages, fields, recipients, status,
	is_template, template_id, created_at, updated_at, sent_at, completed_at`

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d          Document
		pages      []byte
		fields     []byte
		recipients []byte
	)

	err := s.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&pages,
		&fields,
		&recipients,
		&d.Status,
		&d.IsTemplate,
		&d.TemplateID,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.SentAt,
		&d.CompletedAt,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(pages, &d.Pages); err != nil {
		return d, fmt.Errorf("decode pages: %w", err)
	}
	if err := json.Unmarshal(fields, &d.Fields); err != nil {
		return d, fmt.Errorf("decode fields: %w", err)
	}
	if err := json.Unmarshal(recipients, &d.Recipients); err != nil {
		return d, fmt.Errorf("decode recipients: %w", err)
	}
	return d, nil
}

func marshalDocument(d Document) (pages, fields, recipients []byte, err error) {
	if pages, err = json.Marshal(d.Pages); err != nil {
		return nil, nil, nil, fmt.Errorf("encode pages: %w", err)
	}
	if fields, err = json.Marshal(d.Fields); err != nil {
		return nil, nil, nil, fmt.Errorf("encode fields: %w", err)
	}
	if recipients, err = json.Marshal(d.Recipients); err != nil {
		return nil, nil, nil, fmt.Errorf("encode recipients: %w", err)
	}
	return pages, fields, recipients, nil
}
