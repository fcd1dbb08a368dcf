package signing

import "github.com/signet-dev/signet/pkg/repository"

const requestColumns = `id, document_id, signer_email, signer_name, access_token,
	status, sign_order, created_at, signed_at`

func scanRequest(s repository.Scanner) (Request, error) {
	var r Request
	err := s.Scan(
		&r.ID,
		&r.DocumentID,
		&r.SignerEmail,
		&r.SignerName,
		&r.AccessToken,
		&r.Status,
		&r.Order,
		&r.CreatedAt,
		&r.SignedAt,
	)
	return r, err
}
