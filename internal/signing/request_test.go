package signing_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/signing"
)

func TestRequestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from signing.RequestStatus
		to   signing.RequestStatus
		want bool
	}{
		{signing.StatusPending, signing.StatusViewed, true},
		{signing.StatusPending, signing.StatusSigned, true},
		{signing.StatusViewed, signing.StatusSigned, true},
		{signing.StatusViewed, signing.StatusPending, false},
		{signing.StatusSigned, signing.StatusViewed, false},
		{signing.StatusSigned, signing.StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s.CanTransition(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNewView_ScopesFieldsToSigner(t *testing.T) {
	alice := documents.Recipient{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	bob := documents.Recipient{ID: uuid.New(), Name: "Bob", Email: "bob@example.com"}

	doc := documents.Document{
		ID:         uuid.New(),
		Name:       "Lease Agreement",
		Recipients: []documents.Recipient{alice, bob},
		Fields: []documents.Field{
			{ID: uuid.New(), Type: documents.FieldSignature, RecipientID: alice.ID},
			{ID: uuid.New(), Type: documents.FieldSignature, RecipientID: bob.ID},
			{ID: uuid.New(), Type: documents.FieldDate, RecipientID: alice.ID},
		},
	}

	req := signing.Request{
		ID:          uuid.New(),
		DocumentID:  doc.ID,
		SignerEmail: alice.Email,
		Status:      signing.StatusViewed,
	}

	view, err := signing.NewView(doc, req)
	if err != nil {
		t.Fatalf("NewView() error = %v", err)
	}

	if view.Recipient.ID != alice.ID {
		t.Errorf("Recipient.ID = %s, want Alice", view.Recipient.ID)
	}
	if len(view.Fields) != 2 {
		t.Fatalf("Fields length = %d, want 2", len(view.Fields))
	}
	for _, f := range view.Fields {
		if f.RecipientID != alice.ID {
			t.Errorf("view includes field for %s", f.RecipientID)
		}
	}
}

func TestNewView_UnknownSigner(t *testing.T) {
	doc := documents.Document{ID: uuid.New()}
	req := signing.Request{SignerEmail: "stranger@example.com"}

	if _, err := signing.NewView(doc, req); !errors.Is(err, signing.ErrRecipientMissing) {
		t.Errorf("NewView() error = %v, want ErrRecipientMissing", err)
	}
}
