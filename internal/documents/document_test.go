package documents_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/geometry"
)

func TestField_SerializesFlatGeometry(t *testing.T) {
	f := documents.Field{
		ID:         uuid.New(),
		Type:       documents.FieldSignature,
		PageNumber: 1,
		Rect:       geometry.Rect{X: 12.5, Y: 40, W: 150, H: 60},
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	// Placement keys sit beside the field's own keys, not nested under a
	// rect object.
	for _, key := range []string{"x", "y", "width", "height"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("serialized field missing top-level %q", key)
		}
	}
	if _, ok := raw["Rect"]; ok {
		t.Error("serialized field nests geometry under Rect")
	}

	var decoded documents.Field
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Rect != f.Rect {
		t.Errorf("round-tripped Rect = %+v, want %+v", decoded.Rect, f.Rect)
	}
}

func TestDocument_Clone(t *testing.T) {
	doc := documents.Document{
		ID:   uuid.New(),
		Name: "Lease Agreement",
		Pages: []documents.Page{
			{Number: 1, Image: "data:image/png;base64,cGFnZQ==", Width: 800, Height: 1000},
		},
		Recipients: []documents.Recipient{
			{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"},
		},
		Fields: []documents.Field{
			{ID: uuid.New(), Type: documents.FieldText, PageNumber: 1},
		},
	}

	clone := doc.Clone()
	clone.Recipients[0].Name = "Mallory"
	clone.Fields[0].Value = "tampered"
	clone.Pages[0].Image = ""

	if doc.Recipients[0].Name != "Alice" {
		t.Error("clone shares recipient backing array")
	}
	if doc.Fields[0].Value != "" {
		t.Error("clone shares field backing array")
	}
	if doc.Pages[0].Image == "" {
		t.Error("clone shares page backing array")
	}
}

func TestDocument_Lookups(t *testing.T) {
	alice := documents.Recipient{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	field := documents.Field{ID: uuid.New(), Type: documents.FieldText, PageNumber: 2}

	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1}, {Number: 2},
		},
		Recipients: []documents.Recipient{alice},
		Fields:     []documents.Field{field},
	}

	if doc.PageByNumber(2) == nil {
		t.Error("PageByNumber(2) = nil, want page")
	}
	if doc.PageByNumber(3) != nil {
		t.Error("PageByNumber(3) != nil, want nil")
	}
	if doc.RecipientByEmail("alice@example.com") == nil {
		t.Error("RecipientByEmail() = nil, want recipient")
	}
	if doc.RecipientByEmail("bob@example.com") != nil {
		t.Error("RecipientByEmail() for unknown address != nil")
	}
	if doc.FieldByID(field.ID) == nil {
		t.Error("FieldByID() = nil, want field")
	}
	if doc.FieldByID(uuid.New()) != nil {
		t.Error("FieldByID() for unknown id != nil")
	}
}
