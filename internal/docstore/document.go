package docstore

import (
	"encoding/json"
	"fmt"
)

// Top-level collections of the site document.
const (
	CollectionProperties     = "properties"
	CollectionLeads          = "leads"
	CollectionCommunications = "communications"
	CollectionNotes          = "notes"
	CollectionImports        = "imports"
)

var collections = []string{
	CollectionProperties,
	CollectionLeads,
	CollectionCommunications,
	CollectionNotes,
	CollectionImports,
}

// Document is the whole stored JSON object keyed by top-level field.
// Values are kept raw so that fields this service does not touch are written
// back unchanged.
type Document map[string]json.RawMessage

// NewDocument returns a document with every known collection set to [].
func NewDocument() Document {
	doc := make(Document, len(collections))
	for _, c := range collections {
		doc[c] = json.RawMessage(`[]`)
	}
	return doc
}

// Collection returns the items of a top-level array. A missing or null
// collection yields an empty slice.
func (d Document) Collection(name string) ([]json.RawMessage, error) {
	raw, ok := d[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return []json.RawMessage{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// SetCollection replaces a top-level array.
func (d Document) SetCollection(name string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	d[name] = raw
	return nil
}
