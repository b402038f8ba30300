package ranking

import (
	"encoding/json"
	"strings"
)

// Normalize reconciles a stored document with the schema. The result holds
// exactly the schema's categories in schema order, and Order is a permutation
// of their ids. Normalize(Normalize(d)) == Normalize(d).
func Normalize(raw Config, schema Schema) Config {
	existing := make(map[string]Category, len(raw.Categories))
	for _, cat := range raw.Categories {
		existing[cat.ID] = cat
	}

	out := Config{
		Categories: make([]Category, 0, schema.Len()),
		Revision:   max(raw.Revision, 0),
	}
	for _, def := range schema.Categories {
		cat := Category{ID: def.ID, Name: def.DefaultName}
		if stored, ok := existing[def.ID]; ok {
			if strings.TrimSpace(stored.Name) != "" {
				cat.Name = stored.Name
			}
			cat.Photo = normalizePhoto(stored.Photo)
		}
		out.Categories = append(out.Categories, cat)
	}

	order := raw.Order
	if order == nil {
		order = schema.IDs()
	}
	out.Order = normalizeOrder(order, schema.IDs())
	return out
}

// normalizeOrder keeps the first occurrence of every known id from candidate
// and appends the ids it missed in schema order.
func normalizeOrder(candidate, ids []string) []string {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	order := make([]string, 0, len(ids))
	placed := make(map[string]bool, len(ids))
	for _, id := range candidate {
		if known[id] && !placed[id] {
			order = append(order, id)
			placed[id] = true
		}
	}
	for _, id := range ids {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order
}

// normalizePhoto keeps the filename exactly as given; only "" means unassigned.
func normalizePhoto(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

// decodeDocument parses a stored document field by field so a hand-edited
// file with one bad entry keeps the rest. Anything unusable decodes as empty.
func decodeDocument(data []byte) (Config, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Config{}, false
	}

	var doc Config
	if raw, ok := fields["categories"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				var cat Category
				if err := json.Unmarshal(item, &cat); err != nil || cat.ID == "" {
					continue
				}
				doc.Categories = append(doc.Categories, cat)
			}
		}
	}
	if raw, ok := fields["order"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			doc.Order = make([]string, 0, len(items))
			for _, item := range items {
				var id string
				if err := json.Unmarshal(item, &id); err == nil && id != "" {
					doc.Order = append(doc.Order, id)
				}
			}
		}
	}
	if raw, ok := fields["revision"]; ok {
		_ = json.Unmarshal(raw, &doc.Revision)
	}
	return doc, true
}
