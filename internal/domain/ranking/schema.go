package ranking

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// CategoryDef is a schema entry: the stable id and the label used until an admin renames it.
type CategoryDef struct {
	ID          string `toml:"id" json:"id"`
	DefaultName string `toml:"default_name" json:"default_name"`
}

// Schema is the canonical, versioned list of categories. Adding a category is a
// schema change; stored documents are reconciled against it on every load.
type Schema struct {
	Version    int           `toml:"version" json:"version"`
	Categories []CategoryDef `toml:"categories" json:"categories"`
}

const defaultCategoryCount = 5

// DefaultSchema is used when no schema file is configured.
func DefaultSchema() Schema {
	s := Schema{Version: 1}
	for i := 1; i <= defaultCategoryCount; i++ {
		s.Categories = append(s.Categories, CategoryDef{
			ID:          fmt.Sprintf("category_%d", i),
			DefaultName: fmt.Sprintf("Category %d", i),
		})
	}
	return s
}

// LoadSchema reads a schema from a TOML file:
//
//	version = 2
//
//	[[categories]]
//	id = "best_smile"
//	default_name = "Best smile"
func LoadSchema(path string) (Schema, error) {
	var s Schema
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Schema{}, fmt.Errorf("decode schema %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// LoadSchemaOrDefault is LoadSchema for a configured path and DefaultSchema
// when path is empty.
func LoadSchemaOrDefault(path string) (Schema, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSchema(), nil
	}
	return LoadSchema(path)
}

// Validate checks that the schema has at least one category and that ids and
// default names are non-empty and ids unique.
func (s Schema) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Categories))
	for i, def := range s.Categories {
		if strings.TrimSpace(def.ID) == "" {
			return fmt.Errorf("%w: category %d has an empty id", ErrInvalidSchema, i)
		}
		if strings.TrimSpace(def.DefaultName) == "" {
			return fmt.Errorf("%w: category %q has an empty default name", ErrInvalidSchema, def.ID)
		}
		if seen[def.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidSchema, def.ID)
		}
		seen[def.ID] = true
	}
	return nil
}

// IDs returns the category ids in schema order.
func (s Schema) IDs() []string {
	ids := make([]string, len(s.Categories))
	for i, def := range s.Categories {
		ids[i] = def.ID
	}
	return ids
}

// Len is the number of categories every document must contain.
func (s Schema) Len() int {
	return len(s.Categories)
}

// WriteTOML encodes the schema in the format LoadSchema reads.
func (s Schema) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return nil
}
