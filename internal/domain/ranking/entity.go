package ranking

import "slices"

// Category is one award slot. Photo is a filename in the upload directory or nil.
type Category struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Photo *string `json:"photo"`
}

// Config is the ranking document: categories in schema order plus the display order.
// After Normalize, Order is a permutation of the category ids.
type Config struct {
	Categories []Category `json:"categories"`
	Order      []string   `json:"order"`
	Revision   int64      `json:"revision"`
}

// Clone returns a deep copy so callers never share memory with the store.
func (c Config) Clone() Config {
	out := Config{
		Categories: make([]Category, len(c.Categories)),
		Order:      slices.Clone(c.Order),
		Revision:   c.Revision,
	}
	for i, cat := range c.Categories {
		out.Categories[i] = Category{ID: cat.ID, Name: cat.Name, Photo: clonePhoto(cat.Photo)}
	}
	if out.Order == nil {
		out.Order = []string{}
	}
	return out
}

// Category looks up a category by id.
func (c Config) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// ResolvedCategory is one entry of the results page, in display order.
// PhotoURL is nil when no photo is assigned or the assigned file no longer exists.
type ResolvedCategory struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Photo    *string `json:"photo"`
	PhotoURL *string `json:"photo_url"`
}

// PhotoIndex answers whether a photo filename currently exists.
type PhotoIndex interface {
	Exists(filename string) bool
}

// URLResolver maps a photo filename to its public URL.
type URLResolver func(filename string) string

// Notifier is told after the ranking document changed.
type Notifier interface {
	RankingChanged()
}

func clonePhoto(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
