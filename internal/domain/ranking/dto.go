package ranking

// UpdateRequest replaces the whole ranking. Categories must list every schema
// category; a partial update is rejected.
type UpdateRequest struct {
	Categories []CategoryInput `json:"categories"`
	Order      []string        `json:"order"`
	// Revision, when set, must match the stored revision or the update is rejected.
	Revision *int64 `json:"revision,omitempty"`
}

type CategoryInput struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Photo *string `json:"photo"`
}

// AdminView is what the ranking editor loads: the document plus the schema it was normalized against.
type AdminView struct {
	Config
	Schema Schema `json:"schema"`
}
