package photo

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"eventphotos/internal/pkg/fileutil"
)

const identityFileVersion = 1

type identityDocument struct {
	Version    int               `json:"version"`
	Identities map[string]string `json:"identities"`
}

// FileIdentityPersister keeps the identity table in a JSON file, rewritten
// atomically on every change. An unreadable or corrupt file starts an empty table.
type FileIdentityPersister struct {
	path   string
	logger *slog.Logger
}

func NewFileIdentityPersister(path string, logger *slog.Logger) *FileIdentityPersister {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileIdentityPersister{path: path, logger: logger}
}

func (p *FileIdentityPersister) LoadIdentities() (map[string]string, error) {
	data, found, err := fileutil.ReadFileIfExists(p.path)
	if err != nil {
		p.logger.Warn("identity file unreadable, starting empty", "path", p.path, "error", err)
		return map[string]string{}, nil
	}
	if !found {
		return map[string]string{}, nil
	}

	var doc identityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		p.logger.Warn("identity file corrupt, starting empty", "path", p.path, "error", err)
		return map[string]string{}, nil
	}
	if doc.Identities == nil {
		doc.Identities = map[string]string{}
	}
	return doc.Identities, nil
}

func (p *FileIdentityPersister) SaveIdentities(identities map[string]string) error {
	doc := identityDocument{Version: identityFileVersion, Identities: identities}
	if err := fileutil.WriteJSONAtomic(p.path, doc); err != nil {
		return fmt.Errorf("%w: save identities: %w", ErrIOFailure, err)
	}
	return nil
}
