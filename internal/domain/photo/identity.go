package photo

import (
	"encoding/hex"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// IdentityPersister stores the filename -> id table. Save receives a full snapshot.
type IdentityPersister interface {
	LoadIdentities() (map[string]string, error)
	SaveIdentities(identities map[string]string) error
}

// IdentityMapper hands out opaque ids for photo filenames so the admin panel can
// refer to a photo without relying on its position in a listing.
// A filename keeps its id until Forget; an id is never given to another filename.
type IdentityMapper struct {
	mu        sync.RWMutex
	byName    map[string]string
	byID      map[string]string
	persister IdentityPersister
	newID     func() string
}

// NewIdentityMapper returns a mapper that lives only as long as the process.
func NewIdentityMapper() *IdentityMapper {
	return &IdentityMapper{
		byName: make(map[string]string),
		byID:   make(map[string]string),
		newID:  newIdentityID,
	}
}

// NewPersistentIdentityMapper restores the table from p and writes every change back to it.
func NewPersistentIdentityMapper(p IdentityPersister) (*IdentityMapper, error) {
	stored, err := p.LoadIdentities()
	if err != nil {
		return nil, err
	}

	m := NewIdentityMapper()
	m.persister = p
	for name, id := range stored {
		if name == "" || id == "" {
			continue
		}
		if _, taken := m.byID[id]; taken {
			continue
		}
		m.byName[name] = id
		m.byID[id] = name
	}
	return m, nil
}

// Resolve returns the id for filename, minting one on first use.
func (m *IdentityMapper) Resolve(filename string) (string, error) {
	m.mu.RLock()
	id, ok := m.byName[filename]
	m.mu.RUnlock()
	if ok {
		return id, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byName[filename]; ok {
		return id, nil
	}

	id = m.newID()
	for _, taken := m.byID[id]; taken; _, taken = m.byID[id] {
		id = m.newID()
	}

	m.byName[filename] = id
	m.byID[id] = filename
	if err := m.flush(); err != nil {
		delete(m.byName, filename)
		delete(m.byID, id)
		return "", err
	}
	return id, nil
}

// ResolveAll is Resolve for many filenames with a single write to the
// persister. On a failed write none of the new ids are kept.
func (m *IdentityMapper) ResolveAll(filenames []string) (map[string]string, error) {
	out := make(map[string]string, len(filenames))
	var missing []string

	m.mu.RLock()
	for _, name := range filenames {
		if id, ok := m.byName[name]; ok {
			out[name] = id
		} else {
			missing = append(missing, name)
		}
	}
	m.mu.RUnlock()
	if len(missing) == 0 {
		return out, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	minted := make(map[string]string, len(missing))
	for _, name := range missing {
		if id, ok := m.byName[name]; ok {
			out[name] = id
			continue
		}
		id := m.newID()
		for _, taken := m.byID[id]; taken; _, taken = m.byID[id] {
			id = m.newID()
		}
		m.byName[name] = id
		m.byID[id] = name
		minted[name] = id
		out[name] = id
	}
	if len(minted) == 0 {
		return out, nil
	}

	if err := m.flush(); err != nil {
		for name, id := range minted {
			delete(m.byName, name)
			delete(m.byID, id)
		}
		return nil, err
	}
	return out, nil
}

// Lookup returns the filename an id was issued for.
func (m *IdentityMapper) Lookup(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byID[id]
	return name, ok
}

// Forget drops the mapping for filename. The old id becomes unresolvable.
func (m *IdentityMapper) Forget(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byName[filename]
	if !ok {
		return nil
	}
	delete(m.byName, filename)
	delete(m.byID, id)
	if err := m.flush(); err != nil {
		m.byName[filename] = id
		m.byID[id] = filename
		return err
	}
	return nil
}

// Prune forgets every filename for which keep returns false and reports how many were removed.
func (m *IdentityMapper) Prune(keep func(filename string) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := make(map[string]string)
	for name, id := range m.byName {
		if !keep(name) {
			removed[name] = id
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	for name, id := range removed {
		delete(m.byName, name)
		delete(m.byID, id)
	}
	if err := m.flush(); err != nil {
		for name, id := range removed {
			m.byName[name] = id
			m.byID[id] = name
		}
		return 0, err
	}
	return len(removed), nil
}

// Len returns the number of tracked filenames.
func (m *IdentityMapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}

// flush must be called with mu held for writing.
func (m *IdentityMapper) flush() error {
	if m.persister == nil {
		return nil
	}
	return m.persister.SaveIdentities(maps.Clone(m.byName))
}

// newIdentityID returns 128 random bits, hex encoded.
func newIdentityID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
