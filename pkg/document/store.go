package document

import "sync"

// Store holds the open documents keyed by ID.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open records text as the current buffer of id, replacing any earlier one.
func (s *Store) Open(id, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	version := 1
	if prev, ok := s.docs[id]; ok {
		version = prev.Version + 1
	}
	d := newVersion(id, text, version)
	s.docs[id] = d
	return d
}

// Update replaces the buffer of id and reports whether its content changed.
// An unknown id is opened.
func (s *Store) Update(id, text string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.docs[id]
	if !ok {
		d := newVersion(id, text, 1)
		s.docs[id] = d
		return d, true
	}
	hash := HashBytes([]byte(text))
	if hash == prev.Hash {
		return prev, false
	}
	d := newVersion(id, text, prev.Version+1)
	s.docs[id] = d
	return d, true
}

// Get returns the current buffer of id.
func (s *Store) Get(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	return d, ok
}

// Close forgets id.
func (s *Store) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// IDs returns the ids of all open documents.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	return ids
}
