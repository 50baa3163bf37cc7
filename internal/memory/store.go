// Package memory keeps the in-process session transcripts that condition the
// next answer. Process lifetime only; the durable copy lives in MySQL via the
// message persist queue.
package memory

import "sync"

// Turn is one transcript entry.
type Turn struct {
	Role    string
	Content string
}

// Store maps session ids to ordered transcripts. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	transcripts map[string][]Turn
}

func NewStore() *Store {
	return &Store{transcripts: make(map[string][]Turn)}
}

// GetOrCreate returns a copy of the transcript for sessionID, registering an
// empty one if absent. Idempotent, never fails.
func (s *Store) GetOrCreate(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns, ok := s.transcripts[sessionID]
	if !ok {
		s.transcripts[sessionID] = nil
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = append(s.transcripts[sessionID], Turn{Role: role, Content: content})
}

// Clear removes one transcript. Clearing an unknown session is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, sessionID)
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = make(map[string][]Turn)
}
