// Package cache implements the two TTL-bounded caches (C2, spec.md §4.2):
// one slot for the last VaultStructure, one slot for the last discovered
// note list. Both are owned exclusively by Store; nothing outside this
// package touches the slots directly, so invalidation is structurally
// impossible to forget once a write path is wired through Store.Invalidate.
package cache

import (
	"sync"
	"time"

	"github.com/taigrr/vault-gateway/internal/types"
)

// Default TTLs from spec.md §3 — compile-time constants, overridable via
// Store construction for tests and operator tuning.
const (
	DefaultTTLStructure = 300 * time.Second
	DefaultTTLNotes     = 180 * time.Second
)

type notesSlot struct {
	entry      types.CachedEntry[[]types.NoteMetadata]
	hasHeaders bool
	present    bool
}

// Store holds the structure-cache and notes-cache behind one mutex. The
// lock is never held across I/O: callers follow read-check, release,
// fetch-if-miss, acquire, install.
type Store struct {
	mu sync.RWMutex

	ttlStructure time.Duration
	ttlNotes     time.Duration

	structure        types.CachedEntry[types.VaultStructure]
	structurePresent bool

	notes notesSlot

	now func() time.Time
}

// New constructs a Store with the given TTLs. Pass zero values to use the
// spec's defaults.
func New(ttlStructure, ttlNotes time.Duration) *Store {
	if ttlStructure <= 0 {
		ttlStructure = DefaultTTLStructure
	}
	if ttlNotes <= 0 {
		ttlNotes = DefaultTTLNotes
	}
	return &Store{
		ttlStructure: ttlStructure,
		ttlNotes:     ttlNotes,
		now:          time.Now,
	}
}

// GetStructure returns the cached VaultStructure iff present and fresh.
func (s *Store) GetStructure() (types.VaultStructure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.structurePresent || !s.structure.Fresh(s.now(), s.ttlStructure) {
		return types.VaultStructure{}, false
	}
	return s.structure.Value, true
}

// PutStructure replaces the structure-cache slot atomically.
func (s *Store) PutStructure(v types.VaultStructure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structure = types.CachedEntry[types.VaultStructure]{Value: v, InsertedAt: s.now()}
	s.structurePresent = true
}

// GetNotes returns the cached note list iff present and fresh. requireHeaders
// implements the lazy-upgrade rule: a fresh entry without headers is treated
// as a miss when the caller needs headers.
func (s *Store) GetNotes(requireHeaders bool) ([]types.NoteMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.notes.present || !s.notes.entry.Fresh(s.now(), s.ttlNotes) {
		return nil, false
	}
	if requireHeaders && !s.notes.hasHeaders {
		return nil, false
	}
	return s.notes.entry.Value, true
}

// PutNotes replaces the notes-cache slot atomically, recording whether
// headers were populated for this discovery run.
func (s *Store) PutNotes(notes []types.NoteMetadata, hasHeaders bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notesSlot{
		entry:      types.CachedEntry[[]types.NoteMetadata]{Value: notes, InsertedAt: s.now()},
		hasHeaders: hasHeaders,
		present:    true,
	}
}

// Invalidate clears both caches unconditionally. Every mutating vault
// operation must call this before reporting success to the caller, and
// again on failure (write atomicity, spec.md §7): partial upstream side
// effects are always possible, so a failed write invalidates too.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structurePresent = false
	s.structure = types.CachedEntry[types.VaultStructure]{}
	s.notes = notesSlot{}
}
