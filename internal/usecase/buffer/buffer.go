// Package buffer holds the in-memory edit buffer of one editing session:
// the ordered sentence list and the set of locally modified records.
package buffer

import (
	"fmt"
	"sync"

	"wikitrans/internal/domain"
)

// Pending is a dirty record captured for a push. Revision identifies the
// edit that produced Text.
type Pending struct {
	SentenceID int64
	Text       string
	Revision   uint64
}

type entry struct {
	s        domain.Sentence
	revision uint64
	// persisted is the last text known to be stored remotely.
	persisted string
}

// Buffer is safe for concurrent use; every mutation is serialized.
type Buffer struct {
	mu         sync.Mutex
	projectID  string
	order      []int64
	byID       map[int64]*entry
	dirty      []int64
	dirtySet   map[int64]struct{}
	committing bool
}

func New() *Buffer {
	return &Buffer{byID: map[int64]*entry{}, dirtySet: map[int64]struct{}{}}
}

// Load replaces the buffer wholesale and clears the dirty set. A rejected
// record set leaves the buffer empty for projectID; only a commit in flight
// keeps the previous contents.
func (b *Buffer) Load(projectID string, records []*domain.Sentence) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.committing {
		return &domain.LoadError{ProjectID: projectID, Err: domain.ErrCommitInProgress}
	}
	order := make([]int64, 0, len(records))
	byID := make(map[int64]*entry, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, dup := byID[r.ID]; dup {
			b.resetLocked(projectID, nil, map[int64]*entry{})
			return &domain.LoadError{ProjectID: projectID, Err: fmt.Errorf("duplicate sentence id %d", r.ID)}
		}
		byID[r.ID] = &entry{s: *r, persisted: r.TranslatedText}
		order = append(order, r.ID)
	}
	b.resetLocked(projectID, order, byID)
	return nil
}

func (b *Buffer) resetLocked(projectID string, order []int64, byID map[int64]*entry) {
	b.projectID = projectID
	b.order = order
	b.byID = byID
	b.dirty = nil
	b.dirtySet = map[int64]struct{}{}
}

// ApplyEdit sets the translated text of a record and marks it dirty, even
// when the text is unchanged.
func (b *Buffer) ApplyEdit(id int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownRecord, id)
	}
	e.s.TranslatedText = text
	e.revision++
	b.markLocked(id)
	return nil
}

func (b *Buffer) markLocked(id int64) {
	if _, ok := b.dirtySet[id]; ok {
		return
	}
	b.dirtySet[id] = struct{}{}
	b.dirty = append(b.dirty, id)
}

// DirtyIDs returns the dirty set in order of first touch.
func (b *Buffer) DirtyIDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int64, len(b.dirty))
	copy(out, b.dirty)
	return out
}

func (b *Buffer) DirtySize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty)
}

func (b *Buffer) IsDirty(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.dirtySet[id]
	return ok
}

// ClearDirty removes ids from the dirty set and records their current text
// as persisted, whatever edits happened since a push was captured. The sync
// controller uses Acknowledge instead, which keeps a record dirty when it
// was edited during its push.
func (b *Buffer) ClearDirty(ids ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		if e, ok := b.byID[id]; ok {
			e.persisted = e.s.TranslatedText
		}
		b.unmarkLocked(id)
	}
}

// Acknowledge clears a pushed record unless it was edited after the push
// was captured; a newer edit keeps it dirty for the next commit.
func (b *Buffer) Acknowledge(p Pending) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byID[p.SentenceID]
	if !ok {
		return false
	}
	e.persisted = p.Text
	if e.revision != p.Revision {
		return false
	}
	b.unmarkLocked(p.SentenceID)
	return true
}

func (b *Buffer) unmarkLocked(id int64) {
	if _, ok := b.dirtySet[id]; !ok {
		return
	}
	delete(b.dirtySet, id)
	for i, d := range b.dirty {
		if d == id {
			b.dirty = append(b.dirty[:i], b.dirty[i+1:]...)
			break
		}
	}
}

// BeginCommit marks a commit in flight and captures the dirty records.
// It fails with domain.ErrCommitInProgress when one is already running.
func (b *Buffer) BeginCommit() ([]Pending, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.committing {
		return nil, domain.ErrCommitInProgress
	}
	b.committing = true
	out := make([]Pending, 0, len(b.dirty))
	for _, id := range b.dirty {
		e := b.byID[id]
		out = append(out, Pending{SentenceID: id, Text: e.s.TranslatedText, Revision: e.revision})
	}
	return out, nil
}

func (b *Buffer) EndCommit() {
	b.mu.Lock()
	b.committing = false
	b.mu.Unlock()
}

func (b *Buffer) Committing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committing
}

func (b *Buffer) ProjectID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.projectID
}

// Records returns copies of the sentences in load order.
func (b *Buffer) Records() []domain.Sentence {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Sentence, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id].s)
	}
	return out
}

func (b *Buffer) Get(id int64) (domain.Sentence, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byID[id]
	if !ok {
		return domain.Sentence{}, false
	}
	return e.s, true
}

// Persisted returns the last text known to be stored for id.
func (b *Buffer) Persisted(id int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byID[id]
	if !ok {
		return "", false
	}
	return e.persisted, true
}
