package service

import "sync"

// DocumentLocks serializes writes per document id so an ingest and a
// delete for the same document never interleave, while unrelated
// documents proceed concurrently. Reads never take these locks.
type DocumentLocks struct {
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

func NewDocumentLocks() *DocumentLocks {
	return &DocumentLocks{locks: make(map[string]*docLock)}
}

// Lock acquires the lock for a document id and returns its release
// function. Entries are removed once the last holder releases, so the map
// stays bounded by in-flight documents.
func (l *DocumentLocks) Lock(documentID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[documentID]
	if !ok {
		entry = &docLock{}
		l.locks[documentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, documentID)
		}
		l.mu.Unlock()
	}
}
