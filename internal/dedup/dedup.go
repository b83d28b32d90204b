// Package dedup tracks article titles already known to the remote store.
//
// Readers inside a batch group work from a Snapshot taken when the group
// starts, so titles recorded while the group is being persisted are not
// visible to them. Two links sharing a title in the same group both pass
// extraction; the persister consults the live set and drops the second.
package dedup

import (
	"strings"
	"sync"

	"SecurityNewsScanner/internal/ports"
)

// TitleSet is an append-only set of titles safe for concurrent use.
type TitleSet struct {
	mu     sync.RWMutex
	titles map[string]struct{}
}

var _ ports.TitleRepository = (*TitleSet)(nil)

// NewTitleSet returns an empty set.
func NewTitleSet() *TitleSet {
	return &TitleSet{titles: map[string]struct{}{}}
}

// Seed adds every non-empty title. It is intended to run once before a crawl.
func (s *TitleSet) Seed(titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, title := range titles {
		if key := normalize(title); key != "" {
			s.titles[key] = struct{}{}
		}
	}
}

// Contains reports whether title has been seeded or recorded.
func (s *TitleSet) Contains(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.titles[normalize(title)]
	return ok
}

// Record marks title as persisted.
func (s *TitleSet) Record(title string) {
	key := normalize(title)
	if key == "" {
		return
	}
	s.mu.Lock()
	s.titles[key] = struct{}{}
	s.mu.Unlock()
}

// Len returns the number of known titles.
func (s *TitleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.titles)
}

// Snapshot freezes the current contents into an immutable view.
func (s *TitleSet) Snapshot() ports.TitleView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frozen := make(snapshot, len(s.titles))
	for title := range s.titles {
		frozen[title] = struct{}{}
	}
	return frozen
}

type snapshot map[string]struct{}

func (v snapshot) Contains(title string) bool {
	_, ok := v[normalize(title)]
	return ok
}

// Titles are compared after trimming only; case differences are distinct titles.
func normalize(title string) string {
	return strings.TrimSpace(title)
}
