package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-daily-summary/internal/weather"
)

var (
	// ErrNotFound is returned when no widget is mounted under the given ID.
	ErrNotFound = errors.New("widget not found")
)

// MemoryStore is a concurrency-safe in-memory registry of mounted widgets.
type MemoryStore struct {
	mu sync.RWMutex

	// key: widget ID
	widgets map[string]*weather.Widget
	// mount order, oldest first
	order []string

	maxWidgets int // max number of mounted widgets (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore.
// If maxWidgets is <= 0, it is treated as unlimited.
func NewMemoryStore(maxWidgets int) *MemoryStore {
	return &MemoryStore{
		widgets:    make(map[string]*weather.Widget),
		maxWidgets: maxWidgets,
	}
}

// Save registers w and returns the oldest widgets evicted to stay within the limit.
func (s *MemoryStore) Save(w *weather.Widget) []*weather.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.widgets[w.ID()]; !ok {
		s.order = append(s.order, w.ID())
	}
	s.widgets[w.ID()] = w

	var evicted []*weather.Widget
	if s.maxWidgets > 0 && len(s.order) > s.maxWidgets {
		over := len(s.order) - s.maxWidgets
		for _, id := range s.order[:over] {
			evicted = append(evicted, s.widgets[id])
			delete(s.widgets, id)
		}
		s.order = append([]string(nil), s.order[over:]...)
	}
	return evicted
}

// Get returns the widget mounted under id.
func (s *MemoryStore) Get(id string) (*weather.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.widgets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

// Delete removes and returns the widget mounted under id.
func (s *MemoryStore) Delete(id string) (*weather.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.widgets[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.widgets, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return w, nil
}

// Sweep removes and returns every widget mounted before cutoff.
func (s *MemoryStore) Sweep(cutoff time.Time) []*weather.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*weather.Widget
	kept := s.order[:0]
	for _, id := range s.order {
		w := s.widgets[id]
		if w.MountedAt().Before(cutoff) {
			removed = append(removed, w)
			delete(s.widgets, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

// Len returns the number of mounted widgets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}
