// Package session keeps one selection controller per rendered form.
package session

import (
	"errors"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pthm/shipform/internal/selection"
)

// DefaultMaxEntries bounds a store created with a non-positive size.
const DefaultMaxEntries = 10000

// ErrNotFound is returned for unknown or evicted form ids.
var ErrNotFound = errors.New("session: form not found")

// Factory builds the controller for a new form.
type Factory func() *selection.Controller

// Store maps form ids to controllers. The least recently used form is
// evicted once the store is full.
type Store struct {
	mu      sync.Mutex
	cache   *lru.Cache
	factory Factory
	log     *zap.Logger
}

// NewStore creates a store holding at most maxEntries forms.
func NewStore(maxEntries int, factory Factory, log *zap.Logger) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{cache: lru.New(maxEntries), factory: factory, log: log}
	s.cache.OnEvicted = func(key lru.Key, _ any) {
		s.log.Debug("form session evicted", zap.Any("form_id", key))
	}
	return s
}

// Create registers a fresh controller and returns its id.
func (s *Store) Create() (string, *selection.Controller) {
	id := uuid.NewString()
	ctrl := s.factory()

	s.mu.Lock()
	s.cache.Add(id, ctrl)
	s.mu.Unlock()
	return id, ctrl
}

// Get returns the controller for id and marks it recently used.
func (s *Store) Get(id string) (*selection.Controller, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	v, ok := s.cache.Get(id)
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*selection.Controller), nil
}

// Len returns the number of live forms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
