package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pthm/shipform/internal/region"
	"github.com/pthm/shipform/internal/selection"
)

func newFactory() Factory {
	empty := region.SourceFunc(func(ctx context.Context) ([]region.Record, error) {
		return nil, nil
	})
	return func() *selection.Controller {
		return selection.New(empty, empty)
	}
}

func TestStoreCreateGet(t *testing.T) {
	s := NewStore(4, newFactory(), nil)

	id, ctrl := s.Create()
	if id == "" {
		t.Fatal("Create() returned empty id")
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", id, err)
	}
	if got != ctrl {
		t.Error("Get() returned a different controller")
	}
}

func TestStoreUnknown(t *testing.T) {
	s := NewStore(4, newFactory(), nil)

	for _, id := range []string{"", "missing"} {
		if _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(2, newFactory(), nil)

	first, _ := s.Create()
	second, _ := s.Create()
	if _, err := s.Get(first); err != nil {
		t.Fatalf("Get(first) error = %v", err)
	}
	s.Create()

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if _, err := s.Get(second); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(second) error = %v, want ErrNotFound after eviction", err)
	}
	if _, err := s.Get(first); err != nil {
		t.Errorf("Get(first) error = %v, want recently used form kept", err)
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore(1000, newFactory(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := s.Create()
			if _, err := s.Get(id); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
}
