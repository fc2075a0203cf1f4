package region

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPSourceFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"b": {"code": "02", "name": "Two"}, "a": {"code": "01", "name": "One"}}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	if src.URL() != srv.URL {
		t.Errorf("URL() = %q, want %q", src.URL(), srv.URL)
	}

	for i := 0; i < 2; i++ {
		got, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		want := []Record{{Code: "02", Name: "Two"}, {Code: "01", Name: "One"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Fetch mismatch (-want +got):\n%s", diff)
		}
	}

	// Sequential fetches are never served from a cache.
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestHTTPSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", fe.StatusCode, http.StatusNotFound)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestHTTPSourceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestHTTPSourceContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPSource(srv.URL).Fetch(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestFileSource(t *testing.T) {
	got, err := NewFileSource(filepath.Join("testdata", "wards.json")).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(got))
	}
	if got[0].Code != "00004" || got[0].ParentCode != "01" {
		t.Errorf("first record = %+v", got[0])
	}

	_, err = NewFileSource(filepath.Join("testdata", "missing.json")).Fetch(context.Background())
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpen(t *testing.T) {
	if _, ok := Open("https://example.com/province.json", time.Second).(*HTTPSource); !ok {
		t.Error("Open(https) should return *HTTPSource")
	}
	if _, ok := Open("file://testdata/provinces.json", time.Second).(*FileSource); !ok {
		t.Error("Open(file) should return *FileSource")
	}
	if _, ok := Open("testdata/provinces.json", time.Second).(*FileSource); !ok {
		t.Error("Open(path) should return *FileSource")
	}
}
