package hx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

type attachable interface {
	attach(enc *Encoder, onError ErrorHandler)
}

// Registry mounts components and routes requests to them.
type Registry struct {
	mu         sync.RWMutex
	mux        *http.ServeMux
	encoder    *Encoder
	components map[string]HXComponent
	log        *zap.Logger

	// OnError writes the response for failed component requests. It may be
	// replaced before the first request.
	OnError ErrorHandler
}

// NewRegistry creates a registry whose props tokens are keyed by key.
func NewRegistry(key []byte, log *zap.Logger) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hx: create encoder: %v", err))
	}
	if log == nil {
		log = zap.NewNop()
	}

	reg := &Registry{
		mux:        http.NewServeMux(),
		encoder:    enc,
		components: make(map[string]HXComponent),
		log:        log,
	}
	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			reg.log.Error("component request failed", zap.String("path", r.URL.Path), zap.Error(err))
		} else {
			reg.log.Debug("component request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
		}
		http.Error(w, http.StatusText(status), status)
	}
	return reg
}

// Encoder returns the registry's props encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add mounts components. It panics on a prefix collision.
func (reg *Registry) Add(components ...HXComponent) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		prefix := comp.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			panic(fmt.Sprintf("hx: prefix collision for %q", prefix))
		}
		if a, ok := comp.(attachable); ok {
			a.attach(reg.encoder, reg.handleError)
		}
		reg.components[prefix] = comp
		reg.mux.Handle(prefix+"/", http.HandlerFunc(comp.HXServeHTTP))
	}
}

func (reg *Registry) handleError(w http.ResponseWriter, r *http.Request, err error) {
	reg.OnError(w, r, err)
}

// Handler serves all mounted components. Mutating methods without
// HX-Request: true are refused.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}

// StatusFor maps an error to the HTTP status used for it.
func StatusFor(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case IsDecryptionError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler is used by components that were never added to a
// registry.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	http.Error(w, http.StatusText(status), status)
}
