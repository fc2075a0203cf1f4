package hx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
)

// PropsParam is the request parameter carrying the props token.
const PropsParam = "p"

// Hydrater rebuilds the rich parts of props from the serialized ones. It
// runs before every handler, including plain renders.
type Hydrater[P any] interface {
	Hydrate(ctx context.Context, props *P) error
}

// Renderer produces the component's markup from hydrated props.
type Renderer[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// Lifecycle is what a concrete component implements.
type Lifecycle[P any] interface {
	Hydrater[P]
	Renderer[P]
}

// HXComponent is what the Registry mounts.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
}

// ActionFunc handles a named action.
type ActionFunc[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type actionDef[P any] struct {
	name    string
	method  string
	handler ActionFunc[P]
}

// ActionBuilder adjusts a registered action.
type ActionBuilder[P any] struct {
	action *actionDef[P]
}

// Method overrides the default POST method.
func (ab *ActionBuilder[P]) Method(m string) *ActionBuilder[P] {
	ab.action.method = strings.ToUpper(m)
	return ab
}

// Component is embedded by concrete components.
//
//	type Form struct {
//	    *hx.Component[FormProps]
//	}
//
//	func NewForm() *Form {
//	    c := &Form{Component: hx.New[FormProps]("form")}
//	    c.Bind(c)
//	    c.Action("submit", c.handleSubmit)
//	    return c
//	}
//
// The URL prefix is derived from the name and the file:line of the New call,
// so two instances created in different places never collide.
type Component[P any] struct {
	name    string
	prefix  string
	sealed  bool
	actions map[string]*actionDef[P]
	impl    Lifecycle[P]
	encoder *Encoder
	onError ErrorHandler
}

// New creates a component named name.
func New[P any](name string) *Component[P] {
	return &Component[P]{
		name:    name,
		prefix:  "/_c/" + name + "-" + componentHash(name, 1),
		actions: make(map[string]*actionDef[P]),
	}
}

// Sensitive makes props opaque to clients instead of merely signed.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sealed = true
	return c
}

// Bind attaches the concrete component providing Hydrate and Render.
func (c *Component[P]) Bind(impl Lifecycle[P]) {
	c.impl = impl
}

// Name returns the component name.
func (c *Component[P]) Name() string { return c.name }

// Prefix returns the URL prefix all actions are mounted under.
func (c *Component[P]) Prefix() string { return c.prefix }

// IsSensitive reports whether props are sealed.
func (c *Component[P]) IsSensitive() bool { return c.sealed }

// HXPrefix implements HXComponent.
func (c *Component[P]) HXPrefix() string { return c.prefix }

// Action registers handler under name with method POST.
func (c *Component[P]) Action(name string, handler ActionFunc[P]) *ActionBuilder[P] {
	def := &actionDef[P]{name: name, method: http.MethodPost, handler: handler}
	c.actions[name] = def
	return &ActionBuilder[P]{action: def}
}

// attach is called by the Registry.
func (c *Component[P]) attach(enc *Encoder, onError ErrorHandler) {
	c.encoder = enc
	c.onError = onError
}

// Wire returns the HTMX attributes that invoke action with props. An empty
// action targets the plain render.
func (c *Component[P]) Wire(action string, props P) templ.Attributes {
	method := http.MethodGet
	if action != "" {
		if def, ok := c.actions[action]; ok {
			method = def.method
		}
	}
	path, token := c.actionURL(action, props)
	return WireAttrs(path, method, token)
}

// URL returns the GET URL for action with props in the query string.
func (c *Component[P]) URL(action string, props P) string {
	path, token := c.actionURL(action, props)
	if token == "" {
		return path
	}
	return path + "?" + PropsParam + "=" + token
}

// Defer renders placeholder and swaps in the component once the page has
// loaded.
func (c *Component[P]) Defer(props P, placeholder templ.Component) templ.Component {
	return deferred(c.URL("", props), placeholder, "load")
}

// Lazy is like Defer but waits until the placeholder scrolls into view.
func (c *Component[P]) Lazy(props P, placeholder templ.Component) templ.Component {
	return deferred(c.URL("", props), placeholder, "intersect once")
}

func (c *Component[P]) actionURL(action string, props P) (path, token string) {
	path = c.prefix + "/" + action
	if c.encoder == nil {
		return path, ""
	}
	token, err := c.encoder.Encode(props, c.sealed)
	if err != nil {
		return path, ""
	}
	return path, token
}

// HXServeHTTP decodes props, hydrates, dispatches to the action named by the
// path suffix and writes the Result.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, c.prefix), "/")

	var def *actionDef[P]
	if name == "" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			c.fail(w, r, ErrMethodNotAllowed)
			return
		}
	} else {
		var ok bool
		def, ok = c.actions[name]
		if !ok {
			c.fail(w, r, fmt.Errorf("%w: action %q", ErrNotFound, name))
			return
		}
		if r.Method != def.method {
			c.fail(w, r, ErrMethodNotAllowed)
			return
		}
	}

	if c.impl == nil {
		c.fail(w, r, fmt.Errorf("hx: component %q is not bound", c.name))
		return
	}

	props, err := c.decodeProps(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if err := c.impl.Hydrate(ctx, &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %w", ErrHydrationFailed, err))
		return
	}

	result := OK(props)
	if def != nil {
		result = def.handler(ctx, props, r)
	}
	c.write(w, r, result)
}

func (c *Component[P]) decodeProps(r *http.Request) (P, error) {
	var props P
	token := r.URL.Query().Get(PropsParam)
	if token == "" && r.Method != http.MethodGet && r.Method != http.MethodHead {
		token = r.FormValue(PropsParam)
	}
	if token == "" {
		return props, nil
	}
	if c.encoder == nil {
		return props, fmt.Errorf("hx: component %q has no encoder", c.name)
	}
	if err := c.encoder.Decode(token, c.sealed, &props); err != nil {
		return props, wrapEncodingError(err)
	}
	return props, nil
}

func (c *Component[P]) write(w http.ResponseWriter, r *http.Request, res Result[P]) {
	if res.ShouldSkip() {
		return
	}
	for k, v := range res.headers {
		w.Header().Set(k, v)
	}
	if trigger := BuildTriggerHeader(res.trigger, res.triggerData); trigger != "" {
		w.Header().Set("HX-Trigger", trigger)
	}
	if res.err != nil {
		c.fail(w, r, res.err)
		return
	}
	if res.redirect != "" {
		w.Header().Set("HX-Redirect", res.redirect)
		w.WriteHeader(http.StatusOK)
		return
	}

	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := c.impl.Render(r.Context(), res.props).Render(r.Context(), &buf); err != nil {
		c.fail(w, r, fmt.Errorf("hx: render %q: %w", c.name, err))
		return
	}
	buf.WriteString(RenderFlashesOOB(res.flashes))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.onError != nil {
		c.onError(w, r, err)
		return
	}
	DefaultErrorHandler(w, r, err)
}

// componentHash hashes name with the caller's file:line.
func componentHash(name string, skip int) string {
	input := name
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

func deferred(url string, placeholder templ.Component, trigger string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attrs := templ.Attributes{"hx-get": url, "hx-trigger": trigger, "hx-swap": SwapOuter}
		if _, err := io.WriteString(w, "<div"+RenderAttrs(attrs)+">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}
