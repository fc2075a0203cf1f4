package hx

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Swap strategies for hx-swap.
const (
	SwapOuter = "outerHTML"
	SwapInner = "innerHTML"
	SwapNone  = "none"
)

// Render writes component as the HTML response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX reports whether the request was issued by HTMX.
func IsHTMX(r *http.Request) bool {
	return r != nil && strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// TriggerName returns the name of the element that triggered the request.
func TriggerName(r *http.Request) string {
	return r.Header.Get("HX-Trigger-Name")
}

// TargetID returns the id of the element the response will be swapped into.
func TargetID(r *http.Request) string {
	return r.Header.Get("HX-Target")
}

// BuildTriggerHeader formats an HX-Trigger value: the bare event name, or a
// JSON object when data is attached.
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	encoded, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(encoded)
}

// RenderAttrs renders attrs as a space-prefixed, escaped attribute list in
// key order. Boolean true renders the bare name; false and nil are omitted.
func RenderAttrs(attrs templ.Attributes) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case nil:
		case bool:
			if v {
				sb.WriteString(" " + templ.EscapeString(k))
			}
		case string:
			sb.WriteString(" " + templ.EscapeString(k) + `="` + templ.EscapeString(v) + `"`)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			sb.WriteString(" " + templ.EscapeString(k) + `="` + templ.EscapeString(string(encoded)) + `"`)
		}
	}
	return sb.String()
}
