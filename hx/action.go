package hx

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// WireAttrs builds the request attributes for an action: hx-get with the
// props token in the query for GET, or hx-post/put/patch/delete with the
// token in hx-vals. Targeting and swapping are left to the template.
func WireAttrs(path, method, token string) templ.Attributes {
	attrs := templ.Attributes{}

	if method == http.MethodGet || method == "" {
		url := path
		if token != "" {
			url = path + "?" + PropsParam + "=" + token
		}
		attrs["hx-get"] = url
		return attrs
	}

	switch method {
	case http.MethodPost:
		attrs["hx-post"] = path
	case http.MethodPut:
		attrs["hx-put"] = path
	case http.MethodPatch:
		attrs["hx-patch"] = path
	case http.MethodDelete:
		attrs["hx-delete"] = path
	}
	if token != "" {
		data, _ := json.Marshal(map[string]string{PropsParam: token})
		attrs["hx-vals"] = string(data)
	}
	return attrs
}

// Merge returns a new attribute set with every set applied in order.
func Merge(sets ...templ.Attributes) templ.Attributes {
	out := templ.Attributes{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
