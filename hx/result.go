package hx

import "net/http"

// Result is returned from action handlers to say how the response should be
// produced.
//
//	return hx.OK(props)                              // render
//	return hx.OK(props).Flash(hx.FlashSuccess, "Saved")
//	return hx.Err(props, err)                        // registry OnError
//	return hx.NoContent[Props]()                     // nothing to swap
type Result[P any] struct {
	props       P
	err         error
	redirect    string
	flashes     []Flash
	trigger     string
	triggerData map[string]any
	headers     map[string]string
	status      int
	skip        bool
}

// OK renders the component with props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err hands err to the registry's OnError handler.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip means the handler wrote the response itself.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// NoContent answers 204, which HTMX treats as "do not swap". Use it for
// results that arrived too late to matter.
func NoContent[P any]() Result[P] {
	return Result[P]{status: http.StatusNoContent}
}

// Redirect makes HTMX navigate to url via HX-Redirect.
func Redirect[P any](url string) Result[P] {
	return Result[P]{redirect: url}
}

// Flash adds a banner message.
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits an HX-Trigger event, optionally with data.
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// Header sets a response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status overrides the response status (200 by default).
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

// GetProps returns the props.
func (r Result[P]) GetProps() P { return r.props }

// GetErr returns the error.
func (r Result[P]) GetErr() error { return r.err }

// GetRedirect returns the redirect URL.
func (r Result[P]) GetRedirect() string { return r.redirect }

// GetFlashes returns the banner messages.
func (r Result[P]) GetFlashes() []Flash { return r.flashes }

// GetTrigger returns the event name.
func (r Result[P]) GetTrigger() string { return r.trigger }

// GetTriggerData returns the event data.
func (r Result[P]) GetTriggerData() map[string]any { return r.triggerData }

// GetHeaders returns the extra response headers.
func (r Result[P]) GetHeaders() map[string]string { return r.headers }

// GetStatus returns the status, 0 meaning 200.
func (r Result[P]) GetStatus() int { return r.status }

// ShouldSkip reports whether the handler wrote its own response.
func (r Result[P]) ShouldSkip() bool { return r.skip }
