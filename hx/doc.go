// Package hx is a small component kit for server-rendered pages driven by
// HTMX and templ.
//
// A component embeds *Component[P], where P is its props type. Props carry
// only the minimal state needed to reconstruct the component (an id, a
// filter) and travel with every request as a signed token. The lifecycle is:
//
//	decode props -> Hydrate(ctx, *P) -> action handler -> Render(ctx, P)
//
// Actions are registered by semantic name:
//
//	c.Action("submit", c.handleSubmit)
//	c.Action("refresh", c.handleRefresh).Method(http.MethodGet)
//
// and wired into templates with c.Wire("submit", props), which yields the
// hx-post/hx-get and hx-vals attributes for the action.
//
// Handlers return a Result[P]: OK renders, Err goes to the registry's
// OnError, NoContent tells HTMX there is nothing to swap, and Flash adds a
// banner message rendered as an out-of-band swap.
//
// Components are mounted through a Registry:
//
//	reg := hx.NewRegistry(key, logger)
//	reg.Add(form)
//	http.Handle("/_c/", reg.Handler())
//
// Mutating requests must carry HX-Request: true, which a cross-origin form
// post cannot set.
package hx
