package shipping

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/shipform/hx"
)

// HTMXScript is the htmx build the page loads.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

const pageStyle = `
body { font-family: system-ui, sans-serif; background: #f8fafc; color: #0f172a; margin: 0; }
main { max-width: 40rem; margin: 3rem auto; padding: 0 1rem; }
.shipping-form { background: #fff; border-radius: .75rem; padding: 2rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.row { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
.field { margin-bottom: 1rem; }
.field label { display: block; font-size: .875rem; font-weight: 500; color: #334155; margin-bottom: .5rem; }
.field input, .field select { width: 100%; padding: .5rem .75rem; border: 1px solid #cbd5e1; border-radius: .5rem; box-sizing: border-box; }
.field select:disabled { background: #f1f5f9; }
.field-error { color: #dc2626; font-size: .875rem; font-weight: 500; margin: .25rem 0 0; }
.alert { padding: .75rem 1rem; border-radius: .5rem; margin-bottom: 1rem; white-space: pre-wrap; font-family: ui-monospace, monospace; }
.alert-success { background: #dcfce7; color: #166534; }
.alert-error { background: #fee2e2; color: #991b1b; }
.htmx-indicator { display: none; font-size: .875rem; color: #64748b; margin-left: .5rem; }
.htmx-request .htmx-indicator, .htmx-request.htmx-indicator { display: inline; }
button[type=submit] { padding: .625rem 1.5rem; border: 0; border-radius: .5rem; background: #2563eb; color: #fff; font-weight: 600; }
button[type=submit]:disabled { opacity: .6; }
`

// Page renders the full document for the form session formID. The form
// itself is mounted by a follow-up request once the page has loaded.
func (f *Form) Page(formID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>Shipping Form</title>` +
			`<script src="` + HTMXScript + `"></script>` +
			`<style>` + pageStyle + `</style></head><body><main>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := hx.BannerContainer().Render(ctx, w); err != nil {
			return err
		}
		placeholder := static(`<p class="placeholder">Loading form...</p>`)
		if err := f.Defer(FormProps{FormID: formID}, placeholder).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
