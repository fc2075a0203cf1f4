package hx

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// BannerID is the element id flash messages are swapped into.
const BannerID = "banner"

// Flash is a one-time message shown in the page banner.
type Flash struct {
	Level   string
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band swap replacing the
// banner's content, so only the latest messages are visible.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="` + BannerID + `" hx-swap-oob="innerHTML">`)
	for _, f := range flashes {
		sb.WriteString(`<div class="alert alert-`)
		sb.WriteString(html.EscapeString(f.Level))
		sb.WriteString(`" role="alert">`)
		sb.WriteString(html.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// BannerContainer renders the empty banner element. Place it once in the
// page layout.
func BannerContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="`+BannerID+`" class="banner" aria-live="polite"></div>`)
		return err
	})
}
