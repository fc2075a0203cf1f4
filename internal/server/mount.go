package server

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthm/shipform/hx"
)

// ComponentPath is where component actions are served.
const ComponentPath = "/_c/"

// Mount creates a registry keyed by key and routes ComponentPath to it. An
// empty key is replaced by a random one, which invalidates props on every
// restart.
func Mount(e *echo.Echo, key []byte, log *zap.Logger) *hx.Registry {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("server: failed to generate props key: %v", err))
		}
		log.Warn("no props key configured, using a random key")
	}

	reg := hx.NewRegistry(key, log)
	e.Any(ComponentPath+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

// Render writes component to the echo response.
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response())
}
