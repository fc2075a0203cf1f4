// Package server wires the shipping form, the options API and the health
// check onto an echo instance.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pthm/shipform/hx"
	"github.com/pthm/shipform/internal/address"
	"github.com/pthm/shipform/internal/config"
	"github.com/pthm/shipform/internal/optionsapi"
	"github.com/pthm/shipform/internal/region"
	"github.com/pthm/shipform/internal/selection"
	"github.com/pthm/shipform/internal/session"
	"github.com/pthm/shipform/internal/shipping"
)

const shutdownTimeout = 10 * time.Second

// Server is the shipform HTTP service.
type Server struct {
	cfg       config.Config
	log       *zap.Logger
	echo      *echo.Echo
	registry  *hx.Registry
	sessions  *session.Store
	form      *shipping.Form
	primary   region.Source
	secondary region.Source
	submitter address.Submitter
}

// Option configures a Server.
type Option func(*Server)

// WithSources replaces the configured reference data sources.
func WithSources(primary, secondary region.Source) Option {
	return func(s *Server) {
		s.primary = primary
		s.secondary = secondary
	}
}

// WithSubmitter replaces the simulated submitter.
func WithSubmitter(sub address.Submitter) Option {
	return func(s *Server) {
		s.submitter = sub
	}
}

// New builds the server from cfg.
func New(cfg config.Config, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.primary == nil {
		s.primary = region.Open(cfg.PrimaryURL, cfg.FetchTimeout)
	}
	if s.secondary == nil {
		s.secondary = region.Open(cfg.SecondaryURL, cfg.FetchTimeout)
	}
	if s.submitter == nil {
		s.submitter = address.NewSimulatedSubmitter(cfg.SubmitDelay, log.Named("submit"))
	}

	selLog := log.Named("selection")
	s.sessions = session.NewStore(cfg.MaxSessions, func() *selection.Controller {
		return selection.New(s.primary, s.secondary, selection.WithLogger(selLog))
	}, log.Named("session"))
	s.form = shipping.NewForm(s.sessions, s.submitter, log.Named("form"))

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(requestLogger(log.Named("http")))

	s.registry = Mount(s.echo, []byte(cfg.PropsKey), log.Named("hx"))
	s.registry.OnError = s.componentError
	s.registry.Add(s.form)

	s.echo.GET("/", s.index)
	s.echo.GET("/healthz", s.health)
	optionsapi.New(s.primary, s.secondary, log.Named("api")).Register(s.echo.Group("/api"))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) index(c echo.Context) error {
	id, _ := s.sessions.Create()
	s.log.Debug("form session created", zap.String("form_id", id))
	return Render(c, s.form.Page(id))
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// componentError answers expired forms with a banner and no swap; every
// other failure gets the status its error maps to.
func (s *Server) componentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) {
		s.log.Debug("expired form session", zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("HX-Reswap", hx.SwapNone)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(hx.RenderFlashesOOB([]hx.Flash{{Level: hx.FlashError, Message: shipping.MsgExpired}})))
		return
	}

	status := hx.StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("component request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.log.Debug("component request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, http.StatusText(status), status)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
