// Package optionsapi serves the reference data as select options:
// {"data":[{"value":...,"label":...}]}.
package optionsapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthm/shipform/internal/region"
)

// Query parameters.
const (
	SearchParam = "q"
	LimitParam  = "limit"
)

// Option is one select option.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type optionsResponse struct {
	Data []Option `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler reads from the same sources as the form.
type Handler struct {
	primary   region.Source
	secondary region.Source
	log       *zap.Logger
}

// New creates a Handler.
func New(primary, secondary region.Source, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{primary: primary, secondary: secondary, log: log}
}

// Register mounts the routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/regions", h.Regions)
	g.GET("/regions/:code/wards", h.Wards)
}

// Regions lists the primary regions in document order.
func (h *Handler) Regions(c echo.Context) error {
	records, err := h.primary.Fetch(c.Request().Context())
	if err != nil {
		h.log.Error("primary region fetch failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "regions unavailable"})
	}
	return h.respond(c, records)
}

// Wards lists the secondary regions whose parent is :code.
func (h *Handler) Wards(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing region code"})
	}

	records, err := h.secondary.Fetch(c.Request().Context())
	if err != nil {
		h.log.Error("secondary region fetch failed", zap.String("parent", code), zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "wards unavailable"})
	}
	return h.respond(c, region.FilterByParent(records, code))
}

func (h *Handler) respond(c echo.Context, records []region.Record) error {
	query := strings.ToLower(strings.TrimSpace(c.QueryParam(SearchParam)))
	limit, _ := strconv.Atoi(c.QueryParam(LimitParam))
	return c.JSON(http.StatusOK, optionsResponse{Data: toOptions(records, query, limit)})
}

// toOptions projects records to options, keeping those whose label contains
// query. A non-positive limit means no limit.
func toOptions(records []region.Record, query string, limit int) []Option {
	out := []Option{}
	for _, r := range records {
		if query != "" && !strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}
		out = append(out, Option{Value: r.Code, Label: r.Name})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
