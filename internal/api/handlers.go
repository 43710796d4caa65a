package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"superstore/internal/dashboard"
	"superstore/internal/engine"
	"superstore/internal/export"
	"superstore/internal/models"
)

const dateLayout = "2006-01-02"

type Handler struct {
	table *engine.Table
	opts  dashboard.Options

	writeWorkbook func(io.Writer, dashboard.Selection, dashboard.Options) error
	writeArrow    func(io.Writer, *engine.Table) error
}

func NewHandler(table *engine.Table, opts dashboard.Options) *Handler {
	return &Handler{
		table:         table,
		opts:          opts,
		writeWorkbook: export.WriteWorkbook,
		writeArrow:    export.WriteArrow,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/filters", h.GetFilters)
	api.GET("/pages/:page", h.GetPage)
	api.GET("/views/:view", h.GetView)
	api.GET("/export.xlsx", h.ExportXLSX)
	api.GET("/export.arrow", h.ExportArrow)
}

// --- HANDLERS ---

// parsePredicate reads region/segment/category (repeatable) and start/end.
// An absent set means all values; "?region=" selects none.
func parsePredicate(c echo.Context) (engine.Predicate, error) {
	q := c.QueryParams()
	var p engine.Predicate

	set := func(key string) []string {
		vals, ok := q[key]
		if !ok {
			return nil
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	p.Regions = set("region")
	p.Segments = set("segment")
	p.Categories = set("category")

	for _, d := range []struct {
		key string
		dst *time.Time
	}{{"start", &p.Start}, {"end", &p.End}} {
		raw := c.QueryParam(d.key)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return p, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s date %q, want YYYY-MM-DD", d.key, raw))
		}
		*d.dst = t
	}
	return p, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) selection(c echo.Context) (dashboard.Selection, error) {
	p, err := parsePredicate(c)
	if err != nil {
		return dashboard.Selection{}, err
	}
	if p.InvalidRange() {
		c.Logger().Debugf("start %s after end %s, selecting nothing", p.Start.Format(dateLayout), p.End.Format(dateLayout))
	}
	return dashboard.Select(h.table, p), nil
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "rows": h.table.Len()})
}

func (h *Handler) GetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.table.Options())
}

func (h *Handler) GetPage(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	page, err := dashboard.BuildPage(sel, c.Param("page"), h.opts)
	if errors.Is(err, dashboard.ErrUnknownPage) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetView(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	panel, err := dashboard.BuildView(sel, c.Param("view"), h.opts)
	if errors.Is(err, dashboard.ErrUnknownView) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	// scatter points are one per row; page them like the other row listings
	if points, ok := panel.Data.([]models.DiscountPoint); ok {
		total := len(points)
		limit, offset := getPaginationParams(c, total)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":      panel.ID,
			"heading": panel.Heading,
			"chart":   panel.Chart,
			"data":    points[offset:end],
			"total":   total,
			"limit":   limit,
			"offset":  offset,
		})
	}
	return c.JSON(http.StatusOK, panel)
}

func (h *Handler) ExportXLSX(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	// buffered: headers go out only after a successful render
	var buf bytes.Buffer
	if err := h.writeWorkbook(&buf, sel, h.opts); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="superstore.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) ExportArrow(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.writeArrow(&buf, sel.Filtered); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/vnd.apache.arrow.stream", buf.Bytes())
}
