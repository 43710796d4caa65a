package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore/internal/dashboard"
	"superstore/internal/engine"
	"superstore/internal/models"
)

func testHandler() *Handler {
	d := func(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }
	table := engine.NewTable([]models.Record{
		{OrderID: "A", OrderDate: d(2014, 1, 1), Region: "East", Segment: "Consumer", Category: "Furniture",
			SubCategory: "Chairs", State: "Ohio", ShipMode: "Same Day", Sales: 100, Profit: 10, Discount: 0.1, ShippingCost: 2},
		{OrderID: "B", OrderDate: d(2014, 5, 1), Region: "East", Segment: "Corporate", Category: "Furniture",
			SubCategory: "Tables", State: "Ohio", ShipMode: "First Class", Sales: 50, Profit: -5, Discount: 0.2, ShippingCost: 4},
		{OrderID: "C", OrderDate: d(2015, 3, 1), Region: "West", Segment: "Consumer", Category: "Technology",
			SubCategory: "Phones", State: "Utah", ShipMode: "Same Day", Sales: 200, Profit: 20, Discount: 0, ShippingCost: 6},
	})
	return NewHandler(table, dashboard.Options{})
}

func testServer() *echo.Echo {
	return NewServer(testHandler(), ServerOptions{LogLevel: "off"})
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetFilters(t *testing.T) {
	rec := get(t, testServer(), "/api/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts models.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"East", "West"}, opts.Regions)
	assert.Equal(t, []string{"Furniture", "Technology"}, opts.Categories)
	assert.Equal(t, 3, opts.Rows)
}

func TestGetOverviewPage(t *testing.T) {
	rec := get(t, testServer(), "/api/pages/overview?region=East")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var page struct {
		Title   string `json:"title"`
		Matched int    `json:"matched"`
		Panels  []struct {
			ID   string          `json:"id"`
			Data json.RawMessage `json:"data"`
		} `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "General Overview", page.Title)
	assert.Equal(t, 2, page.Matched)
	require.Len(t, page.Panels, 4)

	var regions []models.RegionSales
	require.NoError(t, json.Unmarshal(page.Panels[1].Data, &regions))
	assert.Equal(t, []models.RegionSales{{Region: "East", Sales: 150}}, regions)
}

func TestGetHeatmapView(t *testing.T) {
	rec := get(t, testServer(), "/api/views/profit-heatmap?start=2030-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var panel struct {
		Data models.Heatmap `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, 4, panel.Data.Cells())
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, panel.Data.Profit)
}

func TestKPIsEmptySelection(t *testing.T) {
	rec := get(t, testServer(), "/api/views/kpis?segment=")
	require.Equal(t, http.StatusOK, rec.Code)

	var panel struct {
		Data dashboard.KPIBlock `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Zero(t, panel.Data.Summary.Rows)
	assert.Nil(t, panel.Data.Summary.AvgShipping)
	assert.Equal(t, dashboard.NoData, panel.Data.Cards[2].Text)
}

func TestInvertedRangeIsEmptyNotError(t *testing.T) {
	rec := get(t, testServer(), "/api/views/region-sales?start=2015-01-01&end=2014-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":0`)
}

func TestDiscountProfitPagination(t *testing.T) {
	rec := get(t, testServer(), "/api/views/discount-profit?limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data   []models.DiscountPoint `json:"data"`
		Total  int                    `json:"total"`
		Offset int                    `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, body.Offset)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Tables", body.Data[0].SubCategory)
}

func TestBadRequests(t *testing.T) {
	e := testServer()
	assert.Equal(t, http.StatusBadRequest, get(t, e, "/api/pages/overview?start=yesterday").Code)
	assert.Equal(t, http.StatusNotFound, get(t, e, "/api/pages/settings").Code)
	assert.Equal(t, http.StatusNotFound, get(t, e, "/api/views/unknown").Code)
}

func TestExports(t *testing.T) {
	e := testServer()

	rec := get(t, e, "/api/export.xlsx?region=West")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = get(t, e, "/api/export.arrow")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.apache.arrow.stream", rec.Header().Get(echo.HeaderContentType))
	assert.NotZero(t, rec.Body.Len())
}

func TestExportFailureIsNotA200(t *testing.T) {
	h := testHandler()
	h.writeWorkbook = func(w io.Writer, _ dashboard.Selection, _ dashboard.Options) error {
		_, _ = w.Write([]byte("PK partial"))
		return errors.New("disk full")
	}
	h.writeArrow = func(w io.Writer, _ *engine.Table) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("allocator exhausted")
	}
	e := NewServer(h, ServerOptions{LogLevel: "off"})

	for _, target := range []string{"/api/export.xlsx", "/api/export.arrow"} {
		rec := get(t, e, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition), target)
		assert.NotContains(t, rec.Body.String(), "partial", target)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, ParseLevel("debug"))
	assert.Equal(t, log.OFF, ParseLevel(" Off "))
	assert.Equal(t, log.INFO, ParseLevel("bogus"))
}
