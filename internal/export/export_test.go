package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"superstore/internal/dashboard"
	"superstore/internal/engine"
	"superstore/internal/models"
)

func sample() *engine.Table {
	d := func(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }
	return engine.NewTable([]models.Record{
		{OrderID: "A", OrderDate: d(2014, 1, 1), ShipDate: d(2014, 1, 3), Region: "East", Segment: "Consumer",
			Category: "Furniture", SubCategory: "Chairs", ShipMode: "Same Day", State: "Ohio",
			Sales: 100, Profit: 10, Discount: 0.1, ShippingCost: 3},
		{OrderID: "B", OrderDate: d(2015, 6, 1), ShipDate: d(2015, 6, 2), Region: "West", Segment: "Corporate",
			Category: "Technology", SubCategory: "Phones", ShipMode: "First Class", State: "Utah",
			Sales: 40, Profit: -4, Discount: 0.3, ShippingCost: 1},
	})
}

func TestWriteArrowRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, sample()))

	rdr, err := ipc.NewReader(&buf, ipc.WithAllocator(Pool))
	require.NoError(t, err)
	defer rdr.Release()

	require.True(t, rdr.Next())
	rec := rdr.Record()
	assert.Equal(t, int64(2), rec.NumRows())
	assert.True(t, rec.Schema().Equal(RecordSchema))

	ids := rec.Column(0).(*array.String)
	assert.Equal(t, "B", ids.Value(1))
	dates := rec.Column(1).(*array.Date32)
	assert.Equal(t, arrow.Date32FromTime(time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)), dates.Value(1))
	profit := rec.Column(10).(*array.Float64)
	assert.Equal(t, -4.0, profit.Value(1))
	assert.False(t, rdr.Next())
}

func TestWriteArrowEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrow(&buf, engine.NewTable(nil)))

	rdr, err := ipc.NewReader(&buf, ipc.WithAllocator(Pool))
	require.NoError(t, err)
	defer rdr.Release()
	require.True(t, rdr.Next())
	assert.Equal(t, int64(0), rdr.Record().NumRows())
}

func TestWorkbookSheets(t *testing.T) {
	tbl := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, dashboard.Select(tbl, engine.Predicate{}), dashboard.Options{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"KPIs", "Sales by Region", "Yearly Sales", "Top States",
		"Category Sales", "Discount vs Profit", "Ship Mode", "Profit Heatmap",
	}, f.GetSheetList())

	rows, err := f.GetRows("Sales by Region")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Region", "Sales"}, {"East", "100"}, {"West", "40"}}, rows)

	rows, err = f.GetRows("Profit Heatmap")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Region", "Consumer", "Corporate"},
		{"East", "10", "0"},
		{"West", "0", "-4"},
	}, rows)

	rows, err = f.GetRows("KPIs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Sales", "140", "$140"}, rows[1])
}
