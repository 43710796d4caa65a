package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"superstore/internal/engine"
	"superstore/internal/models"
)

// Pool is the allocator used for Arrow buffers.
var Pool memory.Allocator = memory.NewGoAllocator()

// RecordSchema is the columnar layout of a table.
var RecordSchema = arrow.NewSchema([]arrow.Field{
	{Name: "order_id", Type: arrow.BinaryTypes.String},
	{Name: "order_date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "ship_date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "segment", Type: arrow.BinaryTypes.String},
	{Name: "category", Type: arrow.BinaryTypes.String},
	{Name: "sub_category", Type: arrow.BinaryTypes.String},
	{Name: "ship_mode", Type: arrow.BinaryTypes.String},
	{Name: "state", Type: arrow.BinaryTypes.String},
	{Name: "sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "profit", Type: arrow.PrimitiveTypes.Float64},
	{Name: "discount", Type: arrow.PrimitiveTypes.Float64},
	{Name: "shipping_cost", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ToArrow builds one record batch from t. The caller releases it.
func ToArrow(t *engine.Table) arrow.Record {
	b := array.NewRecordBuilder(Pool, RecordSchema)
	defer b.Release()

	str := func(i int) *array.StringBuilder { return b.Field(i).(*array.StringBuilder) }
	date := func(i int) *array.Date32Builder { return b.Field(i).(*array.Date32Builder) }
	num := func(i int) *array.Float64Builder { return b.Field(i).(*array.Float64Builder) }

	t.Each(func(r *models.Record) {
		str(0).Append(r.OrderID)
		date(1).Append(arrow.Date32FromTime(r.OrderDate))
		date(2).Append(arrow.Date32FromTime(r.ShipDate))
		str(3).Append(r.Region)
		str(4).Append(r.Segment)
		str(5).Append(r.Category)
		str(6).Append(r.SubCategory)
		str(7).Append(r.ShipMode)
		str(8).Append(r.State)
		num(9).Append(r.Sales)
		num(10).Append(r.Profit)
		num(11).Append(r.Discount)
		num(12).Append(r.ShippingCost)
	})
	return b.NewRecord()
}

// WriteArrow streams t to w in Arrow IPC stream format.
func WriteArrow(w io.Writer, t *engine.Table) error {
	rec := ToArrow(t)
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(RecordSchema), ipc.WithAllocator(Pool))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("write arrow batch: %w", err)
	}
	return wr.Close()
}
