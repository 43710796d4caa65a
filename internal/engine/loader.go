package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	units "github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"superstore/internal/models"
)

// ErrDataSourceUnavailable is returned for any failure to load the dataset:
// missing file, unreadable bytes, or a schema violation.
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// LoadOptions controls how the source file is decoded.
type LoadOptions struct {
	Encoding    string            // IANA name; empty means latin1
	Delimiter   rune              // zero means ','; any other delimiter reads ',' as a decimal comma
	DateLayouts []string          // tried in order; empty means DefaultDateLayouts
	Columns     map[string]string // semantic field -> header override
}

var DefaultDateLayouts = []string{"2006-01-02", "02-01-2006", "1/2/2006"}

type field int

const (
	fOrderID field = iota
	fOrderDate
	fShipDate
	fRegion
	fSegment
	fCategory
	fSubCategory
	fShipMode
	fState
	fSales
	fProfit
	fDiscount
	fShippingCost
	numFields
)

var fieldNames = [numFields]string{
	fOrderID:      "order_id",
	fOrderDate:    "order_date",
	fShipDate:     "ship_date",
	fRegion:       "region",
	fSegment:      "segment",
	fCategory:     "category",
	fSubCategory:  "sub_category",
	fShipMode:     "ship_mode",
	fState:        "state",
	fSales:        "sales",
	fProfit:       "profit",
	fDiscount:     "discount",
	fShippingCost: "shipping_cost",
}

// Load reads and parses the file at path.
func Load(path string, opts LoadOptions) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	return Parse(raw, opts)
}

// Parse decodes raw file bytes into a Table.
func Parse(raw []byte, opts LoadOptions) (*Table, error) {
	start := time.Now()

	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	if enc != nil {
		src = transform.NewReader(src, enc.NewDecoder())
	}

	reader := csv.NewReader(src)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	decimalComma := reader.Comma != ','
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrDataSourceUnavailable, err)
	}
	cols, err := mapColumns(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	rows := make([]models.Record, 0, 1024)
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDataSourceUnavailable, line, err)
		}
		if isBlank(rec) {
			continue
		}
		r, err := parseRecord(rec, cols, layouts, decimalComma)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDataSourceUnavailable, line, err)
		}
		rows = append(rows, r)
	}

	log.Infof("loaded %d rows (%s) in %v", len(rows), units.Format(int64(len(raw))), time.Since(start))
	return NewTable(rows), nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "utf8", "utf-8":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrDataSourceUnavailable, name)
	}
	return enc, nil
}

// NormalizeHeader maps "Sub-Category" and "Order Date" style headers onto
// snake_case field names.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

func mapColumns(header []string, overrides map[string]string) ([numFields]int, error) {
	var cols [numFields]int
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for f := field(0); f < numFields; f++ {
		name := fieldNames[f]
		want := name
		if o, ok := overrides[name]; ok && o != "" {
			want = NormalizeHeader(o)
		}
		i, ok := index[want]
		if !ok {
			missing = append(missing, want)
			continue
		}
		cols[f] = i
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: missing required columns: %s", ErrDataSourceUnavailable, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(rec []string, cols [numFields]int, layouts []string, decimalComma bool) (models.Record, error) {
	cell := func(f field) string {
		i := cols[f]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		r   models.Record
		err error
	)
	r.OrderID = cell(fOrderID)
	r.Region = cell(fRegion)
	r.Segment = cell(fSegment)
	r.Category = cell(fCategory)
	r.SubCategory = cell(fSubCategory)
	r.ShipMode = cell(fShipMode)
	r.State = cell(fState)

	if r.OrderDate, err = parseDate(cell(fOrderDate), layouts); err != nil {
		return r, fmt.Errorf("order_date: %v", err)
	}
	if r.ShipDate, err = parseDate(cell(fShipDate), layouts); err != nil {
		return r, fmt.Errorf("ship_date: %v", err)
	}

	nums := []struct {
		f        field
		dst      *float64
		min, max float64
	}{
		{fSales, &r.Sales, 0, math.Inf(1)},
		{fProfit, &r.Profit, math.Inf(-1), math.Inf(1)},
		{fDiscount, &r.Discount, 0, 1},
		{fShippingCost, &r.ShippingCost, 0, math.Inf(1)},
	}
	for _, n := range nums {
		if *n.dst, err = parseNumber(cell(n.f), decimalComma); err != nil {
			return r, fmt.Errorf("%s: %v", fieldNames[n.f], err)
		}
		if v := *n.dst; v < n.min || v > n.max {
			return r, fmt.Errorf("%s: %v out of range [%v, %v]", fieldNames[n.f], v, n.min, n.max)
		}
	}
	return r, nil
}

func parseDate(s string, layouts []string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseNumber reads a finite decimal. With decimalComma a lone ',' is the
// decimal point ("12,5"); otherwise ',' groups thousands ("3,709.40").
func parseNumber(s string, decimalComma bool) (float64, error) {
	if decimalComma {
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return 0, errors.New("empty number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
