package models

import "time"

// Record is one sales transaction line.
type Record struct {
	OrderID      string    `json:"order_id"`
	OrderDate    time.Time `json:"order_date"`
	ShipDate     time.Time `json:"ship_date"`
	Region       string    `json:"region"`
	Segment      string    `json:"segment"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category"`
	ShipMode     string    `json:"ship_mode"`
	State        string    `json:"state"`
	Sales        float64   `json:"sales"`
	Profit       float64   `json:"profit"`
	Discount     float64   `json:"discount"`
	ShippingCost float64   `json:"shipping_cost"`
}

// FilterOptions feeds the multiselect and date-range controls.
type FilterOptions struct {
	Regions    []string  `json:"regions"`
	Segments   []string  `json:"segments"`
	Categories []string  `json:"categories"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
	Rows       int       `json:"rows"`
}

// KPISummary is the scalar block shown above the overview charts.
// AvgShipping is nil when no rows matched.
type KPISummary struct {
	TotalSales  float64  `json:"total_sales"`
	TotalProfit float64  `json:"total_profit"`
	AvgShipping *float64 `json:"avg_shipping"`
	TotalOrders int      `json:"total_orders"`
	Rows        int      `json:"rows"`
}

type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

type YearSales struct {
	Year  int     `json:"year"`
	Sales float64 `json:"sales"`
}

type StateProfit struct {
	State  string  `json:"state"`
	Profit float64 `json:"profit"`
}

// CategorySales is one treemap leaf.
type CategorySales struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Sales       float64 `json:"sales"`
}

// DiscountPoint is a single scatter point; rows are not grouped.
type DiscountPoint struct {
	Discount    float64 `json:"discount"`
	Profit      float64 `json:"profit"`
	Sales       float64 `json:"sales"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Region      string  `json:"region"`
}

type ShipModeSales struct {
	ShipMode string  `json:"ship_mode"`
	Sales    float64 `json:"sales"`
}

// Heatmap is a dense region x segment grid: Profit[i][j] belongs to
// Regions[i] and Segments[j].
type Heatmap struct {
	Regions  []string    `json:"regions"`
	Segments []string    `json:"segments"`
	Profit   [][]float64 `json:"profit"`
	Text     [][]string  `json:"text,omitempty"`
}

// Cell returns the profit at (region, segment) and whether both axes exist.
func (h Heatmap) Cell(region, segment string) (float64, bool) {
	for i, r := range h.Regions {
		if r != region {
			continue
		}
		for j, s := range h.Segments {
			if s == segment {
				return h.Profit[i][j], true
			}
		}
	}
	return 0, false
}

// Cells is the number of grid cells.
func (h Heatmap) Cells() int {
	return len(h.Regions) * len(h.Segments)
}
