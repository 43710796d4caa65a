package dashboard

// Chart kinds understood by the rendering surface.
const (
	KindBar     = "bar"
	KindLine    = "line"
	KindTreemap = "treemap"
	KindScatter = "scatter"
	KindPie     = "pie"
	KindHeatmap = "heatmap"
)

// ChartSpec is the declarative description handed to the rendering surface
// alongside a view's rows. Field names refer to JSON keys of those rows.
type ChartSpec struct {
	Kind          string   `json:"kind"`
	Title         string   `json:"title"`
	X             string   `json:"x,omitempty"`
	Y             string   `json:"y,omitempty"`
	Names         string   `json:"names,omitempty"`
	Values        string   `json:"values,omitempty"`
	Path          []string `json:"path,omitempty"`
	Color         string   `json:"color,omitempty"`
	Size          string   `json:"size,omitempty"`
	SizeMax       int      `json:"size_max,omitempty"`
	Hover         []string `json:"hover,omitempty"`
	HoverTemplate string   `json:"hover_template,omitempty"`
	ColorScale    string   `json:"color_scale,omitempty"`
	Palette       string   `json:"palette,omitempty"`
	Template      string   `json:"template,omitempty"`
	Orientation   string   `json:"orientation,omitempty"`
	TextFormat    string   `json:"text_format,omitempty"`
	Hole          float64  `json:"hole,omitempty"`
	Markers       bool     `json:"markers,omitempty"`
	XTitle        string   `json:"x_title,omitempty"`
	YTitle        string   `json:"y_title,omitempty"`
}

var chartSpecs = map[string]ChartSpec{
	ViewRegionSales: {
		Kind: KindBar, Title: "Sales by Region",
		X: "region", Y: "sales", Color: "region",
		TextFormat: ".2s", Template: "plotly_dark",
	},
	ViewYearlySales: {
		Kind: KindLine, Title: "Yearly Sales",
		X: "year", Y: "sales", Markers: true,
		Template: "plotly_dark",
	},
	ViewTopStates: {
		Kind: KindBar, Title: "Top 10 States by Profit",
		X: "profit", Y: "state", Color: "profit", Orientation: "h",
		TextFormat: ".2s", Template: "ggplot2",
	},
	ViewCategorySales: {
		Kind: KindTreemap, Title: "Sales Distribution by Category & Sub-Category",
		Path: []string{"category", "sub_category"}, Values: "sales", Color: "sales",
		ColorScale: "blues",
	},
	ViewDiscountProfit: {
		Kind: KindScatter, Title: "Discount Impact on Profit",
		X: "discount", Y: "profit", Size: "sales", SizeMax: 40, Color: "category",
		Hover: []string{"sub_category", "region"}, Template: "seaborn",
	},
	ViewShipModeSales: {
		Kind: KindPie, Title: "Sales by Shipping Method",
		Names: "ship_mode", Values: "sales", Hole: 0.4, Palette: "Set3",
	},
	ViewProfitHeatmap: {
		Kind: KindHeatmap, Title: "Annotated Profit Heatmap",
		X: "segments", Y: "regions", ColorScale: "RdYlGn", Template: "plotly_dark",
		HoverTemplate: "Region: %{y}<br>Segment: %{x}<br>Profit: %{z:$,.0f}<extra></extra>",
		XTitle: "Segment", YTitle: "Region",
	},
}

// Chart returns the spec for a view id. KPI summaries have none.
func Chart(view string) (ChartSpec, bool) {
	c, ok := chartSpecs[view]
	if ok {
		c.Path = append([]string(nil), c.Path...)
		c.Hover = append([]string(nil), c.Hover...)
	}
	return c, ok
}
