package dashboard

import (
	"errors"
	"fmt"

	"superstore/internal/engine"
	"superstore/internal/models"
)

// View ids.
const (
	ViewKPIs           = "kpis"
	ViewRegionSales    = "region-sales"
	ViewYearlySales    = "yearly-sales"
	ViewTopStates      = "top-states"
	ViewCategorySales  = "category-sales"
	ViewDiscountProfit = "discount-profit"
	ViewShipModeSales  = "ship-mode-sales"
	ViewProfitHeatmap  = "profit-heatmap"
)

// Page ids.
const (
	PageOverview = "overview"
	PageDetailed = "detailed"
)

var (
	ErrUnknownPage = errors.New("unknown page")
	ErrUnknownView = errors.New("unknown view")
)

type pageDef struct {
	title   string
	heading string
	views   []string
}

var pages = map[string]pageDef{
	PageOverview: {
		title: "General Overview",
		views: []string{ViewKPIs, ViewRegionSales, ViewYearlySales, ViewTopStates},
	},
	PageDetailed: {
		title:   "Detailed Analysis",
		heading: "Detailed Insights",
		views:   []string{ViewCategorySales, ViewDiscountProfit, ViewShipModeSales, ViewProfitHeatmap},
	},
}

var headings = map[string]string{
	ViewKPIs:           "Key Performance Indicators",
	ViewRegionSales:    "Sales by Region",
	ViewYearlySales:    "Yearly Sales Trend",
	ViewTopStates:      "Top 10 States by Profit",
	ViewCategorySales:  "Sales by Category and Sub-Category",
	ViewDiscountProfit: "Discount vs Profit",
	ViewShipModeSales:  "Sales Distribution by Ship Mode",
	ViewProfitHeatmap:  "Profit Heatmap by Region and Segment",
}

// Views lists every view id in page order.
func Views() []string {
	return append(append([]string(nil), pages[PageOverview].views...), pages[PageDetailed].views...)
}

// Options tunes view construction.
type Options struct {
	TopStates int
}

func (o Options) topStates() int {
	if o.TopStates <= 0 {
		return engine.DefaultTopStates
	}
	return o.TopStates
}

// Card is one KPI tile.
type Card struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Text  string   `json:"text"`
}

// KPIBlock is the KPI view payload.
type KPIBlock struct {
	Summary models.KPISummary `json:"summary"`
	Cards   []Card            `json:"cards"`
}

// Panel is one derived view with its chart spec. Data holds the rows.
type Panel struct {
	ID      string     `json:"id"`
	Heading string     `json:"heading"`
	Rows    int        `json:"rows"`
	Chart   *ChartSpec `json:"chart,omitempty"`
	Data    any        `json:"data"`
}

// Page is everything one page selection needs.
type Page struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Heading string  `json:"heading,omitempty"`
	Matched int     `json:"matched"`
	Total   int     `json:"total"`
	Panels  []Panel `json:"panels"`
}

// Selection is a filtered table together with the predicate that produced it.
type Selection struct {
	Table     *engine.Table
	Filtered  *engine.Table
	Predicate engine.Predicate
}

// Select filters t once so several views can share the result.
func Select(t *engine.Table, p engine.Predicate) Selection {
	return Selection{
		Table:     t,
		Filtered:  engine.ApplyFilter(t, p),
		Predicate: p.Resolve(t),
	}
}

// BuildPage produces every view of the page with the given id.
func BuildPage(sel Selection, id string, opts Options) (Page, error) {
	def, ok := pages[id]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownPage, id)
	}
	page := Page{
		ID:      id,
		Title:   def.title,
		Heading: def.heading,
		Matched: sel.Filtered.Len(),
		Total:   sel.Table.Len(),
		Panels:  make([]Panel, 0, len(def.views)),
	}
	for _, v := range def.views {
		p, err := BuildView(sel, v, opts)
		if err != nil {
			return Page{}, err
		}
		page.Panels = append(page.Panels, p)
	}
	return page, nil
}

// BuildView produces one derived view.
func BuildView(sel Selection, id string, opts Options) (Panel, error) {
	f := sel.Filtered
	panel := Panel{ID: id, Heading: headings[id]}

	switch id {
	case ViewKPIs:
		panel.Data = kpiBlock(engine.Summarize(f))
		panel.Rows = 1
	case ViewRegionSales:
		rows := engine.SalesByRegion(f)
		panel.Data, panel.Rows = rows, len(rows)
	case ViewYearlySales:
		rows := engine.YearlySales(f)
		panel.Data, panel.Rows = rows, len(rows)
	case ViewTopStates:
		rows := engine.TopStatesByProfit(f, opts.topStates())
		panel.Data, panel.Rows = rows, len(rows)
	case ViewCategorySales:
		rows := engine.SalesByCategory(f)
		panel.Data, panel.Rows = rows, len(rows)
	case ViewDiscountProfit:
		rows := engine.DiscountVsProfit(f)
		panel.Data, panel.Rows = rows, len(rows)
	case ViewShipModeSales:
		rows := engine.SalesByShipMode(f)
		panel.Data, panel.Rows = rows, len(rows)
	case ViewProfitHeatmap:
		h := Heatmap(sel)
		panel.Data, panel.Rows = h, len(h.Regions)
	default:
		return Panel{}, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}

	if c, ok := Chart(id); ok {
		if id == ViewTopStates {
			c.Title = fmt.Sprintf("Top %d States by Profit", opts.topStates())
			panel.Heading = c.Title
		}
		panel.Chart = &c
	}
	return panel, nil
}

// Heatmap builds the dense profit grid over the selected regions and
// segments that exist in the table, with currency labels per cell.
func Heatmap(sel Selection) models.Heatmap {
	h := engine.ProfitHeatmap(sel.Filtered,
		present(sel.Predicate.Regions, sel.Table.Regions()),
		present(sel.Predicate.Segments, sel.Table.Segments()))
	h.Text = make([][]string, len(h.Profit))
	for i, row := range h.Profit {
		h.Text[i] = make([]string, len(row))
		for j, v := range row {
			h.Text[i][j] = FormatCurrency(v, 0)
		}
	}
	return h
}

func present(selected, known []string) []string {
	ok := make(map[string]struct{}, len(known))
	for _, k := range known {
		ok[k] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if _, found := ok[s]; found {
			out = append(out, s)
		}
	}
	return out
}

func kpiBlock(k models.KPISummary) KPIBlock {
	sales, profit, orders := k.TotalSales, k.TotalProfit, float64(k.TotalOrders)
	avg := NoData
	if k.AvgShipping != nil {
		avg = FormatCurrency(*k.AvgShipping, 2)
	}
	return KPIBlock{
		Summary: k,
		Cards: []Card{
			{Label: "Total Sales", Value: &sales, Text: FormatCurrency(sales, 0)},
			{Label: "Total Profit", Value: &profit, Text: FormatCurrency(profit, 0)},
			{Label: "Avg Shipping", Value: k.AvgShipping, Text: avg},
			{Label: "Total Orders", Value: &orders, Text: fmt.Sprintf("%d", k.TotalOrders)},
		},
	}
}
