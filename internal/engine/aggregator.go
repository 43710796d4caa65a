package engine

import (
	"sort"
	"strings"

	"golang.org/x/exp/constraints"

	"superstore/internal/models"
)

// DefaultTopStates is how many states the profit ranking keeps.
const DefaultTopStates = 10

// grouper sums one value per key, remembering first-appearance order.
type grouper[K constraints.Ordered] struct {
	index map[K]int
	keys  []K
	sums  []float64
}

func newGrouper[K constraints.Ordered]() *grouper[K] {
	return &grouper[K]{index: make(map[K]int)}
}

func (g *grouper[K]) add(k K, v float64) {
	i, ok := g.index[k]
	if !ok {
		i = len(g.keys)
		g.index[k] = i
		g.keys = append(g.keys, k)
		g.sums = append(g.sums, 0)
	}
	g.sums[i] += v
}

// sorted returns keys ascending with their sums.
func (g *grouper[K]) sorted() ([]K, []float64) {
	order := make([]int, len(g.keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return g.keys[order[a]] < g.keys[order[b]] })

	keys := make([]K, len(order))
	sums := make([]float64, len(order))
	for i, o := range order {
		keys[i] = g.keys[o]
		sums[i] = g.sums[o]
	}
	return keys, sums
}

// sumBy groups t by a categorical key, skipping rows where the key is missing.
func sumBy(t *Table, key func(*models.Record) string, val func(*models.Record) float64) ([]string, []float64) {
	g := newGrouper[string]()
	t.Each(func(r *models.Record) {
		if k := key(r); k != "" {
			g.add(k, val(r))
		}
	})
	return g.sorted()
}

// Summarize computes the KPI block. AvgShipping stays nil on an empty table.
func Summarize(t *Table) models.KPISummary {
	var (
		k        models.KPISummary
		shipping float64
		orders   = make(map[string]struct{})
	)
	t.Each(func(r *models.Record) {
		k.TotalSales += r.Sales
		k.TotalProfit += r.Profit
		shipping += r.ShippingCost
		if r.OrderID != "" {
			orders[r.OrderID] = struct{}{}
		}
	})
	k.Rows = t.Len()
	k.TotalOrders = len(orders)
	if k.Rows > 0 {
		avg := shipping / float64(k.Rows)
		k.AvgShipping = &avg
	}
	return k
}

// SalesByRegion sums sales per region, ordered by region label.
func SalesByRegion(t *Table) []models.RegionSales {
	keys, sums := sumBy(t,
		func(r *models.Record) string { return r.Region },
		func(r *models.Record) float64 { return r.Sales })
	out := make([]models.RegionSales, len(keys))
	for i := range keys {
		out[i] = models.RegionSales{Region: keys[i], Sales: sums[i]}
	}
	return out
}

// YearlySales sums sales per order year, ascending.
func YearlySales(t *Table) []models.YearSales {
	g := newGrouper[int]()
	t.Each(func(r *models.Record) {
		g.add(r.OrderDate.Year(), r.Sales)
	})
	keys, sums := g.sorted()
	out := make([]models.YearSales, len(keys))
	for i := range keys {
		out[i] = models.YearSales{Year: keys[i], Sales: sums[i]}
	}
	return out
}

// TopStatesByProfit ranks states by summed profit, highest first, and keeps
// the first n. Equal profits keep state-label order.
func TopStatesByProfit(t *Table, n int) []models.StateProfit {
	keys, sums := sumBy(t,
		func(r *models.Record) string { return r.State },
		func(r *models.Record) float64 { return r.Profit })
	out := make([]models.StateProfit, len(keys))
	for i := range keys {
		out[i] = models.StateProfit{State: keys[i], Profit: sums[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Profit > out[j].Profit })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

const pairSep = "\x00"

// SalesByCategory sums sales per (category, sub-category) leaf, ordered by
// category then sub-category. Zero and negative totals are kept.
func SalesByCategory(t *Table) []models.CategorySales {
	keys, sums := sumBy(t,
		func(r *models.Record) string {
			if r.Category == "" || r.SubCategory == "" {
				return ""
			}
			return r.Category + pairSep + r.SubCategory
		},
		func(r *models.Record) float64 { return r.Sales })
	out := make([]models.CategorySales, len(keys))
	for i, k := range keys {
		cat, sub, _ := strings.Cut(k, pairSep)
		out[i] = models.CategorySales{Category: cat, SubCategory: sub, Sales: sums[i]}
	}
	return out
}

// DiscountVsProfit passes every row through as a scatter point.
func DiscountVsProfit(t *Table) []models.DiscountPoint {
	out := make([]models.DiscountPoint, 0, t.Len())
	t.Each(func(r *models.Record) {
		out = append(out, models.DiscountPoint{
			Discount:    r.Discount,
			Profit:      r.Profit,
			Sales:       r.Sales,
			Category:    r.Category,
			SubCategory: r.SubCategory,
			Region:      r.Region,
		})
	})
	return out
}

// SalesByShipMode sums sales per ship mode, ordered by label.
func SalesByShipMode(t *Table) []models.ShipModeSales {
	keys, sums := sumBy(t,
		func(r *models.Record) string { return r.ShipMode },
		func(r *models.Record) float64 { return r.Sales })
	out := make([]models.ShipModeSales, len(keys))
	for i := range keys {
		out[i] = models.ShipModeSales{ShipMode: keys[i], Sales: sums[i]}
	}
	return out
}

// ProfitHeatmap sums profit on a dense regions x segments grid. Both axes are
// de-duplicated and sorted; combinations with no rows are zero. Rows outside
// the axes are ignored.
func ProfitHeatmap(t *Table, regions, segments []string) models.Heatmap {
	h := models.Heatmap{
		Regions:  sortedUnique(regions),
		Segments: sortedUnique(segments),
	}
	ri := indexOf(h.Regions)
	si := indexOf(h.Segments)

	h.Profit = make([][]float64, len(h.Regions))
	for i := range h.Profit {
		h.Profit[i] = make([]float64, len(h.Segments))
	}

	t.Each(func(r *models.Record) {
		i, ok := ri[r.Region]
		if !ok {
			return
		}
		j, ok := si[r.Segment]
		if !ok {
			return
		}
		h.Profit[i][j] += r.Profit
	})
	return h
}

func sortedUnique(vals []string) []string {
	g := newGrouper[string]()
	for _, v := range vals {
		if v != "" {
			g.add(v, 0)
		}
	}
	keys, _ := g.sorted()
	return keys
}

func indexOf(vals []string) map[string]int {
	m := make(map[string]int, len(vals))
	for i, v := range vals {
		m[v] = i
	}
	return m
}
