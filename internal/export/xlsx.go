package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"superstore/internal/dashboard"
	"superstore/internal/models"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// Workbook lays out every derived view of the selection on its own sheet.
// The caller closes the returned file.
func Workbook(sel dashboard.Selection, opts dashboard.Options) (*excelize.File, error) {
	list, err := sheets(sel, opts)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	for i, s := range list {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeRows(f, s); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook renders the workbook straight to w.
func WriteWorkbook(w io.Writer, sel dashboard.Selection, opts dashboard.Options) error {
	f, err := Workbook(sel, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, s sheet) error {
	all := append([][]any{s.header}, s.rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheets(sel dashboard.Selection, opts dashboard.Options) ([]sheet, error) {
	var out []sheet
	for _, id := range dashboard.Views() {
		p, err := dashboard.BuildView(sel, id, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, toSheet(p))
	}
	return out, nil
}

var sheetNames = map[string]string{
	dashboard.ViewKPIs:           "KPIs",
	dashboard.ViewRegionSales:    "Sales by Region",
	dashboard.ViewYearlySales:    "Yearly Sales",
	dashboard.ViewTopStates:      "Top States",
	dashboard.ViewCategorySales:  "Category Sales",
	dashboard.ViewDiscountProfit: "Discount vs Profit",
	dashboard.ViewShipModeSales:  "Ship Mode",
	dashboard.ViewProfitHeatmap:  "Profit Heatmap",
}

func toSheet(p dashboard.Panel) sheet {
	s := sheet{name: sheetNames[p.ID]}
	switch d := p.Data.(type) {
	case dashboard.KPIBlock:
		s.header = []any{"Metric", "Value", "Display"}
		for _, c := range d.Cards {
			var v any = ""
			if c.Value != nil {
				v = *c.Value
			}
			s.rows = append(s.rows, []any{c.Label, v, c.Text})
		}
	case []models.RegionSales:
		s.header = []any{"Region", "Sales"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.Region, r.Sales})
		}
	case []models.YearSales:
		s.header = []any{"Year", "Sales"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.Year, r.Sales})
		}
	case []models.StateProfit:
		s.header = []any{"State", "Profit"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.State, r.Profit})
		}
	case []models.CategorySales:
		s.header = []any{"Category", "Sub-Category", "Sales"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.Category, r.SubCategory, r.Sales})
		}
	case []models.DiscountPoint:
		s.header = []any{"Discount", "Profit", "Sales", "Category", "Sub-Category", "Region"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.Discount, r.Profit, r.Sales, r.Category, r.SubCategory, r.Region})
		}
	case []models.ShipModeSales:
		s.header = []any{"Ship Mode", "Sales"}
		for _, r := range d {
			s.rows = append(s.rows, []any{r.ShipMode, r.Sales})
		}
	case models.Heatmap:
		s.header = append([]any{"Region"}, toAny(d.Segments)...)
		for i, region := range d.Regions {
			row := []any{region}
			for _, v := range d.Profit[i] {
				row = append(row, v)
			}
			s.rows = append(s.rows, row)
		}
	}
	return s
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
