package engine

import (
	"time"

	"superstore/internal/models"
)

// Table is an ordered, read-only set of records. Filtering never mutates a
// Table; it builds a new one.
type Table struct {
	rows []models.Record

	// Dictionaries of non-missing values in first-appearance order.
	regionDict   []string
	segmentDict  []string
	categoryDict []string

	minDate time.Time
	maxDate time.Time
}

// NewTable takes ownership of rows. Callers must not modify the slice afterwards.
func NewTable(rows []models.Record) *Table {
	t := &Table{rows: rows}
	t.regionDict = distinct(rows, func(r *models.Record) string { return r.Region })
	t.segmentDict = distinct(rows, func(r *models.Record) string { return r.Segment })
	t.categoryDict = distinct(rows, func(r *models.Record) string { return r.Category })

	for i := range rows {
		d := rows[i].OrderDate
		if i == 0 || d.Before(t.minDate) {
			t.minDate = d
		}
		if i == 0 || d.After(t.maxDate) {
			t.maxDate = d
		}
	}
	return t
}

func distinct(rows []models.Record, field func(*models.Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range rows {
		v := field(&rows[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of the i-th record.
func (t *Table) Row(i int) models.Record { return t.rows[i] }

// Rows returns a copy of all records in order.
func (t *Table) Rows() []models.Record {
	out := make([]models.Record, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every record in order. fn must not retain the pointer.
func (t *Table) Each(fn func(r *models.Record)) {
	for i := range t.rows {
		fn(&t.rows[i])
	}
}

func (t *Table) Regions() []string    { return clone(t.regionDict) }
func (t *Table) Segments() []string   { return clone(t.segmentDict) }
func (t *Table) Categories() []string { return clone(t.categoryDict) }

// DateBounds returns the earliest and latest order dates. ok is false for an
// empty table.
func (t *Table) DateBounds() (min, max time.Time, ok bool) {
	if len(t.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.minDate, t.maxDate, true
}

// Options describes the values the filter controls offer by default.
func (t *Table) Options() models.FilterOptions {
	return models.FilterOptions{
		Regions:    t.Regions(),
		Segments:   t.Segments(),
		Categories: t.Categories(),
		MinDate:    t.minDate,
		MaxDate:    t.maxDate,
		Rows:       len(t.rows),
	}
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
