package engine

import (
	"time"

	"superstore/internal/models"
)

// Predicate is a conjunction of set membership on region, segment and
// category plus an inclusive order-date range.
//
// A nil set means every value present in the table. A non-nil empty set
// matches nothing. Rows whose value is missing never match a set, which is
// the same as restricting to the table's distinct non-missing values.
// A zero Start or End leaves that side of the range open.
type Predicate struct {
	Regions    []string
	Segments   []string
	Categories []string
	Start      time.Time
	End        time.Time
}

// DefaultPredicate selects every distinct value and the table's full date span.
func DefaultPredicate(t *Table) Predicate {
	p := Predicate{
		Regions:    t.Regions(),
		Segments:   t.Segments(),
		Categories: t.Categories(),
	}
	if min, max, ok := t.DateBounds(); ok {
		p.Start, p.End = min, max
	}
	return p
}

// InvalidRange reports whether Start falls after End.
func (p Predicate) InvalidRange() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && dateOnly(p.Start).After(dateOnly(p.End))
}

// Resolve replaces nil sets with the table's distinct values, keeping the
// caller's order otherwise.
func (p Predicate) Resolve(t *Table) Predicate {
	if p.Regions == nil {
		p.Regions = t.Regions()
	}
	if p.Segments == nil {
		p.Segments = t.Segments()
	}
	if p.Categories == nil {
		p.Categories = t.Categories()
	}
	return p
}

type valueSet map[string]struct{}

func newValueSet(vals []string) valueSet {
	if vals == nil {
		return nil
	}
	s := make(valueSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s valueSet) admits(v string) bool {
	if v == "" {
		return false
	}
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

type matcher struct {
	regions, segments, categories valueSet
	start, end                    time.Time
	never                         bool
}

func (p Predicate) matcher() matcher {
	m := matcher{
		regions:    newValueSet(p.Regions),
		segments:   newValueSet(p.Segments),
		categories: newValueSet(p.Categories),
		never:      p.InvalidRange(),
	}
	if !p.Start.IsZero() {
		m.start = dateOnly(p.Start)
	}
	if !p.End.IsZero() {
		m.end = dateOnly(p.End)
	}
	return m
}

func (m matcher) match(r *models.Record) bool {
	if m.never {
		return false
	}
	if !m.regions.admits(r.Region) || !m.segments.admits(r.Segment) || !m.categories.admits(r.Category) {
		return false
	}
	d := dateOnly(r.OrderDate)
	if !m.start.IsZero() && d.Before(m.start) {
		return false
	}
	if !m.end.IsZero() && d.After(m.end) {
		return false
	}
	return true
}

// Matches reports whether r satisfies every conjunct of p.
func (p Predicate) Matches(r models.Record) bool {
	return p.matcher().match(&r)
}

// ApplyFilter returns a new table holding the rows of t that satisfy p, in
// their original order. t is left untouched. An empty result is valid.
func ApplyFilter(t *Table, p Predicate) *Table {
	m := p.matcher()
	rows := make([]models.Record, 0, t.Len())
	t.Each(func(r *models.Record) {
		if m.match(r) {
			rows = append(rows, *r)
		}
	})
	return NewTable(rows)
}

func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
