// Package query implements the filter/sort/paginate view-model shared by the
// model list, the score table and the simulator picker.
//
// A State holds what the user asked for (named constraints, a name search,
// a sort and a page). A Spec describes how a record type exposes its fields.
// The same State can either be applied in memory (Spec.Apply) or serialized
// for a server that does the work itself (State.Encode); callers pick one per
// deployment and never mix them.
package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
)

// Op is the comparison a named constraint applies to its field.
type Op int

const (
	// Exact matches when the field equals the value.
	Exact Op = iota
	// Min matches when the field is >= the value.
	Min
	// Max matches when the field is <= the value.
	Max
)

// Param declares one named filter input, e.g. "minParams" is a Min bound on
// parameters_billions that the server knows as min_parameters.
type Param struct {
	Name  string
	Field string
	Op    Op
	Key   string
}

// Direction of a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort is the active sort field and direction.
type Sort struct {
	Field     string
	Direction Direction
}

// PageSizes are the only page sizes a State accepts.
var PageSizes = []int{10, 20, 50, 100}

// DefaultPageSize is the page size of a fresh State.
const DefaultPageSize = 20

// State is the transient, per-view filter/sort/pagination state.
type State struct {
	values      map[string]string
	params      map[string]Param
	order       []string
	fields      map[string]bool
	nameField   string
	defaultSort Sort

	Search   string
	Sort     Sort
	Page     int
	PageSize int
}

// Set stores the raw value of a named constraint. An empty value clears it.
// Numeric bounds must parse as numbers.
func (s *State) Set(name, raw string) error {
	p, ok := s.params[name]
	if !ok {
		return apperr.Userf("unknown filter %q", name)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		delete(s.values, name)
		s.Page = 1
		return nil
	}
	if p.Op == Min || p.Op == Max {
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return apperr.Userf("filter %s: %q is not a number", name, raw)
		}
	}
	s.values[name] = raw
	s.Page = 1
	return nil
}

// Get returns the raw value of a named constraint.
func (s *State) Get(name string) string { return s.values[name] }

// SetSearch sets the case-insensitive name query.
func (s *State) SetSearch(q string) {
	s.Search = q
	s.Page = 1
}

// Active returns the constraints that currently restrict results, in
// declaration order.
func (s *State) Active() []Constraint {
	var out []Constraint
	for _, name := range s.order {
		v, ok := s.values[name]
		if !ok || v == "" {
			continue
		}
		p := s.params[name]
		out = append(out, Constraint{Param: p, Value: v})
	}
	return out
}

// Params lists the declared filter inputs.
func (s *State) Params() []Param {
	out := make([]Param, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.params[name])
	}
	return out
}

// SetSort selects a sort explicitly.
func (s *State) SetSort(field string, dir Direction) error {
	if !s.fields[field] {
		return apperr.Userf("cannot sort by %q", field)
	}
	switch dir {
	case Ascending, Descending:
	default:
		return apperr.Userf("invalid sort direction %q (expected asc|desc)", dir)
	}
	s.Sort = Sort{Field: field, Direction: dir}
	return nil
}

// Toggle is a click on a column header: the active field flips from
// ascending to descending, anything else sorts ascending.
func (s *State) Toggle(field string) error {
	if !s.fields[field] {
		return apperr.Userf("cannot sort by %q", field)
	}
	dir := Ascending
	if s.Sort.Field == field && s.Sort.Direction == Ascending {
		dir = Descending
	}
	s.Sort = Sort{Field: field, Direction: dir}
	return nil
}

// SortFields lists the sortable field names.
func (s *State) SortFields() []string {
	out := make([]string, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Reset clears constraints and the search and restores the default sort.
// The page size is kept; the page goes back to 1.
func (s *State) Reset() {
	clear(s.values)
	s.Search = ""
	s.Sort = s.defaultSort
	s.Page = 1
}

// SetPageSize changes the page size and returns to the first page.
func (s *State) SetPageSize(n int) error {
	if !slices.Contains(PageSizes, n) {
		return apperr.Userf("invalid page size %d (expected one of 10|20|50|100)", n)
	}
	s.PageSize = n
	s.Page = 1
	return nil
}

// SetPage jumps to a 1-based page. Values below 1 are clamped to 1.
func (s *State) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Page = n
}

// CanPrev reports whether there is a previous page.
func (s *State) CanPrev() bool { return s.Page > 1 }

// CanNext reports whether there is a page after the current one given the
// total number of matching records.
func (s *State) CanNext(total int) bool { return s.Page < PageCount(total, s.PageSize) }

// Prev moves one page back unless already on the first page.
func (s *State) Prev() bool {
	if !s.CanPrev() {
		return false
	}
	s.Page--
	return true
}

// Next moves one page forward unless already on the last page.
func (s *State) Next(total int) bool {
	if !s.CanNext(total) {
		return false
	}
	s.Page++
	return true
}

// Clone returns an independent copy, suitable for handing to a request while
// the user keeps editing the original.
func (s *State) Clone() *State {
	c := *s
	c.values = make(map[string]string, len(s.values))
	for k, v := range s.values {
		c.values[k] = v
	}
	return &c
}

// Encode serializes the state as the query string understood by the
// server-delegated list endpoint.
func (s *State) Encode() url.Values {
	q := url.Values{}
	if strings.TrimSpace(s.Search) != "" {
		q.Set(s.nameField, strings.TrimSpace(s.Search))
	}
	for _, c := range s.Active() {
		key := c.Param.Key
		if key == "" {
			key = c.Param.Name
		}
		q.Set(key, c.Value)
	}
	if s.Sort.Field != "" {
		q.Set("sort_by", s.Sort.Field)
		q.Set("sort_order", string(s.Sort.Direction))
	}
	q.Set("page", strconv.Itoa(max(s.Page, 1)))
	q.Set("page_size", strconv.Itoa(s.PageSize))
	return q
}

func (s *State) String() string {
	return fmt.Sprintf("search=%q filters=%d sort=%s:%s page=%d/%d",
		s.Search, len(s.Active()), s.Sort.Field, s.Sort.Direction, s.Page, s.PageSize)
}

// Constraint is an active named filter with its raw value.
type Constraint struct {
	Param Param
	Value string
}

// PageCount is ceil(total / size); zero when there is nothing to show.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
