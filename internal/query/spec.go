package query

import (
	"slices"
	"strconv"
	"strings"
)

// Getter reads one field from a record.
type Getter[R any] func(R) Value

// Spec describes how records of type R expose their fields to filtering and
// sorting. Fields doubles as the set of sortable columns.
type Spec[R any] struct {
	NameField   string
	Fields      map[string]Getter[R]
	Params      []Param
	DefaultSort Sort
}

// Page is one page of results plus the size of the full filtered set.
type Page[R any] struct {
	Items    []R
	Total    int
	Page     int
	PageSize int
}

// PageCount is the number of pages the full filtered set spans.
func (p Page[R]) PageCount() int { return PageCount(p.Total, p.PageSize) }

// NewState returns a fresh State for this record type: no constraints, no
// search, the default sort, page 1 of DefaultPageSize.
func (sp Spec[R]) NewState() *State {
	st := &State{
		values:      map[string]string{},
		params:      make(map[string]Param, len(sp.Params)),
		fields:      make(map[string]bool, len(sp.Fields)),
		nameField:   sp.NameField,
		defaultSort: sp.DefaultSort,
		Sort:        sp.DefaultSort,
		Page:        1,
		PageSize:    DefaultPageSize,
	}
	for _, p := range sp.Params {
		st.params[p.Name] = p
		st.order = append(st.order, p.Name)
	}
	for f := range sp.Fields {
		st.fields[f] = true
	}
	return st
}

// Matches reports whether r satisfies the search and every active
// constraint of st.
func (sp Spec[R]) Matches(r R, st *State) bool {
	if q := strings.TrimSpace(st.Search); q != "" {
		get, ok := sp.Fields[sp.NameField]
		if !ok {
			return false
		}
		name, _ := get(r).Str()
		if !strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
			return false
		}
	}
	for _, c := range st.Active() {
		get, ok := sp.Fields[c.Param.Field]
		if !ok {
			return false
		}
		if !satisfies(get(r), c) {
			return false
		}
	}
	return true
}

func satisfies(v Value, c Constraint) bool {
	switch v.Kind() {
	case KindNumber:
		want, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		got, _ := v.Float()
		switch c.Param.Op {
		case Min:
			return got >= want
		case Max:
			return got <= want
		default:
			return got == want
		}
	case KindString:
		got, _ := v.Str()
		return c.Param.Op == Exact && got == c.Value
	default:
		return false
	}
}

// Filter keeps the records matching st, preserving input order.
func (sp Spec[R]) Filter(records []R, st *State) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if sp.Matches(r, st) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records in place by the active sort of st. The sort is stable,
// so ties keep their input order.
func (sp Spec[R]) Sort(records []R, st *State) {
	get, ok := sp.Fields[st.Sort.Field]
	if !ok {
		return
	}
	desc := st.Sort.Direction == Descending
	slices.SortStableFunc(records, func(a, b R) int {
		c := get(a).Compare(get(b))
		if desc {
			return -c
		}
		return c
	})
}

// Apply filters, sorts and slices records according to st. The input slice
// is not modified. A page past the end yields no items but the real total.
func (sp Spec[R]) Apply(records []R, st *State) Page[R] {
	filtered := sp.Filter(records, st)
	sp.Sort(filtered, st)

	page := max(st.Page, 1)
	size := st.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	out := Page[R]{Total: len(filtered), Page: page, PageSize: size}
	start := (page - 1) * size
	if start >= len(filtered) {
		out.Items = []R{}
		return out
	}
	end := min(start+size, len(filtered))
	out.Items = filtered[start:end]
	return out
}
