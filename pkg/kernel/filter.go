package kernel

import (
	"fmt"
	"strings"
)

// FilterBuilder accumulates WHERE clause fragments and their positional
// arguments, so every List() repository method builds its query the same
// way instead of hand-concatenating strings per-module.
type FilterBuilder struct {
	clauses []string
	args    []interface{}
}

// NewFilterBuilder starts a filter that always applies the soft-delete
// predicate (deleted_at IS NULL) unless IncludeDeleted is called.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{clauses: []string{"deleted_at IS NULL"}}
}

// IncludeDeleted drops the default soft-delete predicate, used by admin
// "show archived" views.
func (f *FilterBuilder) IncludeDeleted() *FilterBuilder {
	filtered := f.clauses[:0]
	for _, c := range f.clauses {
		if c != "deleted_at IS NULL" {
			filtered = append(filtered, c)
		}
	}
	f.clauses = filtered
	return f
}

// Eq adds "column = $n" when value is non-empty/non-zero; a zero value is
// treated as "no filter requested", matching the optional-query-param
// convention every handler in the teacher repo uses.
func (f *FilterBuilder) Eq(column string, value interface{}) *FilterBuilder {
	if isZero(value) {
		return f
	}
	f.args = append(f.args, value)
	f.clauses = append(f.clauses, fmt.Sprintf("%s = $%d", column, len(f.args)))
	return f
}

// In adds "column = ANY($n)" for a non-empty slice filter.
func (f *FilterBuilder) In(column string, values []string) *FilterBuilder {
	if len(values) == 0 {
		return f
	}
	f.args = append(f.args, values)
	f.clauses = append(f.clauses, fmt.Sprintf("%s = ANY($%d)", column, len(f.args)))
	return f
}

// ILike adds a case-insensitive substring filter for free-text search.
func (f *FilterBuilder) ILike(column, value string) *FilterBuilder {
	if value == "" {
		return f
	}
	f.args = append(f.args, "%"+value+"%")
	f.clauses = append(f.clauses, fmt.Sprintf("%s ILIKE $%d", column, len(f.args)))
	return f
}

// Raw appends a pre-built clause with its arguments, for filters that
// don't fit the Eq/In/ILike shape (date ranges, computed columns).
func (f *FilterBuilder) Raw(clause string, args ...interface{}) *FilterBuilder {
	offset := len(f.args)
	for i := len(args) - 1; i >= 0; i-- {
		clause = replaceNth(clause, "$", i+1, offset+i+1)
	}
	f.args = append(f.args, args...)
	f.clauses = append(f.clauses, clause)
	return f
}

// Build returns the WHERE clause (without the "WHERE" keyword) and its
// positional arguments, in the order they were added.
func (f *FilterBuilder) Build() (string, []interface{}) {
	if len(f.clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(f.clauses, " AND "), f.args
}

// Args returns the positional arguments allocated so far; its length is
// the last placeholder number, so callers that need to append ORDER
// BY/LIMIT/OFFSET placeholders after the WHERE clause use it to continue
// the positional sequence.
func (f *FilterBuilder) Args() []interface{} {
	return f.args
}

func isZero(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case nil:
		return true
	default:
		return false
	}
}

// replaceNth rewrites every "$i" placeholder marker in a Raw() clause
// template (written as "$1", "$2", …) to "$newPos", its final position in
// the combined argument list. Raw calls it from the highest i down so a
// rewritten marker is never rewritten again.
func replaceNth(clause, marker string, i, newPos int) string {
	old := fmt.Sprintf("%s%d", marker, i)
	new := fmt.Sprintf("%s%d", marker, newPos)
	return strings.ReplaceAll(clause, old, new)
}
