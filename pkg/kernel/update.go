package kernel

import (
	"fmt"
	"strings"
)

// UpdateBuilder accumulates "column = $n" SET fragments for a dynamic
// UPDATE statement, the pattern every repository's partial-update method
// (PATCH-style) otherwise hand-rolls.
type UpdateBuilder struct {
	sets []string
	args []interface{}
}

// NewUpdateBuilder starts an update that always bumps updated_at.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{sets: []string{"updated_at = now()"}}
}

// Set adds "column = $n" when value is non-nil, so callers can pass
// optional PATCH fields straight through without pre-filtering.
func (u *UpdateBuilder) Set(column string, value interface{}) *UpdateBuilder {
	if value == nil {
		return u
	}
	if p, ok := value.(*string); ok && p == nil {
		return u
	}
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
	return u
}

// SetIfNonEmpty adds "column = $n" only when value is a non-empty string.
func (u *UpdateBuilder) SetIfNonEmpty(column, value string) *UpdateBuilder {
	if value == "" {
		return u
	}
	return u.Set(column, value)
}

// IsEmpty reports whether no field besides updated_at was set, meaning
// the caller's PATCH body had nothing to apply.
func (u *UpdateBuilder) IsEmpty() bool {
	return len(u.sets) <= 1
}

// Build returns the "SET ..." fragment and its args, plus the next
// available placeholder index for a trailing WHERE id = $n clause.
func (u *UpdateBuilder) Build() (setClause string, args []interface{}, nextPlaceholder int) {
	return strings.Join(u.sets, ", "), u.args, len(u.args) + 1
}
