// Package kernel factors out the repository-layer primitives every
// tenant-schema module in gymflow repeats: filter building, pagination,
// soft-delete predicates, and dynamic-update statement construction. It
// generalizes the hand-rolled SQL pattern the teacher repeats per
// repository (see internal/staff/repository/employee.go) into one shared
// helper set.
package kernel

// Page describes a requested page of results. Page is 1-indexed.
type Page struct {
	Number  int
	PerPage int
}

// Normalize clamps Page to sane bounds, the way every List() handler in
// the teacher's repositories does inline before building LIMIT/OFFSET.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
	return p
}

// Offset returns the SQL OFFSET for this page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.PerPage
}

// Limit returns the SQL LIMIT for this page.
func (p Page) Limit() int {
	return p.Normalize().PerPage
}

// Result wraps a page of rows with the total row count across all pages.
type Result struct {
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// NewResult computes TotalPages from a total count and the requesting page.
func NewResult(total int64, p Page) Result {
	n := p.Normalize()
	totalPages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		totalPages++
	}
	return Result{Total: total, Page: n.Number, PerPage: n.PerPage, TotalPages: totalPages}
}
