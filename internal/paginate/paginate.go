// Package paginate splits an ordered result set into fixed-size pages.
package paginate

import (
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used by the public listings.
const DefaultPerPage = 5

// Paginator knows the size of a result set and how many items fit on a page.
type Paginator struct {
	Count   int
	PerPage int
}

// New returns a paginator over count items. A non-positive perPage falls
// back to DefaultPerPage.
func New(count, perPage int) *Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages is always at least 1, an empty set has one empty page.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Page resolves a raw page parameter leniently: anything that is not an
// integer yields the first page, and numbers outside 1..NumPages yield the
// last page.
func (p *Paginator) Page(raw string) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return p.page(1)
	}
	if n < 1 || n > p.NumPages() {
		return p.page(p.NumPages())
	}
	return p.page(n)
}

func (p *Paginator) page(n int) Page {
	return Page{Number: n, NumPages: p.NumPages(), PerPage: p.PerPage, Count: p.Count}
}

// Page describes one page of a paginated result set.
type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int
}

// Offset is the number of items before this page.
func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.PerPage
}

// Limit is the maximum number of items on this page.
func (pg Page) Limit() int {
	return pg.PerPage
}

func (pg Page) HasNext() bool {
	return pg.Number < pg.NumPages
}

func (pg Page) HasPrevious() bool {
	return pg.Number > 1
}

func (pg Page) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}

func (pg Page) NextNumber() int {
	return pg.Number + 1
}

func (pg Page) PreviousNumber() int {
	return pg.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, or 0
// when the result set is empty.
func (pg Page) StartIndex() int {
	if pg.Count == 0 {
		return 0
	}
	return pg.Offset() + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (pg Page) EndIndex() int {
	if pg.Number == pg.NumPages {
		return pg.Count
	}
	return pg.Number * pg.PerPage
}
