// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package pager tracks the page the book list is on.
package pager

import (
	"github.com/staranto/libctl/internal/api"
)

// WindowSize is how many page numbers the list footer shows at once.
const WindowSize = 5

type Pager struct {
	Page       int
	Limit      int
	TotalItems int
	TotalPages int
}

// New starts at the first page.
func New(limit int) *Pager {
	args := api.ListBooksArgs{Limit: limit}.Normalize()
	return &Pager{Page: args.Page, Limit: args.Limit}
}

// Args is the list request for the current page.
func (p *Pager) Args() api.ListBooksArgs {
	return api.ListBooksArgs{Page: p.Page, Limit: p.Limit}.Normalize()
}

// Update takes the totals from a response. The current page is left alone.
func (p *Pager) Update(pg *api.Pagination) {
	if pg == nil {
		return
	}
	p.TotalItems = pg.TotalItems
	p.TotalPages = pg.TotalPages
}

// Last is the highest valid page. An empty catalog still has page 1.
func (p *Pager) Last() int {
	return max(p.TotalPages, 1)
}

func (p *Pager) CanPrev() bool {
	return p.Page > 1
}

func (p *Pager) CanNext() bool {
	return p.Page < p.Last()
}

func (p *Pager) Prev() bool {
	return p.Goto(p.Page - 1)
}

func (p *Pager) Next() bool {
	return p.Goto(p.Page + 1)
}

// Goto moves to page n and reports whether the page changed. Out of range
// pages are ignored.
func (p *Pager) Goto(n int) bool {
	if n < 1 || n > p.Last() || n == p.Page {
		return false
	}
	p.Page = n
	return true
}

// Window is the run of page numbers to show, centred on the current page
// where possible, with flags for whether pages are hidden on either side.
type Window struct {
	Pages    []int
	Leading  bool
	Trailing bool
}

func (p *Pager) Window() Window {
	last := p.Last()
	start := max(1, p.Page-WindowSize/2)
	end := min(last, start+WindowSize-1)
	start = max(1, end-WindowSize+1)

	w := Window{Leading: start > 1, Trailing: end < last}
	for n := start; n <= end; n++ {
		w.Pages = append(w.Pages, n)
	}
	return w
}

// AfterDelete is called once a book on the current page was deleted. When
// that emptied a page past the first, it steps back one page and reports
// true.
func (p *Pager) AfterDelete(rowsOnPage int) bool {
	if p.Page <= 1 || rowsOnPage != 1 {
		return false
	}
	if p.TotalItems-1 > (p.Page-1)*p.Limit {
		return false
	}
	p.Page--
	p.TotalItems--
	return true
}
