// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/query"
)

const NoBorrowsText = "No books have been borrowed yet."

type summary struct {
	e      *env
	watch  *query.Watch[library.Summary]
	result query.Result[library.Summary]
}

func newSummary(e *env) *summary {
	return &summary{e: e}
}

func (s *summary) Init() tea.Cmd {
	s.watch = s.e.catalog.WatchSummary()
	s.result = s.watch.Current()
	return listen(s.e, s.watch)
}

func (s *summary) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(resultMsg[library.Summary]); ok && msg.from == s.watch {
		s.result = msg.result
		return listen(s.e, s.watch)
	}
	return nil
}

func (s *summary) View() string {
	r := s.result
	switch {
	case r.Loading():
		return s.e.loading()
	case r.Err != nil && !r.HasData:
		return errorStyle.Render("Error loading borrow summary: " + api.Describe(r.Err))
	case len(r.Data.Data) == 0:
		return NoBorrowsText
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Book Title", "ISBN", "Total Quantity Borrowed").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var total int64
	for _, item := range r.Data.Data {
		t.Row(item.Book.Title, item.Book.ISBN, humanize.Comma(int64(item.TotalQuantity)))
		total += int64(item.TotalQuantity)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Borrowed Books Summary"))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Total borrowed: " + humanize.Comma(total)))
	return b.String()
}

func (s *summary) Keys() []key.Binding { return nil }

func (s *summary) Typing() bool { return false }

func (s *summary) Close() {
	s.watch.Close()
}
