// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/query"
)

const NoDescriptionText = "No description available."

var (
	detailsEdit   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	detailsBorrow = key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "borrow"))
)

type details struct {
	e      *env
	id     string
	watch  *query.Watch[library.BookEnv]
	result query.Result[library.BookEnv]
}

func newDetails(e *env, id string) *details {
	return &details{e: e, id: id}
}

func (d *details) Init() tea.Cmd {
	d.watch = d.e.catalog.WatchBook(d.id)
	d.result = d.watch.Current()
	return listen(d.e, d.watch)
}

func (d *details) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg[library.BookEnv]:
		if msg.from != d.watch {
			return nil
		}
		d.result = msg.result
		return listen(d.e, d.watch)

	case tea.KeyMsg:
		if !d.result.HasData {
			return nil
		}
		switch {
		case key.Matches(msg, detailsEdit):
			return navigate("/edit-book/" + d.id)
		case key.Matches(msg, detailsBorrow):
			return navigate("/borrow/" + d.id)
		}
	}
	return nil
}

func (d *details) View() string {
	r := d.result
	if r.Loading() {
		return d.e.loading()
	}
	if r.Err != nil || !r.HasData {
		return errorStyle.Render(titleStyle.Render("Book Not Found or Error") + "\n" +
			"Could not load book details. Please check the book ID or try again later.\n" +
			api.Describe(r.Err) + "\n\n") +
			mutedStyle.Render("Press 2 to go back to the book list.")
	}

	book := r.Data.Data
	description := book.Description
	if description == "" {
		description = NoDescriptionText
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Book Details: " + book.Title))
	b.WriteString("\n")
	for _, f := range []struct{ label, value string }{
		{"Title", book.Title},
		{"Author", book.Author},
		{"Genre", string(book.Genre)},
		{"ISBN", book.ISBN},
		{"Copies Available", fmt.Sprint(book.Copies)},
		{"Currently Available", yesNo(book.Available)},
		{"Description", description},
	} {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(f.label+":"), f.value)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Created At: " + when(book.CreatedAt)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Last Updated: " + when(book.UpdatedAt)))
	return b.String()
}

// when renders t as a date plus a relative time, "Jan 2, 2006 (3 days ago)".
func when(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format("Jan 2, 2006"), humanize.Time(t))
}

func (d *details) Keys() []key.Binding {
	return []key.Binding{detailsEdit, detailsBorrow}
}

func (d *details) Typing() bool { return false }

func (d *details) Close() {
	d.watch.Close()
}
