// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/config"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/pager"
	"github.com/staranto/libctl/internal/query"
)

// Texts of the list screen.
const (
	NoBooksText       = "No books found. Please add some!"
	NoMoreBooksText   = "No more books on this page."
	BookDeletedText   = "Book deleted successfully!"
	DeleteFailedText  = "Failed to delete book!"
	ConfirmDeleteText = "You won't be able to revert this!"
)

type listKeys struct {
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	First  key.Binding
	Last   key.Binding
	Open   key.Binding
	Edit   key.Binding
	Borrow key.Binding
	Delete key.Binding
}

var listKeyMap = listKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Prev:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "previous page")),
	Next:   key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
	First:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
	Last:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Borrow: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "borrow")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
}

// deletedMsg reports a delete started from the list. before is the pager
// as it was when the delete was confirmed and rows the rows then shown.
type deletedMsg struct {
	before pager.Pager
	rows   int
	err    error
}

type list struct {
	e      *env
	pager  *pager.Pager
	watch  *query.Watch[library.BooksPage]
	result query.Result[library.BooksPage]
	cursor int
}

func newList(e *env) *list {
	limit, err := config.GetInt("limit", api.DefaultLimit)
	if err != nil {
		log.WithError(err).Warn("ignoring configured limit")
		limit = api.DefaultLimit
	}
	return &list{e: e, pager: pager.New(limit)}
}

func (l *list) Init() tea.Cmd {
	return l.subscribe()
}

// subscribe swaps the watch for one on the current page.
func (l *list) subscribe() tea.Cmd {
	l.watch.Close()
	l.watch = l.e.catalog.WatchBooks(l.pager.Args())
	l.take(l.watch.Current())
	return listen(l.e, l.watch)
}

func (l *list) take(r query.Result[library.BooksPage]) {
	l.result = r
	if r.HasData {
		l.pager.Update(r.Data.Pagination)
	}
	l.cursor = max(0, min(l.cursor, len(l.rows())-1))
}

func (l *list) rows() []api.Book {
	if !l.result.HasData {
		return nil
	}
	return l.result.Data.Data
}

func (l *list) selected() (api.Book, bool) {
	rows := l.rows()
	if l.cursor < 0 || l.cursor >= len(rows) {
		return api.Book{}, false
	}
	return rows[l.cursor], true
}

func (l *list) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg[library.BooksPage]:
		if msg.from != l.watch {
			return nil
		}
		l.take(msg.result)
		return listen(l.e, l.watch)

	case deletedMsg:
		if msg.err != nil {
			log.WithError(msg.err).Error("delete failed")
			return fail(DeleteFailedText)
		}
		before := msg.before
		if before.Page == l.pager.Page && before.AfterDelete(msg.rows) {
			l.pager.Page = before.Page
			return tea.Batch(notify(BookDeletedText), l.subscribe())
		}
		return notify(BookDeletedText)

	case tea.KeyMsg:
		return l.handleKey(msg)
	}
	return nil
}

func (l *list) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeyMap.Up):
		l.cursor = max(0, l.cursor-1)
	case key.Matches(msg, listKeyMap.Down):
		l.cursor = max(0, min(l.cursor+1, len(l.rows())-1))
	case key.Matches(msg, listKeyMap.Prev):
		if l.pager.Prev() {
			l.cursor = 0
			return l.subscribe()
		}
	case key.Matches(msg, listKeyMap.Next):
		if l.pager.Next() {
			l.cursor = 0
			return l.subscribe()
		}
	case key.Matches(msg, listKeyMap.First):
		if l.pager.Goto(1) {
			l.cursor = 0
			return l.subscribe()
		}
	case key.Matches(msg, listKeyMap.Last):
		if l.pager.Goto(l.pager.Last()) {
			l.cursor = 0
			return l.subscribe()
		}
	case key.Matches(msg, listKeyMap.Open):
		if b, ok := l.selected(); ok {
			return navigate("/books/" + b.ID)
		}
	case key.Matches(msg, listKeyMap.Edit):
		if b, ok := l.selected(); ok {
			return navigate("/edit-book/" + b.ID)
		}
	case key.Matches(msg, listKeyMap.Borrow):
		if b, ok := l.selected(); ok {
			return navigate("/borrow/" + b.ID)
		}
	case key.Matches(msg, listKeyMap.Delete):
		if b, ok := l.selected(); ok {
			return confirm("Are you sure?", ConfirmDeleteText, "Yes, delete it!", l.delete(b.ID))
		}
	}
	return nil
}

// delete snapshots the pager now, before the refetch the delete triggers
// can change its totals.
func (l *list) delete(id string) tea.Cmd {
	before := *l.pager
	rows := len(l.rows())
	e := l.e
	return func() tea.Msg {
		err := e.catalog.Delete(e.ctx, id)
		return e.scope(deletedMsg{before: before, rows: rows, err: err})
	}
}

func (l *list) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("All Books"))
	b.WriteString("\n")

	r := l.result
	switch {
	case r.Loading():
		b.WriteString(l.e.loading())
		return b.String()
	case r.Err != nil && !r.HasData:
		b.WriteString(errorStyle.Render("Error loading books: " + api.Describe(r.Err)))
		return b.String()
	}

	rows := l.rows()
	if len(rows) == 0 {
		if l.pager.Page == 1 {
			b.WriteString(NoBooksText)
		} else {
			b.WriteString(NoMoreBooksText)
		}
	} else {
		b.WriteString(l.table(rows))
	}

	if r.Err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error loading books: " + api.Describe(r.Err)))
	}

	b.WriteString("\n\n")
	b.WriteString(l.footer())
	return b.String()
}

func (l *list) table(rows []api.Book) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Title", "Author", "Genre", "ISBN", "Copies", "Available").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == l.cursor:
				return selectedStyle
			default:
				return cellStyle
			}
		})

	for _, book := range rows {
		t.Row(book.Title, book.Author, string(book.Genre), book.ISBN,
			strconv.Itoa(book.Copies), yesNo(book.Available))
	}
	return t.Render()
}

func (l *list) footer() string {
	p := l.pager
	w := p.Window()

	var nums []string
	if w.Leading {
		nums = append(nums, "…")
	}
	for _, n := range w.Pages {
		if n == p.Page {
			nums = append(nums, focusStyle.Render(fmt.Sprintf("[%d]", n)))
		} else {
			nums = append(nums, strconv.Itoa(n))
		}
	}
	if w.Trailing {
		nums = append(nums, "…")
	}

	prev, next := mutedStyle.Render("‹ Prev"), mutedStyle.Render("Next ›")
	if p.CanPrev() {
		prev = "‹ Prev"
	}
	if p.CanNext() {
		next = "Next ›"
	}

	return fmt.Sprintf("%s  %s  %s\n%s", prev, strings.Join(nums, " "), next,
		mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d total items)", p.Page, p.Last(), p.TotalItems)))
}

func (l *list) Keys() []key.Binding {
	k := listKeyMap
	return []key.Binding{k.Up, k.Down, k.Prev, k.Next, k.Open, k.Edit, k.Borrow, k.Delete}
}

func (l *list) Typing() bool { return false }

func (l *list) Close() {
	l.watch.Close()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
