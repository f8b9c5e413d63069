// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/query"
)

const (
	BookBorrowedText      = "Book borrowed successfully!"
	BorrowUnavailableText = "Book not found or not available for borrowing."
)

const (
	borrowQuantity = iota
	borrowDue
	borrowFieldCount
)

type borrowedMsg struct {
	err error
}

type borrow struct {
	e      *env
	bookID string
	inputs [borrowFieldCount]textinput.Model
	focus  int

	watch  *query.Watch[library.BookEnv]
	result query.Result[library.BookEnv]

	submitting bool
	err        error
}

func newBorrow(e *env, bookID string) *borrow {
	b := &borrow{e: e, bookID: bookID}
	for i := range b.inputs {
		b.inputs[i] = textinput.New()
		b.inputs[i].Prompt = "> "
	}
	b.inputs[borrowQuantity].CharLimit = 6
	b.inputs[borrowQuantity].SetValue("1")
	b.inputs[borrowDue].CharLimit = len(library.DueDateLayout)
	b.inputs[borrowDue].Placeholder = "YYYY-MM-DD"
	b.inputs[borrowDue].SetValue(library.Today().Format(library.DueDateLayout))
	return b
}

func (b *borrow) Init() tea.Cmd {
	b.watch = b.e.catalog.WatchBook(b.bookID)
	b.result = b.watch.Current()
	return tea.Batch(b.setFocus(borrowQuantity), listen(b.e, b.watch))
}

func (b *borrow) setFocus(to int) tea.Cmd {
	b.focus = (to + borrowFieldCount) % borrowFieldCount
	var cmd tea.Cmd
	for i := range b.inputs {
		if i == b.focus {
			cmd = b.inputs[i].Focus()
		} else {
			b.inputs[i].Blur()
		}
	}
	return cmd
}

func (b *borrow) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg[library.BookEnv]:
		if msg.from != b.watch {
			return nil
		}
		b.result = msg.result
		return listen(b.e, b.watch)

	case borrowedMsg:
		b.submitting = false
		b.err = msg.err
		if msg.err != nil {
			var ve *library.ValidationError
			if errors.As(msg.err, &ve) {
				return alert(library.InvalidQuantityTitle, ve.Message)
			}
			log.WithError(msg.err).Error("borrow failed")
			return fail("Failed to borrow book: " + api.Describe(msg.err))
		}
		return tea.Batch(notify(BookBorrowedText), navigate(PathBorrowSummary))

	case tea.KeyMsg:
		if b.submitting {
			return nil
		}
		switch {
		case key.Matches(msg, formKeyMap.Submit):
			return b.submit()
		case key.Matches(msg, enterKey):
			if b.focus == borrowFieldCount-1 {
				return b.submit()
			}
			return b.setFocus(b.focus + 1)
		case key.Matches(msg, formKeyMap.Next):
			return b.setFocus(b.focus + 1)
		case key.Matches(msg, formKeyMap.Prev):
			return b.setFocus(b.focus - 1)
		}
	}

	var cmd tea.Cmd
	b.inputs[b.focus], cmd = b.inputs[b.focus].Update(msg)
	return cmd
}

// submit checks the quantity against the loaded book. A bad quantity opens
// the dialog and nothing is sent.
func (b *borrow) submit() tea.Cmd {
	if !b.result.HasData {
		return fail("Book details not loaded. Please wait or refresh.")
	}
	book := b.result.Data.Data

	quantity, err := strconv.Atoi(strings.TrimSpace(b.inputs[borrowQuantity].Value()))
	if err != nil {
		quantity = 0
	}
	if err := library.ValidateBorrow(book, quantity); err != nil {
		return alert(library.InvalidQuantityTitle, err.Error())
	}

	due, err := library.ParseDueDate(b.inputs[borrowDue].Value())
	if err != nil {
		return alert("Invalid Due Date", err.Error())
	}

	b.submitting = true
	b.err = nil
	e := b.e
	in := api.BorrowInput{Book: book.ID, Quantity: quantity, DueDate: due}
	return func() tea.Msg {
		_, err := e.catalog.Borrow(e.ctx, book, in)
		return e.scope(borrowedMsg{err: err})
	}
}

func (b *borrow) View() string {
	r := b.result
	switch {
	case r.Loading():
		return b.e.loading()
	case !r.HasData && r.Err == nil:
		return errorStyle.Render(BorrowUnavailableText)
	case !r.HasData:
		return errorStyle.Render("Error loading book: " + api.Describe(r.Err))
	case b.submitting:
		return b.e.loading()
	}
	book := r.Data.Data

	var s strings.Builder
	s.WriteString(titleStyle.Render("Borrow Book: " + book.Title))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Book Title:") + " " + book.Title + "\n")
	s.WriteString(labelStyle.Render("Available Copies:") + " " + strconv.Itoa(book.Copies) + "\n\n")

	for i, label := range []string{"Quantity:", "Due Date:"} {
		if i == b.focus {
			s.WriteString(focusStyle.Render(label))
		} else {
			s.WriteString(labelStyle.Render(label))
		}
		s.WriteString("\n")
		s.WriteString(b.inputs[i].View())
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(buttonStyle.Render("ctrl+s Borrow Book"))

	if b.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(api.Describe(b.err)))
	}
	return s.String()
}

func (b *borrow) Keys() []key.Binding {
	return []key.Binding{formKeyMap.Next, formKeyMap.Prev, formKeyMap.Submit}
}

func (b *borrow) Typing() bool { return true }

func (b *borrow) Close() {
	b.watch.Close()
}
