// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
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

type field int

const (
	fieldTitle field = iota
	fieldAuthor
	fieldGenre
	fieldISBN
	fieldDescription
	fieldCopies
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Author", "Genre", "ISBN", "Description", "Copies"}

type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Genre  key.Binding
	Submit key.Binding
}

var formKeyMap = formKeys{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
	Genre:  key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "change genre")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
}

var enterKey = key.NewBinding(key.WithKeys("enter"))

type savedMsg struct {
	err error
}

// form is both the create and the edit screen. id is empty for create.
type form struct {
	e      *env
	id     string
	inputs [fieldCount]textinput.Model
	genre  api.Genre
	focus  field

	watch  *query.Watch[library.BookEnv]
	result query.Result[library.BookEnv]
	filled bool

	submitting bool
	err        error
}

func newForm(e *env, id string) *form {
	f := &form{e: e, id: id}
	for i := range f.inputs {
		f.inputs[i] = textinput.New()
		f.inputs[i].Prompt = "> "
		f.inputs[i].CharLimit = 256
	}
	f.inputs[fieldCopies].CharLimit = 6
	f.inputs[fieldCopies].Validate = digitsOnly
	return f
}

func newCreateForm(e *env) *form {
	f := newForm(e, "")
	f.inputs[fieldCopies].SetValue("0")
	return f
}

func newEditForm(e *env, id string) *form {
	return newForm(e, id)
}

func (f *form) editing() bool {
	return f.id != ""
}

func (f *form) Init() tea.Cmd {
	cmds := []tea.Cmd{f.setFocus(fieldTitle)}
	if f.editing() {
		f.watch = f.e.catalog.WatchBook(f.id)
		f.take(f.watch.Current())
		cmds = append(cmds, listen(f.e, f.watch))
	}
	return tea.Batch(cmds...)
}

// take prefills the inputs from the first book that arrives. Later
// refetches leave what the user typed alone.
func (f *form) take(r query.Result[library.BookEnv]) {
	f.result = r
	if f.filled || !r.HasData {
		return
	}
	b := r.Data.Data
	f.inputs[fieldTitle].SetValue(b.Title)
	f.inputs[fieldAuthor].SetValue(b.Author)
	f.inputs[fieldISBN].SetValue(b.ISBN)
	f.inputs[fieldDescription].SetValue(b.Description)
	f.inputs[fieldCopies].SetValue(strconv.Itoa(b.Copies))
	f.genre = b.Genre
	f.filled = true
}

func (f *form) setFocus(to field) tea.Cmd {
	f.focus = (to + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.inputs {
		if field(i) == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg[library.BookEnv]:
		if msg.from != f.watch {
			return nil
		}
		f.take(msg.result)
		return listen(f.e, f.watch)

	case savedMsg:
		f.submitting = false
		f.err = msg.err
		if msg.err != nil {
			log.WithError(msg.err).Error("save failed")
			if f.editing() {
				return fail("Failed to update book: " + api.Describe(msg.err))
			}
			return fail("Failed to create book: " + api.Describe(msg.err))
		}
		if f.editing() {
			return tea.Batch(notify("Book updated successfully!"), navigate(PathBooks))
		}
		return tea.Batch(notify("Book created successfully!"), navigate(PathBooks))

	case tea.KeyMsg:
		if f.submitting {
			return nil
		}
		switch {
		case key.Matches(msg, formKeyMap.Submit):
			return f.submit()
		case key.Matches(msg, enterKey):
			if f.focus == fieldCount-1 {
				return f.submit()
			}
			return f.setFocus(f.focus + 1)
		case key.Matches(msg, formKeyMap.Next):
			return f.setFocus(f.focus + 1)
		case key.Matches(msg, formKeyMap.Prev):
			return f.setFocus(f.focus - 1)
		case f.focus == fieldGenre && key.Matches(msg, formKeyMap.Genre):
			f.genre = f.genre.Next()
			return nil
		}
	}

	if f.focus == fieldGenre {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// input collects the form. Edits send every field, available included, the
// way the edit page of the web client does.
func (f *form) input() (api.BookInput, error) {
	text := func(i field) *string {
		v := strings.TrimSpace(f.inputs[i].Value())
		return &v
	}

	copies, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldCopies].Value()))
	if err != nil {
		return api.BookInput{}, &library.ValidationError{Field: "copies", Message: "Copies must be a whole number"}
	}

	in := api.BookInput{
		Title:  text(fieldTitle),
		Author: text(fieldAuthor),
		ISBN:   text(fieldISBN),
		Copies: &copies,
	}
	if g := f.genre; g != "" {
		in.Genre = &g
	}
	if d := text(fieldDescription); *d != "" || f.editing() {
		in.Description = d
	}
	return library.DeriveAvailability(in), nil
}

func (f *form) submit() tea.Cmd {
	if f.editing() && !f.result.HasData {
		return fail("Book details not loaded. Please wait or refresh.")
	}
	if f.genre == "" {
		return fail("Please select a genre.")
	}

	in, err := f.input()
	if err == nil {
		if f.editing() {
			err = library.ValidateBookChanges(in)
		} else {
			err = library.ValidateBookInput(in)
		}
	}
	if err != nil {
		return alert("Invalid Input", err.Error())
	}

	f.submitting = true
	f.err = nil
	e, id := f.e, f.id
	return func() tea.Msg {
		var err error
		if id != "" {
			_, err = e.catalog.Update(e.ctx, id, in)
		} else {
			_, err = e.catalog.Create(e.ctx, in)
		}
		return e.scope(savedMsg{err: err})
	}
}

func (f *form) View() string {
	var b strings.Builder

	if f.editing() {
		r := f.result
		switch {
		case r.Loading():
			return f.e.loading()
		case !r.HasData:
			return errorStyle.Render("Error loading book: " + api.Describe(r.Err))
		}
		b.WriteString(titleStyle.Render("Edit Book: " + r.Data.Data.Title))
	} else {
		b.WriteString(titleStyle.Render("Add New Book"))
	}
	b.WriteString("\n")

	for i := range fieldCount {
		label := labelStyle.Render(fieldLabels[i] + ":")
		if i == f.focus {
			label = focusStyle.Render(fieldLabels[i] + ":")
		}
		b.WriteString(label)
		b.WriteString("\n")
		if i == fieldGenre {
			b.WriteString(f.genreView())
		} else {
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case f.submitting && f.editing():
		b.WriteString(f.e.loading() + " Updating...")
	case f.submitting:
		b.WriteString(f.e.loading() + " Creating...")
	case f.editing():
		b.WriteString(buttonStyle.Render("ctrl+s Update Book"))
	default:
		b.WriteString(buttonStyle.Render("ctrl+s Add Book"))
	}

	if f.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(api.Describe(f.err)))
	}
	return b.String()
}

func (f *form) genreView() string {
	if f.genre == "" {
		return mutedStyle.Render("  ‹ Select a genre ›")
	}
	g := "  ‹ " + string(f.genre) + " ›"
	if f.focus == fieldGenre {
		return focusStyle.Render(g)
	}
	return g
}

func (f *form) Keys() []key.Binding {
	k := formKeyMap
	return []key.Binding{k.Next, k.Prev, k.Genre, k.Submit}
}

func (f *form) Typing() bool { return true }

func (f *form) Close() {
	f.watch.Close()
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%q is not a digit", r)
		}
	}
	return nil
}
