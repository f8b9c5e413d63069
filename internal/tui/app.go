// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/libctl/internal/library"
)

type appKeys struct {
	Quit    key.Binding
	Back    key.Binding
	Home    key.Binding
	Books   key.Binding
	Create  key.Binding
	Summary key.Binding
}

var globalKeys = appKeys{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Home:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
	Books:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "all books")),
	Create:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "add book")),
	Summary: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "borrow summary")),
}

var (
	dialogYes = key.NewBinding(key.WithKeys("y", "enter"))
	dialogNo  = key.NewBinding(key.WithKeys("n", "esc"))
	forceQuit = key.NewBinding(key.WithKeys("ctrl+c"))
)

type toast struct {
	text   string
	failed bool
}

// Model is the root bubbletea model. It owns the navbar, the notification
// line, the blocking dialog and the one mounted screen.
type Model struct {
	ctx     context.Context
	catalog *library.Catalog
	router  *Router
	spinner spinner.Model
	help    help.Model

	start    string
	path     string
	history  []string
	screen   screen
	screenID int

	toast   *toast
	toastID int
	dialog  *dialog

	width  int
	height int
}

// New returns the app positioned at start, "/" when empty.
func New(ctx context.Context, catalog *library.Catalog, start string) *Model {
	if start == "" {
		start = PathHome
	}
	return &Model{
		ctx:     ctx,
		catalog: catalog,
		router:  NewRouter(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(focusStyle)),
		help:    help.New(),
		start:   start,
	}
}

// Run shows the app until the user quits or ctx ends.
func Run(ctx context.Context, catalog *library.Catalog, start string, opts ...tea.ProgramOption) error {
	m := New(ctx, catalog, start)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}
	return nil
}

// Path is the path of the mounted screen.
func (m *Model) Path() string {
	return m.path
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.navigate(m.start, false))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scoped:
		if msg.id != m.screenID || m.screen == nil {
			return m, nil
		}
		return m, m.screen.Update(msg.msg)

	case navigateMsg:
		return m, m.navigate(msg.path, true)

	case toastMsg:
		m.toastID++
		m.toast = &toast{text: msg.text, failed: msg.failed}
		id := m.toastID
		return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg { return clearToastMsg{id: id} })

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast = nil
		}
		return m, nil

	case dialogMsg:
		d := msg.dialog
		m.dialog = &d
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.screen != nil {
		return m, m.screen.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, forceQuit) {
		return m.quit()
	}

	if m.dialog != nil {
		d := m.dialog
		switch {
		case key.Matches(msg, dialogYes):
			m.dialog = nil
			if d.confirm != "" {
				return d.onConfirm
			}
		case key.Matches(msg, dialogNo):
			m.dialog = nil
		}
		return nil
	}

	if key.Matches(msg, globalKeys.Back) {
		return m.back()
	}

	if m.screen == nil {
		return nil
	}

	if !m.screen.Typing() {
		switch {
		case key.Matches(msg, globalKeys.Quit):
			return m.quit()
		case key.Matches(msg, globalKeys.Home):
			return m.navigate(PathHome, true)
		case key.Matches(msg, globalKeys.Books):
			return m.navigate(PathBooks, true)
		case key.Matches(msg, globalKeys.Create):
			return m.navigate(PathCreateBook, true)
		case key.Matches(msg, globalKeys.Summary):
			return m.navigate(PathBorrowSummary, true)
		}
	}

	return m.screen.Update(msg)
}

// navigate unmounts the current screen and mounts the one for path.
func (m *Model) navigate(path string, push bool) tea.Cmd {
	if m.screen != nil {
		m.screen.Close()
		if push && m.path != path {
			m.history = append(m.history, m.path)
		}
	}

	m.screenID++
	e := &env{ctx: m.ctx, catalog: m.catalog, id: m.screenID, spinner: &m.spinner}
	m.screen = m.router.build(e, path)
	m.path = path
	m.dialog = nil
	log.Debugf("navigate %s", path)
	return m.screen.Init()
}

func (m *Model) back() tea.Cmd {
	if len(m.history) == 0 {
		if m.path == PathHome {
			return nil
		}
		return m.navigate(PathHome, false)
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.navigate(prev, false)
}

func (m *Model) quit() tea.Cmd {
	if m.screen != nil {
		m.screen.Close()
	}
	return tea.Quit
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.navbar())
	b.WriteString("\n")

	if m.dialog != nil {
		b.WriteString(bodyStyle.Render(m.dialogView()))
	} else if m.screen != nil {
		b.WriteString(bodyStyle.Render(m.screen.View()))
	}
	b.WriteString("\n")

	if m.toast != nil {
		style := toastStyle.Foreground(green)
		if m.toast.failed {
			style = toastStyle.Foreground(red)
		}
		b.WriteString(style.Render(m.toast.text))
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.bindings()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("© %d Library Management System. All rights reserved.", time.Now().Year())))
	return b.String()
}

func (m *Model) navbar() string {
	items := []struct {
		label string
		path  string
	}{
		{"Home", PathHome},
		{"All Books", PathBooks},
		{"Add Book", PathCreateBook},
		{"Borrow Summary", PathBorrowSummary},
	}

	parts := []string{brandStyle.Render("ShelfWise")}
	for i, it := range items {
		style := navStyle
		if m.path == it.path {
			style = navActiveStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", i+1, it.label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) dialogView() string {
	d := m.dialog
	body := []string{titleStyle.Render(d.title), d.text, ""}
	if d.confirm != "" {
		body = append(body, buttonStyle.Render("y "+d.confirm)+"  "+mutedStyle.Render("n Cancel"))
	} else {
		body = append(body, buttonStyle.Render("enter OK"))
	}
	box := dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width-4, lipgloss.Center, box) //nolint:mnd
	}
	return box
}

func (m *Model) bindings() []key.Binding {
	var b []key.Binding
	if m.screen != nil {
		b = append(b, m.screen.Keys()...)
	}
	b = append(b, globalKeys.Back)
	if m.screen == nil || !m.screen.Typing() {
		b = append(b, globalKeys.Home, globalKeys.Books, globalKeys.Create, globalKeys.Summary, globalKeys.Quit)
	}
	return b
}
