// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	homeBooks  = key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view all books"))
	homeCreate = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add new book"))
)

type home struct {
	e *env
}

func newHome(e *env) *home {
	return &home{e: e}
}

func (h *home) Init() tea.Cmd { return nil }

func (h *home) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, homeBooks):
			return navigate(PathBooks)
		case key.Matches(msg, homeCreate):
			return navigate(PathCreateBook)
		}
	}
	return nil
}

func (h *home) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Welcome to the Library Management System 📚"),
		lipgloss.NewStyle().Width(72).Render("Your ultimate solution for managing books and tracking borrowing "+ //nolint:mnd
			"activities efficiently. Explore our collection, add new books, update existing ones, "+
			"and keep a track of borrowed items, all in one place."),
		"",
		buttonStyle.Render("enter View All Books")+"  "+buttonStyle.Render("a Add New Book"),
	)
}

func (h *home) Keys() []key.Binding { return []key.Binding{homeBooks, homeCreate} }

func (h *home) Typing() bool { return false }

func (h *home) Close() {}
