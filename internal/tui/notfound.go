// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type notFound struct {
	e    *env
	path string
}

func newNotFound(e *env, path string) *notFound {
	return &notFound{e: e, path: path}
}

func (n *notFound) Init() tea.Cmd { return nil }

func (n *notFound) Update(tea.Msg) tea.Cmd { return nil }

func (n *notFound) View() string {
	return titleStyle.Render("404 Page Not Found") + "\n" +
		"Nothing lives at " + focusStyle.Render(n.path) + ".\n\n" +
		mutedStyle.Render("Press 1 for home or 2 for the book list.")
}

func (n *notFound) Keys() []key.Binding { return nil }

func (n *notFound) Typing() bool { return false }

func (n *notFound) Close() {}
