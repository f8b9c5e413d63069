// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/query"
)

// ToastDuration is how long a notification stays up.
const ToastDuration = 3 * time.Second

// screen is one mounted view. Close is called when the app navigates away
// and must release every watch the screen holds.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Keys() []key.Binding
	// Typing is true while keystrokes belong to a text input, which turns
	// off the single-key navigation shortcuts.
	Typing() bool
	Close()
}

// env is what a screen gets from the app. id changes with every
// navigation so messages meant for a screen that is gone can be dropped.
type env struct {
	ctx     context.Context
	catalog *library.Catalog
	id      int
	spinner *spinner.Model
}

// scoped tags msg with the screen it belongs to.
type scoped struct {
	id  int
	msg tea.Msg
}

func (e *env) scope(msg tea.Msg) tea.Msg {
	return scoped{id: e.id, msg: msg}
}

func (e *env) loading() string {
	if e.spinner == nil {
		return "Loading..."
	}
	return e.spinner.View() + " Loading..."
}

// resultMsg is one update from a watch. from identifies the watch so a
// screen that resubscribed ignores its old one.
type resultMsg[R any] struct {
	from   *query.Watch[R]
	result query.Result[R]
}

// listen waits for the next update of w. It returns nil once w is closed,
// which bubbletea discards.
func listen[R any](e *env, w *query.Watch[R]) tea.Cmd {
	return func() tea.Msg {
		r, ok := w.Next(e.ctx)
		if !ok {
			return nil
		}
		return e.scope(resultMsg[R]{from: w, result: r})
	}
}

type navigateMsg struct {
	path string
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

type toastMsg struct {
	text   string
	failed bool
}

type clearToastMsg struct {
	id int
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text} }
}

func fail(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, failed: true} }
}

// dialog blocks the screen until answered. Without a confirm label it is a
// plain alert.
type dialog struct {
	title     string
	text      string
	confirm   string
	onConfirm tea.Cmd
}

type dialogMsg struct {
	dialog dialog
}

func alert(title, text string) tea.Cmd {
	return func() tea.Msg { return dialogMsg{dialog{title: title, text: text}} }
}

func confirm(title, text, yes string, onConfirm tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return dialogMsg{dialog{title: title, text: text, confirm: yes, onConfirm: onConfirm}}
	}
}
