// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newApp(t *testing.T, start string) *Model {
	t.Helper()
	e, _ := newEnv(t)
	m := New(context.Background(), e.catalog, start)
	m.Init()
	t.Cleanup(func() { m.quit() })
	return m
}

func TestApp_StartsAtPath(t *testing.T) {
	assert.Equal(t, PathHome, newApp(t, "").Path())

	m := newApp(t, "/nowhere")
	assert.Equal(t, "/nowhere", m.Path())
	assert.Contains(t, m.View(), "404 Page Not Found")
	assert.Contains(t, m.View(), "ShelfWise")
}

func TestApp_NavigationKeysAndBack(t *testing.T) {
	m := newApp(t, PathHome)

	m.Update(runes("2"))
	assert.Equal(t, PathBooks, m.Path())
	m.Update(runes("4"))
	assert.Equal(t, PathBorrowSummary, m.Path())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PathBooks, m.Path())
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PathHome, m.Path())
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PathHome, m.Path())
}

func TestApp_FormsSwallowShortcuts(t *testing.T) {
	m := newApp(t, PathCreateBook)

	m.Update(runes("2"))
	assert.Equal(t, PathCreateBook, m.Path())
	f, ok := m.screen.(*form)
	require.True(t, ok)
	assert.Equal(t, "2", f.inputs[fieldTitle].Value())
}

func TestApp_StaleScreenMessagesAreDropped(t *testing.T) {
	m := newApp(t, PathHome)
	old := m.screenID
	m.Update(navigateMsg{path: PathBooks})
	require.NotEqual(t, old, m.screenID)

	_, cmd := m.Update(scoped{id: old, msg: deletedMsg{}})
	assert.Nil(t, cmd)
}

func TestApp_Toast(t *testing.T) {
	m := newApp(t, PathHome)

	_, cmd := m.Update(toastMsg{text: BookDeletedText})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), BookDeletedText)

	m.Update(clearToastMsg{id: m.toastID - 1})
	assert.Contains(t, m.View(), BookDeletedText, "an older timer leaves a newer toast up")

	m.Update(clearToastMsg{id: m.toastID})
	assert.NotContains(t, m.View(), BookDeletedText)
}

func TestApp_DialogBlocksUntilAnswered(t *testing.T) {
	m := newApp(t, PathHome)
	confirmed := false
	onYes := func() tea.Msg { confirmed = true; return nil }

	m.Update(dialogMsg{dialog{title: "Are you sure?", text: ConfirmDeleteText, confirm: "Yes, delete it!", onConfirm: onYes}})
	assert.Contains(t, m.View(), ConfirmDeleteText)

	m.Update(runes("2"))
	assert.Equal(t, PathHome, m.Path(), "keys go to the dialog")

	m.Update(runes("n"))
	assert.Nil(t, m.dialog)

	m.Update(dialogMsg{dialog{title: "Are you sure?", confirm: "Yes, delete it!", onConfirm: onYes}})
	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, confirmed)
}
