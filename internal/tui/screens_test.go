// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/apitest"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/pager"
	"github.com/staranto/libctl/internal/query"
)

func newEnv(t *testing.T, books ...api.Book) (*env, *apitest.Server) {
	t.Helper()
	t.Setenv("LIBCTL_CFG", filepath.Join(t.TempDir(), "libctl.yaml"))

	srv := apitest.NewServer(t, books...)
	client, err := api.NewClient(srv.BaseURL())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &env{ctx: ctx, catalog: library.New(client, query.NewStore(ctx)), id: 1}, srv
}

// exec runs cmd with a deadline and unwraps the screen message.
func exec(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if sc, ok := msg.(scoped); ok {
			return sc.msg
		}
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("command did not finish")
		return nil
	}
}

// settle feeds watch updates to s until ready reports true.
func settle[R any](t *testing.T, s screen, w *query.Watch[R], ready func() bool) {
	t.Helper()
	cmd := listen(&env{ctx: context.Background(), id: 1}, w)
	for !ready() {
		cmd = s.Update(exec(t, cmd))
	}
}

func books(n int) []api.Book {
	out := make([]api.Book, n)
	for i := range out {
		out[i] = apitest.NewBook(fmt.Sprintf("Book %02d", i+1), 1)
	}
	return out
}

func TestList_EmptyFirstPage(t *testing.T) {
	e, _ := newEnv(t)
	l := newList(e)
	l.Init()
	defer l.Close()

	settle(t, l, l.watch, func() bool { return l.result.Status == query.StatusSuccess })
	assert.Contains(t, l.View(), NoBooksText)
	assert.Contains(t, l.View(), "Page 1 of 1 (0 total items)")
}

func TestList_EmptyLaterPage(t *testing.T) {
	e, _ := newEnv(t, books(3)...)
	l := newList(e)
	l.pager = pager.New(10)
	l.pager.Page = 2
	l.Init()
	defer l.Close()

	settle(t, l, l.watch, func() bool { return l.result.Status == query.StatusSuccess })
	assert.Contains(t, l.View(), NoMoreBooksText)
	assert.NotContains(t, l.View(), NoBooksText)
}

func TestList_RendersRows(t *testing.T) {
	none := apitest.NewBook("Gone", 0)
	e, _ := newEnv(t, apitest.NewBook("Dune", 2), none)
	l := newList(e)
	l.Init()
	defer l.Close()

	settle(t, l, l.watch, func() bool { return l.result.HasData })
	view := l.View()
	assert.Contains(t, view, "Dune")
	assert.Contains(t, view, "Gone")
	assert.Contains(t, view, "Yes")
	assert.Contains(t, view, "No")
	assert.Contains(t, view, "Page 1 of 1 (2 total items)")
}

func TestList_DeleteLastBookOnLastPageStepsBack(t *testing.T) {
	e, srv := newEnv(t, books(11)...)
	l := newList(e)
	l.pager = pager.New(10)
	l.Init()
	defer l.Close()
	settle(t, l, l.watch, func() bool { return l.result.HasData })

	require.NotNil(t, l.handleKey(tea.KeyMsg{Type: tea.KeyRight}))
	assert.Equal(t, 2, l.pager.Page)
	settle(t, l, l.watch, func() bool { return l.result.HasData && len(l.rows()) == 1 })

	book, ok := l.selected()
	require.True(t, ok)

	cmd := l.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	d, ok := exec(t, cmd).(dialogMsg)
	require.True(t, ok)
	assert.Equal(t, "Are you sure?", d.dialog.title)
	assert.Equal(t, ConfirmDeleteText, d.dialog.text)
	assert.Equal(t, 11, len(srv.Books()), "nothing is sent before confirming")

	l.Update(exec(t, d.dialog.onConfirm))
	assert.Equal(t, 1, l.pager.Page)
	assert.Len(t, srv.Books(), 10)
	assert.NotContains(t, fmt.Sprint(srv.Books()), book.ID)
}

func TestList_DeleteFailureNotifies(t *testing.T) {
	e, srv := newEnv(t, books(1)...)
	l := newList(e)
	l.Init()
	defer l.Close()
	settle(t, l, l.watch, func() bool { return l.result.HasData })

	srv.FailNext(apitest.DeleteBook, 500, `{"message":"database down"}`)
	msg := exec(t, l.delete(l.rows()[0].ID))
	toast, ok := exec(t, l.Update(msg)).(toastMsg)
	require.True(t, ok)
	assert.True(t, toast.failed)
	assert.Equal(t, DeleteFailedText, toast.text)
}

func TestBorrow_InvalidQuantityOpensDialog(t *testing.T) {
	book := apitest.NewBook("Dune", 2)
	e, srv := newEnv(t, book)
	b := newBorrow(e, book.ID)
	b.Init()
	defer b.Close()
	settle(t, b, b.watch, func() bool { return b.result.HasData })

	for _, qty := range []string{"3", "0", "-1", "many"} {
		b.inputs[borrowQuantity].SetValue(qty)
		d, ok := exec(t, b.submit()).(dialogMsg)
		require.True(t, ok, qty)
		assert.Equal(t, library.InvalidQuantityTitle, d.dialog.title)
		assert.Equal(t, "Quantity must be between 1 and 2 (available copies).", d.dialog.text)
	}
	assert.Zero(t, srv.Hits(apitest.BorrowBook))
}

func TestBorrow_SuccessGoesToSummary(t *testing.T) {
	book := apitest.NewBook("Dune", 2)
	e, srv := newEnv(t, book)
	b := newBorrow(e, book.ID)
	b.Init()
	defer b.Close()
	settle(t, b, b.watch, func() bool { return b.result.HasData })

	b.inputs[borrowQuantity].SetValue("2")
	msg := exec(t, b.submit())
	assert.Equal(t, 1, srv.Hits(apitest.BorrowBook))

	batch, ok := exec(t, b.Update(msg)).(tea.BatchMsg)
	require.True(t, ok)

	var got []tea.Msg
	for _, cmd := range batch {
		got = append(got, exec(t, cmd))
	}
	assert.Contains(t, got, toastMsg{text: BookBorrowedText})
	assert.Contains(t, got, navigateMsg{path: PathBorrowSummary})
}

func TestBorrow_RemountShowsCurrentCopies(t *testing.T) {
	book := apitest.NewBook("Dune", 3)
	e, srv := newEnv(t, book)

	b := newBorrow(e, book.ID)
	b.Init()
	settle(t, b, b.watch, func() bool { return b.result.HasData })
	b.inputs[borrowQuantity].SetValue("2")
	exec(t, b.submit())
	b.Close()

	b = newBorrow(e, book.ID)
	b.Init()
	defer b.Close()
	settle(t, b, b.watch, func() bool { return b.result.HasData })
	assert.Equal(t, 1, b.result.Data.Data.Copies)

	b.inputs[borrowQuantity].SetValue("3")
	d, ok := exec(t, b.submit()).(dialogMsg)
	require.True(t, ok)
	assert.Equal(t, "Quantity must be between 1 and 1 (available copies).", d.dialog.text)
	assert.Equal(t, 1, srv.Hits(apitest.BorrowBook))
}

func TestBorrow_NoBookText(t *testing.T) {
	e, srv := newEnv(t)
	b := newBorrow(e, "")
	b.Init()
	defer b.Close()

	assert.Contains(t, b.View(), BorrowUnavailableText)
	assert.NotContains(t, b.View(), "Error loading book")
	assert.Zero(t, srv.Hits(apitest.GetBook))
}

func TestDetails_DescriptionFallback(t *testing.T) {
	book := apitest.NewBook("Dune", 0)
	e, _ := newEnv(t, book)
	d := newDetails(e, book.ID)
	d.Init()
	defer d.Close()
	settle(t, d, d.watch, func() bool { return d.result.HasData })

	view := d.View()
	assert.Contains(t, view, NoDescriptionText)
	assert.Contains(t, view, "Currently Available: No")
	assert.Contains(t, view, "Created At: ")
}

func TestDetails_NotFound(t *testing.T) {
	e, _ := newEnv(t)
	d := newDetails(e, "missing")
	d.Init()
	defer d.Close()
	settle(t, d, d.watch, func() bool { return d.result.Status == query.StatusError })

	assert.Contains(t, d.View(), "Book Not Found or Error")
}

func TestSummary_Empty(t *testing.T) {
	e, _ := newEnv(t)
	s := newSummary(e)
	s.Init()
	defer s.Close()
	settle(t, s, s.watch, func() bool { return s.result.Status == query.StatusSuccess })

	assert.Equal(t, NoBorrowsText, s.View())
}

func TestCreateForm_RequiresGenre(t *testing.T) {
	e, srv := newEnv(t)
	f := newCreateForm(e)
	f.Init()

	f.inputs[fieldTitle].SetValue("Dune")
	toast, ok := exec(t, f.submit()).(toastMsg)
	require.True(t, ok)
	assert.Equal(t, "Please select a genre.", toast.text)

	f.genre = api.Science
	d, ok := exec(t, f.submit()).(dialogMsg)
	require.True(t, ok)
	assert.Contains(t, d.dialog.text, "Author is required")
	assert.Zero(t, srv.Hits(apitest.CreateBook))
}

func TestCreateForm_Submit(t *testing.T) {
	e, srv := newEnv(t)
	f := newCreateForm(e)
	f.Init()

	f.inputs[fieldTitle].SetValue("Dune")
	f.inputs[fieldAuthor].SetValue("Frank Herbert")
	f.inputs[fieldISBN].SetValue("9780441013593")
	f.inputs[fieldCopies].SetValue("3")
	f.genre = api.Fiction

	msg := exec(t, f.submit())
	assert.Nil(t, msg.(savedMsg).err)
	require.Len(t, srv.Books(), 1)
	assert.True(t, srv.Books()[0].Available)
	assert.Empty(t, srv.Books()[0].Description)
}
