// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package library_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/apitest"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/query"
)

func ptr[T any](v T) *T { return &v }

func newCatalog(t *testing.T, books ...api.Book) (*library.Catalog, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t, books...)
	client, err := api.NewClient(srv.BaseURL())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return library.New(client, query.NewStore(ctx)), srv
}

// settle waits for the first successful update that satisfies ok.
func settle[R any](t *testing.T, w *query.Watch[R], ok func(R) bool) R {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if cur := w.Current(); cur.Status == query.StatusSuccess && ok(cur.Data) {
		return cur.Data
	}
	for {
		r, more := w.Next(ctx)
		require.True(t, more, "watch ended before the expected update")
		require.NotEqual(t, query.StatusError, r.Status, "unexpected error: %v", r.Err)
		if r.Status == query.StatusSuccess && ok(r.Data) {
			return r.Data
		}
	}
}

func anyPage(library.BooksPage) bool { return true }

func TestBooks_ConcurrentIdenticalRequestsMakeOneCall(t *testing.T) {
	cat, srv := newCatalog(t, apitest.NewBook("Dune", 2))
	release := srv.Hold(apitest.ListBooks)

	var wg sync.WaitGroup
	results := make([]query.Result[library.BooksPage], 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// {} and {1, 10} normalize to the same key.
			args := api.ListBooksArgs{}
			if i%2 == 1 {
				args = api.ListBooksArgs{Page: 1, Limit: 10}
			}
			results[i] = cat.Books(context.Background(), args)
		}(i)
	}

	require.Eventually(t, func() bool { return srv.Hits(apitest.ListBooks) == 1 }, time.Second, time.Millisecond)
	release()
	wg.Wait()

	assert.Equal(t, 1, srv.Hits(apitest.ListBooks))
	for _, r := range results {
		require.Equal(t, query.StatusSuccess, r.Status)
		assert.Len(t, r.Data.Data, 1)
	}
}

func TestWatchBooks_RefetchesAfterMutations(t *testing.T) {
	dune := apitest.NewBook("Dune", 2)
	dune.ID = "dune"
	cat, srv := newCatalog(t, dune)
	ctx := context.Background()

	w := cat.WatchBooks(api.ListBooksArgs{})
	defer w.Close()
	page := settle(t, w, anyPage)
	require.Len(t, page.Data, 1)

	created, err := cat.Create(ctx, api.BookInput{
		Title:  ptr("Emma"),
		Author: ptr("Jane Austen"),
		Genre:  ptr(api.Fiction),
		ISBN:   ptr("978-0141439587"),
		Copies: ptr(0),
	})
	require.NoError(t, err)
	assert.False(t, created.Available)
	settle(t, w, func(p library.BooksPage) bool { return len(p.Data) == 2 })

	_, err = cat.Update(ctx, created.ID, api.BookInput{Title: ptr("Emma (Annotated)")})
	require.NoError(t, err)
	settle(t, w, func(p library.BooksPage) bool {
		return len(p.Data) == 2 && p.Data[1].Title == "Emma (Annotated)"
	})

	_, err = cat.Borrow(ctx, dune, api.BorrowInput{Quantity: 1})
	require.NoError(t, err)
	settle(t, w, func(p library.BooksPage) bool { return p.Data[0].Copies == 1 })

	require.NoError(t, cat.Delete(ctx, created.ID))
	settle(t, w, func(p library.BooksPage) bool { return len(p.Data) == 1 })

	assert.Equal(t, 5, srv.Hits(apitest.ListBooks))
}

func TestMutationFailure_InvalidatesNothing(t *testing.T) {
	cat, srv := newCatalog(t, apitest.NewBook("Dune", 2))
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, cat.Books(ctx, api.ListBooksArgs{}).Status)

	srv.FailNext(apitest.CreateBook, 500, `{"message":"database down"}`)
	_, err := cat.Create(ctx, api.BookInput{
		Title:  ptr("Emma"),
		Author: ptr("Jane Austen"),
		ISBN:   ptr("978-0141439587"),
	})
	require.Error(t, err)
	assert.Equal(t, "database down (HTTP 500)", api.Describe(err))

	cat.Books(ctx, api.ListBooksArgs{})
	assert.Equal(t, 1, srv.Hits(apitest.ListBooks))
}

func TestBorrow_RejectedBeforeSending(t *testing.T) {
	book := apitest.NewBook("Dune", 2)
	book.ID = "dune"
	cat, srv := newCatalog(t, book)

	for _, qty := range []int{0, -1, 3} {
		_, err := cat.Borrow(context.Background(), book, api.BorrowInput{Quantity: qty})

		var verr *library.ValidationError
		require.True(t, errors.As(err, &verr), "quantity %d", qty)
		assert.Equal(t, "quantity", verr.Field)
		assert.Equal(t, "Quantity must be between 1 and 2 (available copies).", verr.Message)
	}
	assert.Zero(t, srv.Hits(apitest.BorrowBook))
}

func TestBorrow_RefreshesSummary(t *testing.T) {
	book := apitest.NewBook("Dune", 3)
	book.ID = "dune"
	cat, srv := newCatalog(t, book)

	w := cat.WatchSummary()
	defer w.Close()
	sum := settle(t, w, func(library.Summary) bool { return true })
	assert.Empty(t, sum.Data)

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	rec, err := cat.Borrow(context.Background(), book, api.BorrowInput{Quantity: 2, DueDate: due})
	require.NoError(t, err)
	assert.Equal(t, "dune", rec.Book)
	assert.True(t, due.Equal(rec.DueDate))

	sum = settle(t, w, func(s library.Summary) bool { return len(s.Data) == 1 })
	assert.Equal(t, "Dune", sum.Data[0].Book.Title)
	assert.Equal(t, 2, sum.Data[0].TotalQuantity)
	assert.Equal(t, 2, srv.Hits(apitest.BorrowSummary))
}

func TestBook_SkippedWithoutID(t *testing.T) {
	cat, srv := newCatalog(t)

	r := cat.Book(context.Background(), "")
	assert.Equal(t, query.StatusUninitiated, r.Status)

	w := cat.WatchBook("")
	assert.Equal(t, query.StatusUninitiated, w.Current().Status)
	w.Close()

	assert.Zero(t, srv.Hits(apitest.GetBook))
}

func TestBook_NotFound(t *testing.T) {
	cat, _ := newCatalog(t)

	r := cat.Book(context.Background(), "nope")
	require.Equal(t, query.StatusError, r.Status)
	assert.Equal(t, 404, api.StatusCode(r.Err))
	assert.Equal(t, "Book not found (HTTP 404)", api.Describe(r.Err))
}

func TestBook_NotInvalidatedByMutations(t *testing.T) {
	book := apitest.NewBook("Dune", 2)
	book.ID = "dune"
	cat, srv := newCatalog(t, book)
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, cat.Book(ctx, "dune").Status)
	_, err := cat.Update(ctx, "dune", api.BookInput{Copies: ptr(5)})
	require.NoError(t, err)

	r := cat.Book(ctx, "dune")
	assert.Equal(t, 2, r.Data.Data.Copies, "getBookById provides no tags")
	assert.Equal(t, 1, srv.Hits(apitest.GetBook))
}

func TestWatchBook_RemountAfterBorrowFetchesAgain(t *testing.T) {
	book := apitest.NewBook("Dune", 3)
	cat, srv := newCatalog(t, book)
	ctx := context.Background()
	loaded := func(library.BookEnv) bool { return true }

	w := cat.WatchBook(book.ID)
	got := settle(t, w, loaded)
	assert.Equal(t, 3, got.Data.Copies)
	w.Close()

	_, err := cat.Borrow(ctx, got.Data, api.BorrowInput{Quantity: 2})
	require.NoError(t, err)

	w = cat.WatchBook(book.ID)
	defer w.Close()
	got = settle(t, w, loaded)
	assert.Equal(t, 1, got.Data.Copies)
	assert.Equal(t, 2, srv.Hits(apitest.GetBook))

	_, err = cat.Borrow(ctx, got.Data, api.BorrowInput{Quantity: 3})
	var verr *library.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, srv.Hits(apitest.BorrowBook))
}

func TestCreate_ValidatesBeforeSending(t *testing.T) {
	cat, srv := newCatalog(t)

	_, err := cat.Create(context.Background(), api.BookInput{Title: ptr("Emma")})
	var verr *library.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "author", verr.Field)
	assert.Zero(t, srv.Hits(apitest.CreateBook))
}
