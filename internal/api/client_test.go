// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/apitest"
)

func ptr[T any](v T) *T { return &v }

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.BaseURL())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	c, err := api.NewClient("")
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, c.BaseURL())

	c, err = api.NewClient("https://library.example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "https://library.example.com/api", c.BaseURL())

	_, err = api.NewClient("ftp://library.example.com")
	assert.Error(t, err)
}

func TestListBooks_Pagination(t *testing.T) {
	var books []api.Book
	for _, title := range []string{"Dune", "Emma", "Ulysses"} {
		books = append(books, apitest.NewBook(title, 1))
	}
	srv := apitest.NewServer(t, books...)
	c := newClient(t, srv)

	env, err := c.ListBooks(context.Background(), api.ListBooksArgs{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.True(t, env.Success)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Ulysses", env.Data[0].Title)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, api.Pagination{CurrentPage: 2, ItemsPerPage: 2, TotalItems: 3, TotalPages: 2}, *env.Pagination)
}

func TestListBooks_DefaultsQuery(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/books", r.URL.Path)
		_, _ = w.Write([]byte(`{"statusCode":200,"data":[],"message":"ok","success":true}`))
	}))
	defer ts.Close()

	c, err := api.NewClient(ts.URL + "/api")
	require.NoError(t, err)

	_, err = c.ListBooks(context.Background(), api.ListBooksArgs{})
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=1", gotQuery)
}

func TestCreateAndUpdateBook(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	created, err := c.CreateBook(ctx, api.BookInput{
		Title:  ptr("Dune"),
		Author: ptr("Frank Herbert"),
		Genre:  ptr(api.Fiction),
		ISBN:   ptr("9780441013593"),
		Copies: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, created.StatusCode)
	assert.NotEmpty(t, created.Data.ID)
	assert.False(t, created.Data.Available)

	updated, err := c.UpdateBook(ctx, api.UpdateBookArgs{
		ID:      created.Data.ID,
		Changes: api.BookInput{Copies: ptr(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Data.Copies)
	assert.Equal(t, "Dune", updated.Data.Title, "unset fields are left alone")
	assert.True(t, updated.Data.Available)
}

func TestGetBook_MissingID(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	_, err := c.GetBook(context.Background(), "")
	assert.ErrorIs(t, err, api.ErrMissingID)
	assert.Zero(t, srv.Hits(apitest.GetBook))
}

func TestRequestError_Structured(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	_, err := c.GetBook(context.Background(), "nope")
	require.Error(t, err)

	var re *api.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.False(t, re.Unstructured())
	assert.Equal(t, "Book not found", re.Text())
	assert.Equal(t, "Book not found (HTTP 404)", api.Describe(err))
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestRequestError_Unstructured(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	srv.FailNext(apitest.BorrowBook, http.StatusBadGateway, "<html>upstream down</html>\n")

	_, err := c.BorrowBook(context.Background(), api.BorrowInput{Book: "x", Quantity: 1})
	var re *api.RequestError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Unstructured())
	assert.Equal(t, "<html>upstream down</html>", re.Text())
}

func TestRequestError_EmptyBody(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	srv.FailNext(apitest.BorrowSummary, http.StatusServiceUnavailable, "")

	_, err := c.BorrowSummary(context.Background(), struct{}{})
	assert.Equal(t, "Service Unavailable (HTTP 503)", api.Describe(err))
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c, err := api.NewClient(base, api.WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = c.ListBooks(context.Background(), api.ListBooksArgs{})
	var ne *api.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.MethodGet, ne.Method)
	assert.Contains(t, api.Describe(err), "cannot reach the library service")
}

func TestMalformedEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	c, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	_, err = c.BorrowSummary(context.Background(), struct{}{})
	assert.ErrorIs(t, err, api.ErrMalformedEnvelope)
}

func TestBorrowAndSummary(t *testing.T) {
	book := apitest.NewBook("Dune", 3)
	book.ID = "dune"
	srv := apitest.NewServer(t, book)
	c := newClient(t, srv)
	ctx := context.Background()

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	rec, err := c.BorrowBook(ctx, api.BorrowInput{Book: "dune", Quantity: 2, DueDate: due})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Data.Quantity)
	assert.True(t, due.Equal(rec.Data.DueDate))

	summary, err := c.BorrowSummary(ctx, struct{}{})
	require.NoError(t, err)
	require.Len(t, summary.Data, 1)
	assert.Equal(t, "Dune", summary.Data[0].Book.Title)
	assert.Equal(t, 2, summary.Data[0].TotalQuantity)
}

func TestParseGenre(t *testing.T) {
	tests := []struct {
		in   string
		want api.Genre
		ok   bool
	}{
		{"FICTION", api.Fiction, true},
		{"non-fiction", api.NonFiction, true},
		{" Science ", api.Science, true},
		{"poetry", "", false},
	}
	for _, tt := range tests {
		got, ok := api.ParseGenre(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.True(t, api.Fantasy.Valid())
	assert.False(t, api.Genre("fiction").Valid())
	assert.Equal(t, api.Fiction, api.Fantasy.Next())
}
