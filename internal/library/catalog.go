// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package library

import (
	"context"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/query"
)

// Operation names. They double as the cache key prefix.
const (
	OpGetBooks         = "getBooks"
	OpGetBookByID      = "getBookById"
	OpCreateBook       = "createBook"
	OpUpdateBook       = "updateBook"
	OpDeleteBook       = "deleteBook"
	OpBorrowBook       = "borrowBook"
	OpGetBorrowSummary = "getBorrowSummary"
)

// Tags each operation provides (queries) or invalidates (mutations).
const (
	getBooksTags         = query.Books
	getBookByIDTags      = query.None
	createBookTags       = query.Books
	updateBookTags       = query.Books
	deleteBookTags       = query.Books
	borrowBookTags       = query.Books | query.Borrows
	getBorrowSummaryTags = query.Borrows
)

type (
	BooksPage = api.Envelope[[]api.Book]
	BookEnv   = api.Envelope[api.Book]
	Summary   = api.Envelope[[]api.BorrowSummaryItem]
)

// Catalog is the set of operations available to views and commands.
type Catalog struct {
	Client *api.Client
	Store  *query.Store

	GetBooks         query.Query[api.ListBooksArgs, BooksPage]
	GetBookByID      query.Query[string, BookEnv]
	GetBorrowSummary query.Query[struct{}, Summary]

	CreateBook query.Mutation[api.BookInput, BookEnv]
	UpdateBook query.Mutation[api.UpdateBookArgs, BookEnv]
	DeleteBook query.Mutation[string, api.Envelope[any]]
	BorrowBook query.Mutation[api.BorrowInput, api.Envelope[api.BorrowRecord]]
}

func New(client *api.Client, store *query.Store) *Catalog {
	return &Catalog{
		Client: client,
		Store:  store,

		GetBooks: query.Query[api.ListBooksArgs, BooksPage]{
			Name:     OpGetBooks,
			Provides: getBooksTags,
			Fetch:    client.ListBooks,
		},
		GetBookByID: query.Query[string, BookEnv]{
			Name:     OpGetBookByID,
			Provides: getBookByIDTags,
			Skip:     func(id string) bool { return id == "" },
			Fetch:    client.GetBook,
		},
		GetBorrowSummary: query.Query[struct{}, Summary]{
			Name:     OpGetBorrowSummary,
			Provides: getBorrowSummaryTags,
			Fetch:    client.BorrowSummary,
		},

		CreateBook: query.Mutation[api.BookInput, BookEnv]{
			Name:        OpCreateBook,
			Invalidates: createBookTags,
			Do: func(ctx context.Context, in api.BookInput) (BookEnv, error) {
				return client.CreateBook(ctx, DeriveAvailability(in))
			},
		},
		UpdateBook: query.Mutation[api.UpdateBookArgs, BookEnv]{
			Name:        OpUpdateBook,
			Invalidates: updateBookTags,
			Do: func(ctx context.Context, args api.UpdateBookArgs) (BookEnv, error) {
				args.Changes = DeriveAvailability(args.Changes)
				return client.UpdateBook(ctx, args)
			},
		},
		DeleteBook: query.Mutation[string, api.Envelope[any]]{
			Name:        OpDeleteBook,
			Invalidates: deleteBookTags,
			Do:          client.DeleteBook,
		},
		BorrowBook: query.Mutation[api.BorrowInput, api.Envelope[api.BorrowRecord]]{
			Name:        OpBorrowBook,
			Invalidates: borrowBookTags,
			Do:          client.BorrowBook,
		},
	}
}

// Books returns one page of the catalog. Unset page and limit take the
// defaults, so {} and {1, 10} share a cache entry.
func (c *Catalog) Books(ctx context.Context, args api.ListBooksArgs) query.Result[BooksPage] {
	return c.GetBooks.Get(ctx, c.Store, args.Normalize())
}

func (c *Catalog) WatchBooks(args api.ListBooksArgs) *query.Watch[BooksPage] {
	return c.GetBooks.Watch(c.Store, args.Normalize())
}

// Book returns one book. An empty id is skipped and never fetched.
func (c *Catalog) Book(ctx context.Context, id string) query.Result[BookEnv] {
	return c.GetBookByID.Get(ctx, c.Store, id)
}

func (c *Catalog) WatchBook(id string) *query.Watch[BookEnv] {
	return c.GetBookByID.Watch(c.Store, id)
}

func (c *Catalog) Summary(ctx context.Context) query.Result[Summary] {
	return c.GetBorrowSummary.Get(ctx, c.Store, struct{}{})
}

func (c *Catalog) WatchSummary() *query.Watch[Summary] {
	return c.GetBorrowSummary.Watch(c.Store, struct{}{})
}

// Create validates in and posts it.
func (c *Catalog) Create(ctx context.Context, in api.BookInput) (api.Book, error) {
	if err := ValidateBookInput(in); err != nil {
		return api.Book{}, err
	}
	env, err := c.CreateBook.Run(ctx, c.Store, in)
	return env.Data, err
}

// Update sends only the fields set in changes.
func (c *Catalog) Update(ctx context.Context, id string, changes api.BookInput) (api.Book, error) {
	if err := ValidateBookChanges(changes); err != nil {
		return api.Book{}, err
	}
	env, err := c.UpdateBook.Run(ctx, c.Store, api.UpdateBookArgs{ID: id, Changes: changes})
	return env.Data, err
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	_, err := c.DeleteBook.Run(ctx, c.Store, id)
	return err
}

// Borrow checks quantity against book before anything is sent. A zero due
// date means today.
func (c *Catalog) Borrow(ctx context.Context, book api.Book, in api.BorrowInput) (api.BorrowRecord, error) {
	if in.Book == "" {
		in.Book = book.ID
	}
	if in.DueDate.IsZero() {
		in.DueDate = Today()
	}
	if err := ValidateBorrow(book, in.Quantity); err != nil {
		return api.BorrowRecord{}, err
	}
	env, err := c.BorrowBook.Run(ctx, c.Store, in)
	return env.Data, err
}
