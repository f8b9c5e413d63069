// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package apitest runs an in-memory library service for tests. It implements
// the same routes and envelope as the real service, counts hits per route and
// can hold or fail requests on demand.
package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/staranto/libctl/internal/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Route names used by Hits, FailNext and Hold.
const (
	ListBooks     = "GET /books"
	CreateBook    = "POST /books"
	GetBook       = "GET /books/{id}"
	UpdateBook    = "PUT /books/{id}"
	DeleteBook    = "DELETE /books/{id}"
	BorrowBook    = "POST /borrow"
	BorrowSummary = "GET /borrow"
)

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	books   []api.Book
	borrows []api.BorrowRecord
	hits    map[string]int
	fail    map[string]failure
	holds   map[string]chan struct{}
}

// NewServer starts a server seeded with books and stops it when the test ends.
func NewServer(t testing.TB, books ...api.Book) *Server {
	t.Helper()

	s := &Server{
		hits:  map[string]int{},
		fail:  map[string]failure{},
		holds: map[string]chan struct{}{},
	}
	for _, b := range books {
		s.books = append(s.books, s.stamp(b))
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/books", s.handle(ListBooks, s.listBooks))
		r.Post("/books", s.handle(CreateBook, s.createBook))
		r.Get("/books/{id}", s.handle(GetBook, s.getBook))
		r.Put("/books/{id}", s.handle(UpdateBook, s.updateBook))
		r.Delete("/books/{id}", s.handle(DeleteBook, s.deleteBook))
		r.Post("/borrow", s.handle(BorrowBook, s.borrowBook))
		r.Get("/borrow", s.handle(BorrowSummary, s.borrowSummary))
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value to hand to api.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// FailNext makes the next request on route answer with status and body.
func (s *Server) FailNext(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = failure{status: status, body: body}
}

// Hold blocks requests on route until the returned func is called.
func (s *Server) Hold(route string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Books returns a copy of the current catalog.
func (s *Server) Books() []api.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Book(nil), s.books...)
}

// NewBook is a convenience constructor for seeding. The id is assigned up
// front so tests can address the book before the server has seen it.
func NewBook(title string, copies int) api.Book {
	return api.Book{
		ID:     uuid.NewString(),
		Title:  title,
		Author: "Author of " + title,
		Genre:  api.Fiction,
		ISBN:   fmt.Sprintf("978-%010d", len(title)*7919+copies),
		Copies: copies,
	}
}

func (s *Server) stamp(b api.Book) api.Book {
	now := time.Now().UTC().Truncate(time.Second)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	b.Available = b.Copies > 0
	return b
}

func (s *Server) handle(route string, h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[route]++
		f, failing := s.fail[route]
		delete(s.fail, route)
		gate := s.holds[route]
		s.mu.Unlock()

		if gate != nil {
			<-gate
		}

		if failing {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		h(w, r)
	}
}

func writeEnvelope[T any](w http.ResponseWriter, status int, msg string, data T, p *api.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Envelope[T]{
		StatusCode: status,
		Data:       data,
		Message:    msg,
		Success:    status < http.StatusBadRequest,
		Pagination: p,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeEnvelope[any](w, status, msg, nil, nil)
}

func (s *Server) find(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	args := api.ListBooksArgs{Page: page, Limit: limit}.Normalize()

	s.mu.Lock()
	total := len(s.books)
	start := min((args.Page-1)*args.Limit, total)
	end := min(start+args.Limit, total)
	items := append([]api.Book{}, s.books[start:end]...)
	s.mu.Unlock()

	pages := (total + args.Limit - 1) / args.Limit
	writeEnvelope(w, http.StatusOK, "Books retrieved successfully", items, &api.Pagination{
		CurrentPage:  args.Page,
		ItemsPerPage: args.Limit,
		TotalItems:   total,
		TotalPages:   pages,
	})
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeEnvelope(w, http.StatusOK, "Book retrieved successfully", s.books[i], nil)
}

func apply(b api.Book, in api.BookInput) api.Book {
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Genre != nil {
		b.Genre = *in.Genre
	}
	if in.ISBN != nil {
		b.ISBN = *in.ISBN
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Copies != nil {
		b.Copies = *in.Copies
	}
	return b
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var in api.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Title == nil || in.Author == nil || in.ISBN == nil {
		writeError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	s.mu.Lock()
	b := s.stamp(apply(api.Book{}, in))
	s.books = append(s.books, b)
	s.mu.Unlock()

	writeEnvelope(w, http.StatusCreated, "Book created successfully", b, nil)
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	var in api.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	s.books[i] = s.stamp(apply(s.books[i], in))
	writeEnvelope(w, http.StatusOK, "Book updated successfully", s.books[i], nil)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	writeEnvelope[any](w, http.StatusOK, "Book deleted successfully", nil, nil)
}

func (s *Server) borrowBook(w http.ResponseWriter, r *http.Request) {
	var in api.BorrowInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(in.Book)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	if in.Quantity <= 0 || in.Quantity > s.books[i].Copies {
		writeError(w, http.StatusBadRequest, "Not enough copies available")
		return
	}

	b := s.books[i]
	b.Copies -= in.Quantity
	s.books[i] = s.stamp(b)

	now := time.Now().UTC().Truncate(time.Second)
	rec := api.BorrowRecord{
		ID:        uuid.NewString(),
		Book:      in.Book,
		Quantity:  in.Quantity,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.borrows = append(s.borrows, rec)
	writeEnvelope(w, http.StatusCreated, "Book borrowed successfully", rec, nil)
}

func (s *Server) borrowSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := map[string]int{}
	for _, rec := range s.borrows {
		totals[rec.Book] += rec.Quantity
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]api.BorrowSummaryItem, 0, len(ids))
	for _, id := range ids {
		var item api.BorrowSummaryItem
		if i := s.find(id); i >= 0 {
			item.Book.Title = s.books[i].Title
			item.Book.ISBN = s.books[i].ISBN
		}
		item.TotalQuantity = totals[id]
		items = append(items, item)
	}
	writeEnvelope(w, http.StatusOK, "Borrowed books summary retrieved successfully", items, nil)
}
