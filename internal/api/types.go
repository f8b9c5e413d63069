// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"strings"
	"time"
)

// Genre is the closed set of book genres the service accepts.
type Genre string

const (
	Fiction    Genre = "FICTION"
	NonFiction Genre = "NON_FICTION"
	Science    Genre = "SCIENCE"
	History    Genre = "HISTORY"
	Biography  Genre = "BIOGRAPHY"
	Fantasy    Genre = "FANTASY"
)

// Genres lists every genre in display order.
var Genres = []Genre{Fiction, NonFiction, Science, History, Biography, Fantasy}

// ParseGenre matches s case-insensitively, accepting "-" or " " for "_".
func ParseGenre(s string) (Genre, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, g := range Genres {
		if string(g) == norm {
			return g, true
		}
	}
	return "", false
}

func (g Genre) Valid() bool {
	for _, candidate := range Genres {
		if candidate == g {
			return true
		}
	}
	return false
}

// Next returns the genre after g, wrapping around. Unknown genres map to the
// first one.
func (g Genre) Next() Genre {
	for i, candidate := range Genres {
		if candidate == g {
			return Genres[(i+1)%len(Genres)]
		}
	}
	return Genres[0]
}

type Book struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       Genre     `json:"genre"`
	ISBN        string    `json:"isbn"`
	Description string    `json:"description,omitempty"`
	Copies      int       `json:"copies"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int       `json:"__v,omitempty"`
}

// BookInput is a partial book. Nil fields are left out of the request body,
// which is what lets an update send only what changed.
type BookInput struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Genre       *Genre  `json:"genre,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	Description *string `json:"description,omitempty"`
	Copies      *int    `json:"copies,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// Empty reports whether no field is set.
func (in BookInput) Empty() bool {
	return in == BookInput{}
}

type BorrowRecord struct {
	ID        string    `json:"_id"`
	Book      string    `json:"book"`
	Quantity  int       `json:"quantity"`
	DueDate   time.Time `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"__v,omitempty"`
}

type BorrowInput struct {
	Book     string    `json:"book"`
	Quantity int       `json:"quantity"`
	DueDate  time.Time `json:"dueDate"`
}

type BorrowSummaryItem struct {
	Book struct {
		Title string `json:"title"`
		ISBN  string `json:"isbn"`
	} `json:"book"`
	TotalQuantity int `json:"totalQuantity"`
}

type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

// Envelope is the wrapper every service response comes in.
type Envelope[T any] struct {
	StatusCode int         `json:"statusCode"`
	Data       T           `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Defaults applied to ListBooksArgs.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type ListBooksArgs struct {
	Page  int `json:"page" url:"page"`
	Limit int `json:"limit" url:"limit"`
}

// Normalize fills in the defaults for unset values.
func (a ListBooksArgs) Normalize() ListBooksArgs {
	if a.Page <= 0 {
		a.Page = DefaultPage
	}
	if a.Limit <= 0 {
		a.Limit = DefaultLimit
	}
	return a
}

type UpdateBookArgs struct {
	ID      string    `json:"id"`
	Changes BookInput `json:"changes"`
}
