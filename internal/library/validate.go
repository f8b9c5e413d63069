// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package library

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staranto/libctl/internal/api"
)

// InvalidQuantityTitle heads the dialog shown for a rejected borrow.
const InvalidQuantityTitle = "Invalid Quantity"

// DueDateLayout is the form and flag layout for due dates.
const DueDateLayout = "2006-01-02"

// ValidationError is a client-side rejection. Nothing was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateBorrow requires 1 <= quantity <= book.Copies.
func ValidateBorrow(book api.Book, quantity int) error {
	if quantity < 1 || quantity > book.Copies {
		return invalid("quantity", "Quantity must be between 1 and %d (available copies).", book.Copies)
	}
	return nil
}

// DeriveAvailability sets Available from Copies when Copies is present.
func DeriveAvailability(in api.BookInput) api.BookInput {
	if in.Copies != nil {
		available := *in.Copies > 0
		in.Available = &available
	}
	return in
}

// ValidateBookInput checks a create body. Title, author and ISBN are
// required.
func ValidateBookInput(in api.BookInput) error {
	var errs []error
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"title", in.Title},
		{"author", in.Author},
		{"isbn", in.ISBN},
	} {
		if f.v == nil || strings.TrimSpace(*f.v) == "" {
			errs = append(errs, invalid(f.name, "%s is required", label(f.name)))
		}
	}
	if err := ValidateBookChanges(in); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateBookChanges checks only the fields that are set.
func ValidateBookChanges(in api.BookInput) error {
	var errs []error
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"title", in.Title},
		{"author", in.Author},
		{"isbn", in.ISBN},
	} {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			errs = append(errs, invalid(f.name, "%s cannot be empty", label(f.name)))
		}
	}
	if in.Genre != nil && !in.Genre.Valid() {
		errs = append(errs, invalid("genre", "Genre must be one of %s", genreList()))
	}
	if in.Copies != nil && *in.Copies < 0 {
		errs = append(errs, invalid("copies", "Copies cannot be negative"))
	}
	return errors.Join(errs...)
}

func label(field string) string {
	if field == "isbn" {
		return "ISBN"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func genreList() string {
	names := make([]string, len(api.Genres))
	for i, g := range api.Genres {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

// Today is midnight UTC of the current day, the default due date.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// ParseDueDate reads a YYYY-MM-DD date as midnight UTC. Empty means Today.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Today(), nil
	}
	t, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return time.Time{}, invalid("dueDate", "Due date must look like %s", DueDateLayout)
	}
	return t, nil
}
