// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Match(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		path    string
		pattern string
		params  Params
		ok      bool
	}{
		{"/", PathHome, Params{}, true},
		{"", PathHome, Params{}, true},
		{"/books", PathBooks, Params{}, true},
		{"/books/", PathBooks, Params{}, true},
		{"/books?page=2", PathBooks, Params{}, true},
		{"/create-book", PathCreateBook, Params{}, true},
		{"/borrow-summary", PathBorrowSummary, Params{}, true},
		{"/books/abc123", PathBookDetails, Params{"id": "abc123"}, true},
		{"/edit-book/abc123", PathEditBook, Params{"id": "abc123"}, true},
		{"/borrow/abc123", PathBorrow, Params{"bookId": "abc123"}, true},
		{"/edit-book", "", nil, false},
		{"/edit-book/", "", nil, false},
		{"/books/a/b", "", nil, false},
		{"/nowhere", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, params, ok := r.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.pattern, route.Pattern)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestRouter_BuildFallsBackToNotFound(t *testing.T) {
	r := NewRouter()
	e := &env{}

	s := r.build(e, "/no/such/screen")
	nf, ok := s.(*notFound)
	if assert.True(t, ok) {
		assert.Equal(t, "/no/such/screen", nf.path)
		assert.Contains(t, nf.View(), "/no/such/screen")
	}

	_, ok = r.build(e, "/books/42").(*details)
	assert.True(t, ok)
	_, ok = r.build(e, "/edit-book/42").(*form)
	assert.True(t, ok)
	_, ok = r.build(e, "/borrow/42").(*borrow)
	assert.True(t, ok)
}
