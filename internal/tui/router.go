// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
)

// Paths of the screens.
const (
	PathHome          = "/"
	PathBooks         = "/books"
	PathCreateBook    = "/create-book"
	PathBorrowSummary = "/borrow-summary"
	PathEditBook      = "/edit-book/:id"
	PathBorrow        = "/borrow/:bookId"
	PathBookDetails   = "/books/:id"
)

// Params holds the values of the ":name" segments of a matched path.
type Params map[string]string

// Route maps a pattern to the screen built for it.
type Route struct {
	Pattern string
	build   func(e *env, p Params) screen
}

// Router matches paths against routes in order. A path no route matches
// gets the not found screen.
type Router struct {
	routes   []Route
	notFound func(e *env, path string) screen
}

// NewRouter returns the router for every screen of the app.
func NewRouter() *Router {
	return &Router{
		routes: []Route{
			{PathHome, func(e *env, _ Params) screen { return newHome(e) }},
			{PathBooks, func(e *env, _ Params) screen { return newList(e) }},
			{PathCreateBook, func(e *env, _ Params) screen { return newCreateForm(e) }},
			{PathBorrowSummary, func(e *env, _ Params) screen { return newSummary(e) }},
			{PathEditBook, func(e *env, p Params) screen { return newEditForm(e, p["id"]) }},
			{PathBorrow, func(e *env, p Params) screen { return newBorrow(e, p["bookId"]) }},
			{PathBookDetails, func(e *env, p Params) screen { return newDetails(e, p["id"]) }},
		},
		notFound: func(e *env, path string) screen { return newNotFound(e, path) },
	}
}

// Match returns the route for path and its parameters. ok is false when
// nothing matched.
func (r *Router) Match(path string) (Route, Params, bool) {
	for _, route := range r.routes {
		if params, ok := match(route.Pattern, path); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

func (r *Router) build(e *env, path string) screen {
	route, params, ok := r.Match(path)
	if !ok {
		return r.notFound(e, path)
	}
	return route.build(e, params)
}

func match(pattern, path string) (Params, bool) {
	want := split(pattern)
	got := split(path)
	if len(want) != len(got) {
		return nil, false
	}

	params := Params{}
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

// split drops the query string and a trailing slash, so "/books/" and
// "/books?x=1" both match "/books".
func split(path string) []string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
