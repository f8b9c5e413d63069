// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"strings"
	"time"
)

// Tag labels cache entries for bulk invalidation. Tags are bit flags so a set
// of them is just their OR.
type Tag uint8

const (
	Books Tag = 1 << iota
	Borrows

	None Tag = 0
)

// Has reports whether t and other share any tag.
func (t Tag) Has(other Tag) bool {
	return t&other != 0
}

func (t Tag) String() string {
	if t == None {
		return "None"
	}
	var names []string
	if t.Has(Books) {
		names = append(names, "Books")
	}
	if t.Has(Borrows) {
		names = append(names, "Borrows")
	}
	return strings.Join(names, "|")
}

type Status int

const (
	StatusUninitiated Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "uninitiated"
	}
}

// Key identifies one cache entry.
type Key struct {
	Op   string
	Args string
}

func (k Key) String() string {
	return k.Op + "(" + k.Args + ")"
}

// state is the untyped form of Result kept by the store.
type state struct {
	status    Status
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
}

// Result is what a call site sees. While a refetch is pending Data still holds
// the previous value and HasData stays true.
type Result[R any] struct {
	Status    Status
	Data      R
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

func (r Result[R]) Loading() bool {
	return r.Status == StatusPending && !r.HasData
}

func typed[R any](st state) Result[R] {
	r := Result[R]{
		Status:    st.status,
		HasData:   st.hasData,
		Err:       st.err,
		UpdatedAt: st.updatedAt,
	}
	if v, ok := st.data.(R); ok {
		r.Data = v
	}
	return r
}
