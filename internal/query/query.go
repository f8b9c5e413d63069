// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"

	"github.com/apex/log"
	jsoniter "github.com/json-iterator/go"
)

// Query is a cacheable read. Provides lists the tags its entries carry. When
// Skip is set and returns true for the arguments, the query stays
// uninitiated and Fetch is never called.
type Query[A, R any] struct {
	Name     string
	Provides Tag
	Skip     func(A) bool
	Fetch    func(context.Context, A) (R, error)
}

// Key serializes args so equal argument values share one entry.
func (q Query[A, R]) Key(args A) Key {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(args)
	if err != nil {
		return Key{Op: q.Name, Args: fmt.Sprintf("%#v", args)}
	}
	return Key{Op: q.Name, Args: string(b)}
}

func (q Query[A, R]) skipped(args A) bool {
	return q.Skip != nil && q.Skip(args)
}

func (q Query[A, R]) fetcher(args A) Fetcher {
	return func(ctx context.Context) (any, error) {
		return q.Fetch(ctx, args)
	}
}

// Get returns the cached result for args, fetching it when there is none, or
// joining the fetch already in flight.
func (q Query[A, R]) Get(ctx context.Context, s *Store, args A) Result[R] {
	if q.skipped(args) {
		return Result[R]{}
	}
	return typed[R](s.get(ctx, q.Key(args), q.Provides, q.fetcher(args)))
}

// Peek returns the cached result without fetching.
func (q Query[A, R]) Peek(s *Store, args A) (Result[R], bool) {
	if q.skipped(args) {
		return Result[R]{}, false
	}
	st, ok := s.peek(q.Key(args))
	return typed[R](st), ok
}

// Watch mounts a subscriber for args. A fetch starts unless one is already
// cached or in flight. The caller must Close the watch when done.
func (q Query[A, R]) Watch(s *Store, args A) *Watch[R] {
	if q.skipped(args) {
		return &Watch[R]{}
	}
	return &Watch[R]{w: s.watch(q.Key(args), q.Provides, q.fetcher(args))}
}

// Watch delivers the state of one entry as it changes. Updates are
// conflated: a slow reader sees only the latest state.
type Watch[R any] struct {
	w *watcher
}

// Current returns the entry's state now. A skipped watch is uninitiated.
func (w *Watch[R]) Current() Result[R] {
	if w == nil || w.w == nil {
		return Result[R]{}
	}
	return typed[R](w.w.current())
}

// Next blocks until the entry changes, ctx ends or the watch is closed. The
// bool is false in the latter two cases, and always for a skipped watch.
func (w *Watch[R]) Next(ctx context.Context) (Result[R], bool) {
	if w == nil || w.w == nil {
		return Result[R]{}, false
	}

	select {
	case <-ctx.Done():
		return Result[R]{}, false
	case st, ok := <-w.w.updates:
		if !ok || w.w.isClosed() {
			return Result[R]{}, false
		}
		return typed[R](st), true
	}
}

// Close detaches the watch. Anything arriving later is dropped.
func (w *Watch[R]) Close() {
	if w == nil || w.w == nil {
		return
	}
	w.w.close()
}

// Mutation is a write. On success it invalidates every entry carrying one of
// the Invalidates tags; on failure nothing is touched.
type Mutation[A, R any] struct {
	Name        string
	Invalidates Tag
	Do          func(context.Context, A) (R, error)
}

func (m Mutation[A, R]) Run(ctx context.Context, s *Store, args A) (R, error) {
	v, err := m.Do(ctx, args)
	if err != nil {
		log.WithError(err).Debugf("mutation %s failed", m.Name)
		return v, err
	}

	log.Debugf("mutation %s ok, invalidating %s", m.Name, m.Invalidates)
	s.Invalidate(m.Invalidates)
	return v, nil
}
