// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// Fetcher performs the read behind a cache entry.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	key      Key
	tags     Tag
	fetch    Fetcher
	st       state
	gen      uint64
	watchers map[uint64]*watcher
}

func (e *entry) notify() {
	for _, w := range e.watchers {
		w.push(e.st)
	}
}

// Store holds every cache entry for the life of the process. Fetches run on
// the store's context, so a caller giving up never cancels a fetch other
// callers share.
type Store struct {
	ctx     context.Context
	mu      sync.Mutex
	entries map[Key]*entry
	flight  singleflight.Group
	nextID  uint64

	fetches atomic.Int64
	hits    atomic.Int64
}

func NewStore(ctx context.Context) *Store {
	return &Store{
		ctx:     ctx,
		entries: map[Key]*entry{},
	}
}

// Stats is a snapshot of store counters.
type Stats struct {
	Entries int
	Fetches int64
	Hits    int64
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries: len(s.entries),
		Fetches: s.fetches.Load(),
		Hits:    s.hits.Load(),
	}
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	return s.Stats().Entries
}

// Reset drops every entry and detaches every watcher.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		s.flight.Forget(key.String())
		for _, w := range e.watchers {
			w.detach()
		}
		delete(s.entries, key)
	}
	log.Debug("query store reset")
}

// Invalidate is called after a successful mutation. Entries carrying any of
// tags are refetched when watched and dropped otherwise. A fetch already in
// flight for an invalidated entry no longer updates it.
func (s *Store) Invalidate(tags Tag) {
	if tags == None {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if !e.tags.Has(tags) {
			continue
		}

		e.gen++
		s.flight.Forget(key.String())

		if len(e.watchers) == 0 {
			log.Debugf("invalidate %s: dropped", key)
			delete(s.entries, key)
			continue
		}

		log.Debugf("invalidate %s: refetching for %d watcher(s)", key, len(e.watchers))
		s.begin(e, e.fetch)
	}
}

// lookup returns the entry for key, creating it. Caller holds s.mu.
func (s *Store) lookup(key Key, tags Tag, fetch Fetcher) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{
			key:      key,
			tags:     tags,
			watchers: map[uint64]*watcher{},
		}
		s.entries[key] = e
	}
	e.fetch = fetch
	return e
}

// begin marks e pending and starts, or joins, the one fetch for its key.
// Caller holds s.mu.
func (s *Store) begin(e *entry, fetch Fetcher) <-chan singleflight.Result {
	if e.st.status != StatusPending {
		e.st.status = StatusPending
		e.st.err = nil
		e.notify()
	}

	gen := e.gen
	return s.flight.DoChan(e.key.String(), func() (any, error) {
		return s.run(e, gen, fetch), nil
	})
}

func (s *Store) run(e *entry, gen uint64, fetch Fetcher) state {
	s.fetches.Add(1)
	v, err := fetch(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := e.st
	if err != nil {
		next.status = StatusError
		next.err = err
		log.WithError(err).Debugf("fetch %s failed", e.key)
	} else {
		next = state{
			status:    StatusSuccess,
			data:      v,
			hasData:   true,
			updatedAt: time.Now(),
		}
		log.Debugf("fetch %s ok", e.key)
	}

	if e.gen != gen || s.entries[e.key] != e {
		// Invalidated while in flight. Whoever asked still gets this answer
		// but the entry does not keep it.
		return next
	}

	e.st = next
	e.notify()
	return next
}

func (s *Store) get(ctx context.Context, key Key, tags Tag, fetch Fetcher) state {
	s.mu.Lock()
	e := s.lookup(key, tags, fetch)
	if e.st.status == StatusSuccess {
		st := e.st
		s.mu.Unlock()
		s.hits.Add(1)
		return st
	}
	ch := s.begin(e, fetch)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return state{status: StatusError, err: ctx.Err()}
	case r := <-ch:
		st, _ := r.Val.(state)
		return st
	}
}

func (s *Store) peek(key Key) (state, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return state{}, false
	}
	return e.st, true
}

func (s *Store) watch(key Key, tags Tag, fetch Fetcher) *watcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key, tags, fetch)
	s.nextID++
	w := &watcher{
		id:      s.nextID,
		store:   s,
		entry:   e,
		updates: make(chan state, 1),
	}
	e.watchers[w.id] = w

	if e.st.status == StatusUninitiated || e.st.status == StatusError {
		s.begin(e, fetch)
	}
	return w
}

// watcher is one mounted subscriber of an entry.
type watcher struct {
	id      uint64
	store   *Store
	entry   *entry
	updates chan state
	closed  bool
}

// push replaces any undelivered state with st. Only called with store.mu
// held, so there is never a second sender.
func (w *watcher) push(st state) {
	if w.closed {
		return
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- st
}

// detach unhooks w. Caller holds store.mu.
func (w *watcher) detach() {
	if w.closed {
		return
	}
	w.closed = true
	delete(w.entry.watchers, w.id)
	close(w.updates)
}

func (w *watcher) current() state {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return w.entry.st
}

func (w *watcher) isClosed() bool {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return w.closed
}

func (w *watcher) close() {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	w.detach()
	s.release(w.entry)
}

// release drops an untagged entry once its last watcher is gone. No mutation
// can invalidate it, so the next mount has to fetch it again. A fetch still
// in flight for it is not kept. Caller holds s.mu.
func (s *Store) release(e *entry) {
	if e.tags != None || len(e.watchers) > 0 || s.entries[e.key] != e {
		return
	}
	e.gen++
	s.flight.Forget(e.key.String())
	delete(s.entries, e.key)
	log.Debugf("release %s: dropped", e.key)
}
