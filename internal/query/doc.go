// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package query is the in-memory cache between the screens and the API
// client. Reads are Queries: cached per (name, arguments), tagged, and
// deduplicated while in flight. Writes are Mutations: on success they
// invalidate every entry carrying one of their tags. Watched entries are
// refetched right away, unwatched ones are dropped. An untagged entry is
// dropped when its last watcher closes.
package query
