// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package tui is the full-screen front end. Each screen is reached by a
// URL-style path, the same paths the web front end of the library service
// uses, and reads its data through watches on the query store.
package tui
