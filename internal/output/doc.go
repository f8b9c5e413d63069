// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns service responses into what a command prints: rows
// are filtered, transformed and sorted, then written as a table, JSON, YAML
// or the raw response.
package output
