// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves --attrs, --filter and --sort paths against the
// JSON returned by the library service.
package driller
