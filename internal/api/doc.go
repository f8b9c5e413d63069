// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package api is the HTTP client for the library REST service. It speaks the
// service's JSON envelope and turns failures into RequestError and
// NetworkError values.
package api
