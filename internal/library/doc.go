// Copyright © 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: MIT

// Package library names the operations of the catalog service and binds
// them to the query cache. It is the only place that knows which operation
// provides or invalidates which tag, and it performs the checks that must
// pass before a request is allowed onto the network.
package library
