// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// libctl is a client for a library catalog service. It lists, creates,
// updates and deletes books, records borrows and shows the borrow summary,
// either as scriptable commands or as interactive screens (libctl ui).
package main
