// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler writing to stdout and a log
// level from the LIBCTL_LOG env variable.
func InitLogger() {
	initLogger(os.Stdout)
}

// InitFileLogger is InitLogger for full-screen mode. Entries go to the file
// named by LIBCTL_LOG_FILE, or nowhere, so they never land on the screen.
// The returned func closes the file.
func InitFileLogger() (func() error, error) {
	path := os.Getenv("LIBCTL_LOG_FILE")
	if path == "" {
		initLogger(io.Discard)
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:mnd
	if err != nil {
		initLogger(io.Discard)
		return func() error { return nil }, fmt.Errorf("failed to open log file: %w", err)
	}
	initLogger(f)
	return f.Close, nil
}

func initLogger(w io.Writer) {
	log.SetHandler(&CustomHandler{Writer: w})

	// Unknown levels fall back to ERROR rather than panicking the way
	// SetLevelFromString does.
	level, err := log.ParseLevel(strings.ToLower(os.Getenv("LIBCTL_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// CustomHandler formats log messages and writes them to Writer.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface. Fetches log from their own
// goroutines, hence the lock.
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.Writer
	if w == nil {
		w = os.Stdout
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var fields strings.Builder
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&fields, " %s=%v", name, e.Fields.Get(name))
	}

	fmt.Fprintf(w, "%s %.1s %s%s\n", timestamp, level, e.Message, fields.String())
	return nil
}
