// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"
	"os"

	"github.com/staranto/libctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context

	// Where commands read confirmations from and write results to. Unset
	// streams fall back to the process's own.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (m Meta) Stdin() io.Reader {
	if m.In == nil {
		return os.Stdin
	}
	return m.In
}

func (m Meta) Stdout() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

func (m Meta) Stderr() io.Writer {
	if m.Err == nil {
		return os.Stderr
	}
	return m.Err
}
