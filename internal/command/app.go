// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/config"
	"github.com/staranto/libctl/internal/meta"
)

// InitApp builds the command tree for args, writing to the process's own
// streams.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the libctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)
	return NewApp(meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}), nil
}

// NewApp builds the command tree around m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:      "libctl",
		Usage:     "Library catalog control",
		Writer:    m.Stdout(),
		ErrWriter: m.Stderr(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "libctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		ListCommandBuilder(m),
		GetCommandBuilder(m),
		CreateCommandBuilder(m),
		UpdateCommandBuilder(m),
		DeleteCommandBuilder(m),
		BorrowCommandBuilder(m),
		SummaryCommandBuilder(m),
		UICommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
