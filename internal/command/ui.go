// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	mylog "github.com/staranto/libctl/internal/log"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/tui"
)

var uiExamples = [][2]string{
	{"libctl ui", "start at the home screen"},
	{"libctl ui /books", "start at the book list"},
	{"libctl ui /borrow-summary", "start at the borrow summary"},
	{"LIBCTL_LOG=debug LIBCTL_LOG_FILE=/tmp/libctl.log libctl ui", "log to a file while the screen is up"},
}

// UICommandAction runs the full-screen interface. Logging is moved off the
// screen for as long as it runs.
func UICommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if ShortCircuitTLDR(ctx, cmd, "ui") || DumpExamplesIfRequested(cmd, m.Stdout(), uiExamples) {
		return nil
	}

	if !isTerminal(int(os.Stdin.Fd())) || !isTerminal(int(os.Stdout.Fd())) {
		return ErrNoTerminal
	}

	catalog, err := NewCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	closeLog, err := mylog.InitFileLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
		mylog.InitLogger()
	}()

	start := cmd.Args().First()
	log.Debugf("ui starting at %q", start)
	return tui.Run(ctx, catalog, start)
}

func UICommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "ui",
		Usage:     "interactive screens",
		UsageText: `libctl ui [PATH]`,
		NoOutput:  true,
		Action:    UICommandAction,
		Meta:      meta,
	}).Build()
}
