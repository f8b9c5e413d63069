// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/tui"
)

var (
	ErrNotConfirmed = errors.New("delete cancelled")
	ErrNoTerminal   = errors.New("not a terminal")
)

// isTerminal is swapped out by tests.
var isTerminal = func(fd int) bool {
	return term.IsTerminal(fd)
}

var deleteExamples = [][2]string{
	{"libctl delete 6650c0ffee", "delete after confirming"},
	{"libctl delete 6650c0ffee --yes", "delete without asking"},
}

// notice writes a status line to stderr.
func notice(cmd *cli.Command, text string) {
	fmt.Fprintln(GetMeta(cmd).Stderr(), text)
}

// confirmDelete asks on stdin. Anything but y or yes is a no.
func confirmDelete(m meta.Meta, title string) (bool, error) {
	if m.In == nil && !isTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("%w, pass --yes to delete without asking", ErrNoTerminal)
	}
	fmt.Fprintf(m.Stderr(), "Are you sure? %q will be deleted. %s [y/N] ", title, tui.ConfirmDeleteText)

	answer, err := bufio.NewReader(m.Stdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// DeleteCommandAction deletes one book, asking first unless --yes.
func DeleteCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if ShortCircuitTLDR(ctx, cmd, "delete") || DumpExamplesIfRequested(cmd, m.Stdout(), deleteExamples) {
		return nil
	}

	id, err := bookID(cmd)
	if err != nil {
		return err
	}
	catalog, err := NewCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		r := catalog.Book(ctx, id)
		if r.Err != nil {
			return r.Err
		}
		ok, err := confirmDelete(m, r.Data.Data.Title)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotConfirmed
		}
	}

	if err := catalog.Delete(ctx, id); err != nil {
		log.WithError(err).Debug("delete failed")
		return fmt.Errorf("%s %s", tui.DeleteFailedText, api.Describe(err))
	}
	fmt.Fprintln(m.Stdout(), tui.BookDeletedText)
	return nil
}

func DeleteCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "delete",
		Usage:     "delete a book",
		UsageText: `libctl delete ID [--yes]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "do not ask for confirmation",
				HideDefault: true,
			},
		},
		NoOutput: true,
		Action:   DeleteCommandAction,
		Meta:     meta,
	}).Build()
}
