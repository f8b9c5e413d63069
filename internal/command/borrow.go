// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/tui"
)

var borrowExamples = [][2]string{
	{"libctl borrow 6650c0ffee", "borrow one copy, due today"},
	{"libctl borrow 6650c0ffee -q 2 --due 2026-12-01", "borrow two copies"},
}

// BorrowCommandAction fetches the book first so the quantity is checked
// against its copies before the borrow is sent.
func BorrowCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ActionRunner[api.BorrowRecord]{
		CommandName:  "borrow",
		SchemaType:   reflect.TypeOf(api.BorrowRecord{}),
		DefaultAttrs: attrs.BorrowDefaults,
		Examples:     borrowExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command, c *library.Catalog) (api.BorrowRecord, error) {
			id, err := bookID(cmd)
			if err != nil {
				return api.BorrowRecord{}, err
			}
			due, err := library.ParseDueDate(cmd.String("due"))
			if err != nil {
				return api.BorrowRecord{}, err
			}

			r := c.Book(ctx, id)
			if r.Err != nil {
				return api.BorrowRecord{}, r.Err
			}

			rec, err := c.Borrow(ctx, r.Data.Data, api.BorrowInput{Quantity: cmd.Int("quantity"), DueDate: due})
			var ve *library.ValidationError
			if errors.As(err, &ve) {
				return api.BorrowRecord{}, fmt.Errorf("%s: %w", library.InvalidQuantityTitle, err)
			}
			if err != nil {
				return api.BorrowRecord{}, fmt.Errorf("failed to borrow book: %w", err)
			}
			notice(cmd, tui.BookBorrowedText)
			return rec, nil
		},
	}
	return runner.Run(ctx, cmd)
}

func BorrowCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "borrow",
		Usage:     "borrow copies of a book",
		UsageText: `libctl borrow BOOK_ID [--quantity N] [--due YYYY-MM-DD] [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "quantity",
				Aliases: []string{"q"},
				Usage:   "copies to borrow",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "due",
				Usage: "due date, YYYY-MM-DD, default today",
				Validator: func(v string) error {
					return FlagValidators(v, DueDateValidator)
				},
			},
		},
		Action: BorrowCommandAction,
		Meta:   meta,
	}).Build()
}
