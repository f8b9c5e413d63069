// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/tui"
)

var listExamples = [][2]string{
	{"libctl list", "first page of the catalog"},
	{"libctl list --page 2 --limit 5", "second page of five"},
	{"libctl list --all -f genre=FICTION", "every fiction book"},
	{"libctl list --all -s -copies -a description", "all books, most copies first, with descriptions"},
	{"libctl list @fiction", "run the argument set list.fiction from libctl.yaml"},
}

// ListCommandAction lists one page of books, or every page with --all. The
// page footer goes to stderr so stdout stays a clean dataset.
func ListCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := api.ListBooksArgs{Page: cmd.Int("page"), Limit: cmd.Int("limit")}.Normalize()

	if cmd.Bool("all") {
		runner := &ActionRunner[[]api.Book]{
			CommandName:  "list",
			SchemaType:   reflect.TypeOf(api.Book{}),
			DefaultAttrs: attrs.BookDefaults,
			Examples:     listExamples,
			Empty:        func([]api.Book) string { return tui.NoBooksText },
			FetchFn: func(ctx context.Context, _ *cli.Command, c *library.Catalog) ([]api.Book, error) {
				return AllBooks(ctx, c, args.Limit)
			},
		}
		return runner.Run(ctx, cmd)
	}

	runner := &ActionRunner[library.BooksPage]{
		CommandName:  "list",
		SchemaType:   reflect.TypeOf(api.Book{}),
		DefaultAttrs: attrs.BookDefaults,
		Examples:     listExamples,
		Parent:       "data",
		Empty: func(library.BooksPage) string {
			if args.Page == 1 {
				return tui.NoBooksText
			}
			return tui.NoMoreBooksText
		},
		FetchFn: func(ctx context.Context, _ *cli.Command, c *library.Catalog) (library.BooksPage, error) {
			r := c.Books(ctx, args)
			return r.Data, r.Err
		},
		Footer: func(page library.BooksPage) string {
			p := page.Pagination
			if p == nil {
				return ""
			}
			return fmt.Sprintf("Page %d of %d (%d total items)", p.CurrentPage, max(p.TotalPages, 1), p.TotalItems)
		},
	}
	return runner.Run(ctx, cmd)
}

// AllBooks walks the pages until the last one.
func AllBooks(ctx context.Context, c *library.Catalog, limit int) ([]api.Book, error) {
	var books []api.Book
	for page := 1; ; page++ {
		r := c.Books(ctx, api.ListBooksArgs{Page: page, Limit: limit})
		if r.Err != nil {
			return nil, fmt.Errorf("failed to list page %d: %w", page, r.Err)
		}
		books = append(books, r.Data.Data...)

		p := r.Data.Pagination
		if p == nil || page >= p.TotalPages || len(r.Data.Data) == 0 {
			return books, nil
		}
	}
}

// ListCommandBuilder constructs the cli.Command for "list".
func ListCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "list",
		Usage:     "list books",
		UsageText: `libctl list [@set] [--page N] [--limit N] [--all] [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "page to show",
				Value: api.DefaultPage,
				Validator: func(v int) error {
					return FlagValidators(v, PositiveValidator)
				},
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "books per page",
				Value:   api.DefaultLimit,
				Sources: cli.NewValueSourceChain(
					yaml.YAML("list.limit", altsrc.StringSourcer(meta.Config.Source)),
					yaml.YAML("limit", altsrc.StringSourcer(meta.Config.Source)),
				),
				Validator: func(v int) error {
					return FlagValidators(v, PositiveValidator)
				},
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "walk every page",
				HideDefault: true,
			},
		},
		Action: ListCommandAction,
		Meta:   meta,
	}).Build()
}
