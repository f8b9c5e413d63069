// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/tui"
)

var summaryExamples = [][2]string{
	{"libctl summary", "copies borrowed per book"},
	{"libctl summary -s -total", "most borrowed first"},
	{"libctl summary -f total>2", "books with more than two copies out"},
}

// SummaryCommandAction shows the total borrowed per book.
func SummaryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ActionRunner[library.Summary]{
		CommandName:  "summary",
		SchemaType:   reflect.TypeOf(api.BorrowSummaryItem{}),
		DefaultAttrs: attrs.SummaryDefaults,
		Examples:     summaryExamples,
		Parent:       "data",
		Empty:        func(library.Summary) string { return tui.NoBorrowsText },
		FetchFn: func(ctx context.Context, _ *cli.Command, c *library.Catalog) (library.Summary, error) {
			r := c.Summary(ctx)
			return r.Data, r.Err
		},
	}
	return runner.Run(ctx, cmd)
}

func SummaryCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "summary",
		Usage:     "borrowed books summary",
		UsageText: `libctl summary [options]`,
		Action:    SummaryCommandAction,
		Meta:      meta,
	}).Build()
}
