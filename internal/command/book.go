// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/meta"
)

// ErrMissingID is returned when a command needing a book id got none.
var ErrMissingID = errors.New("a book id is required")

// bookID is the first positional argument.
func bookID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}

// bookRunner is the runner shared by the commands that print one book.
func bookRunner(name string, examples [][2]string, fetch func(context.Context, *cli.Command, *library.Catalog) (api.Book, error)) *ActionRunner[api.Book] {
	return &ActionRunner[api.Book]{
		CommandName:  name,
		SchemaType:   reflect.TypeOf(api.Book{}),
		DefaultAttrs: attrs.BookDefaults + ",description,createdAt:created,updatedAt:updated",
		Examples:     examples,
		FetchFn:      fetch,
	}
}

// bookFlags are the fields of a book body. Nothing is required here; create
// checks the required ones itself so every problem is reported at once.
func bookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "book title"},
		&cli.StringFlag{Name: "author", Usage: "book author"},
		&cli.StringFlag{
			Name:  "genre",
			Usage: "one of FICTION, NON_FICTION, SCIENCE, HISTORY, BIOGRAPHY, FANTASY",
			Validator: func(v string) error {
				return FlagValidators(v, GenreValidator)
			},
		},
		&cli.StringFlag{Name: "isbn", Usage: "ISBN"},
		&cli.StringFlag{Name: "description", Usage: "free text description"},
		&cli.IntFlag{
			Name:  "copies",
			Usage: "number of copies",
			Validator: func(v int) error {
				return FlagValidators(v, NonNegativeValidator)
			},
		},
	}
}

// BookInputFromFlags collects the book fields that were set on the command
// line. Unset flags stay nil and are left out of the request.
func BookInputFromFlags(cmd *cli.Command) api.BookInput {
	var in api.BookInput
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := strings.TrimSpace(cmd.String(name))
		return &v
	}

	in.Title = str("title")
	in.Author = str("author")
	in.ISBN = str("isbn")
	in.Description = str("description")
	if cmd.IsSet("genre") {
		g, _ := api.ParseGenre(cmd.String("genre"))
		in.Genre = &g
	}
	if cmd.IsSet("copies") {
		c := cmd.Int("copies")
		in.Copies = &c
	}
	return in
}

var getExamples = [][2]string{
	{"libctl get 6650c0ffee", "one book"},
	{"libctl get 6650c0ffee -o yaml", "one book as YAML"},
	{"libctl get 6650c0ffee -a createdAt:created:h", "with a humanized creation time"},
}

// GetCommandAction shows one book.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	return bookRunner("get", getExamples, func(ctx context.Context, cmd *cli.Command, c *library.Catalog) (api.Book, error) {
		id, err := bookID(cmd)
		if err != nil {
			return api.Book{}, err
		}
		r := c.Book(ctx, id)
		return r.Data.Data, r.Err
	}).Run(ctx, cmd)
}

func GetCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "get",
		Usage:     "show one book",
		UsageText: `libctl get ID [options]`,
		Action:    GetCommandAction,
		Meta:      meta,
	}).Build()
}

var createExamples = [][2]string{
	{"libctl create --title Dune --author 'Frank Herbert' --genre fiction --isbn 9780441013593 --copies 3", "add a book"},
	{"libctl create ... -o json", "add a book and print the stored record as JSON"},
}

// CreateCommandAction adds a book. Title, author, genre and ISBN are
// required; availability follows copies.
func CreateCommandAction(ctx context.Context, cmd *cli.Command) error {
	return bookRunner("create", createExamples, func(ctx context.Context, cmd *cli.Command, c *library.Catalog) (api.Book, error) {
		in := BookInputFromFlags(cmd)
		if in.Genre == nil {
			return api.Book{}, &library.ValidationError{Field: "genre", Message: "Please select a genre."}
		}
		if in.Copies == nil {
			copies := 0
			in.Copies = &copies
		}
		book, err := c.Create(ctx, in)
		if err != nil {
			return api.Book{}, err
		}
		notice(cmd, "Book created successfully!")
		return book, nil
	}).Run(ctx, cmd)
}

func CreateCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "create",
		Usage:     "add a book",
		UsageText: `libctl create --title T --author A --genre G --isbn I [--description D] [--copies N] [options]`,
		Flags:     bookFlags(),
		Action:    CreateCommandAction,
		Meta:      meta,
	}).Build()
}

var updateExamples = [][2]string{
	{"libctl update 6650c0ffee --copies 0", "mark a book unavailable"},
	{"libctl update 6650c0ffee --title 'Dune Messiah'", "rename a book; other fields are untouched"},
}

// UpdateCommandAction sends only the flags that were given.
func UpdateCommandAction(ctx context.Context, cmd *cli.Command) error {
	return bookRunner("update", updateExamples, func(ctx context.Context, cmd *cli.Command, c *library.Catalog) (api.Book, error) {
		id, err := bookID(cmd)
		if err != nil {
			return api.Book{}, err
		}
		in := BookInputFromFlags(cmd)
		if in.Empty() {
			return api.Book{}, errors.New("nothing to update, set at least one of --title, --author, --genre, --isbn, --description or --copies")
		}
		book, err := c.Update(ctx, id, in)
		if err != nil {
			return api.Book{}, err
		}
		notice(cmd, "Book updated successfully!")
		return book, nil
	}).Run(ctx, cmd)
}

func UpdateCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "update",
		Usage:     "change a book",
		UsageText: `libctl update ID [--title T] [--author A] [--genre G] [--isbn I] [--description D] [--copies N] [options]`,
		Flags:     bookFlags(),
		Action:    UpdateCommandAction,
		Meta:      meta,
	}).Build()
}
