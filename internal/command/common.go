// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/api"
	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/library"
	"github.com/staranto/libctl/internal/meta"
	"github.com/staranto/libctl/internal/output"
	"github.com/staranto/libctl/internal/query"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr libctl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "libctl-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attributes of t when --schema is set, and
// returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, w io.Writer, t reflect.Type) bool {
	if t != nil && cmd.Bool("schema") {
		output.DumpSchema(w, t)
		return true
	}
	return false
}

// DumpExamplesIfRequested prints the command's examples when --examples is
// set, and returns true if it handled the request.
func DumpExamplesIfRequested(cmd *cli.Command, w io.Writer, examples [][2]string) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(w, examples)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults string) (attrs.AttrList, error) {
	al, err := attrs.Parse(defaults, cmd.String("attrs"))
	if err != nil {
		return nil, fmt.Errorf("invalid --attrs: %w", err)
	}
	return al, nil
}

// OutputOptions gathers the presentation flags.
func OutputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// Emit marshals v and passes it to the common output routine. parent is the
// path of the dataset inside v, "data" for a service envelope.
func Emit(v any, al attrs.AttrList, opts output.Options, parent string, w io.Writer) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw, al, opts, parent, w)
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewCatalog connects to the service named by --api. Each invocation gets
// its own store, which lives as long as ctx.
func NewCatalog(ctx context.Context, cmd *cli.Command) (*library.Catalog, error) {
	client, err := api.NewClient(cmd.String("api"), api.WithTimeout(cmd.Duration("timeout")))
	if err != nil {
		return nil, err
	}
	log.Debugf("api: %s", client.BaseURL())
	return library.New(client, query.NewStore(ctx)), nil
}

// CommandBuilder is a helper that constructs a cli.Command for the
// subcommands using a consistent pattern. The builder wires metadata, adds
// the api, tldr, schema and examples flags, applies the output flags when
// the command has output, and sets up validators.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	NoOutput  bool
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := append(cb.Flags,
		newTLDRFlag(),
		newExamplesFlag(),
		NewAPIFlag(cb.Name, cb.Meta.Config.Source),
		NewTimeoutFlag(cb.Name, cb.Meta.Config.Source),
	)
	if !cb.NoOutput {
		flags = append(flags, newSchemaFlag())
		flags = append(flags, NewGlobalFlags(cb.Name)...)
	}

	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// GlobalFlagsValidator rejects combinations the flag validators cannot see
// one flag at a time.
func GlobalFlagsValidator(_ context.Context, c *cli.Command) error {
	if c.String("output") == "raw" && (c.String("filter") != "" || c.String("sort") != "") {
		return errors.New("--filter and --sort do not apply to --output raw")
	}
	return nil
}

// ActionRunner[T] encapsulates the common action pattern for all output
// producing subcommands. It handles the metadata, short-circuit checks,
// attrs, catalog set up and output emission, with the data itself provided
// by FetchFn.
type ActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs string
	Examples     [][2]string
	// Parent is the path of the rows inside T.
	Parent string
	// Empty is the text output when there are no rows. It may depend on
	// the result, hence the func.
	Empty func(T) string
	// Footer, when set, is written to stderr after text output.
	Footer  func(T) string
	FetchFn func(context.Context, *cli.Command, *library.Catalog) (T, error)
}

// Run executes the action with the provided context and command.
func (ar *ActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	// Step 1: GetMeta + debug.
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	// Step 2: Short-circuit checks.
	if ShortCircuitTLDR(ctx, cmd, ar.CommandName) {
		return nil
	}
	if DumpExamplesIfRequested(cmd, m.Stdout(), ar.Examples) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, m.Stdout(), ar.SchemaType) {
		return nil
	}

	// Step 3: BuildAttrs + debug.
	al, err := BuildAttrs(cmd, ar.DefaultAttrs)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	// Step 4: Fetch data.
	catalog, err := NewCatalog(ctx, cmd)
	if err != nil {
		return err
	}
	result, err := ar.FetchFn(ctx, cmd, catalog)
	if err != nil {
		return err
	}

	// Step 5: Emit + return.
	opts := OutputOptions(cmd)
	if ar.Empty != nil {
		opts.Empty = ar.Empty(result)
	}
	if err := Emit(result, al, opts, ar.Parent, m.Stdout()); err != nil {
		return err
	}
	if ar.Footer != nil && opts.Format == "text" {
		if footer := ar.Footer(result); footer != "" {
			fmt.Fprintln(m.Stderr(), footer)
		}
	}
	return nil
}
