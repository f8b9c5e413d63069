// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

// docgen turns docs/commands/<cmd>.md into
//   - docs/man/share/man1/libctl-<cmd>.1 via md2man
//   - docs/tldr/libctl-<cmd>.md from the Short description and Quick examples
//     sections, which is what `libctl <cmd> --tldr` shows.

const binary = "libctl"

func main() {
	var (
		root          string
		onlyIfChanged bool
	)
	flag.StringVar(&root, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files whose content changed")
	flag.Parse()

	if err := run(root, onlyIfChanged); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(root string, onlyIfChanged bool) error {
	var (
		commandsDir = filepath.Join(root, "docs", "commands")
		manDir      = filepath.Join(root, "docs", "man", "share", "man1")
		tldrDir     = filepath.Join(root, "docs", "tldr")
	)
	for _, dir := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return fmt.Errorf("reading commands dir: %w", err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			return err
		}

		man := filepath.Join(manDir, fmt.Sprintf("%s-%s.1", binary, cmd))
		if err := writeFile(man, md2man.Render(raw), onlyIfChanged); err != nil {
			return fmt.Errorf("writing man page for %s: %w", cmd, err)
		}

		tldr := filepath.Join(tldrDir, fmt.Sprintf("%s-%s.md", binary, cmd))
		if err := writeFile(tldr, []byte(parse(string(raw)).tldr(cmd)), onlyIfChanged); err != nil {
			return fmt.Errorf("writing tldr page for %s: %w", cmd, err)
		}
		processed++
	}

	if processed == 0 {
		return fmt.Errorf("no command markdown found under %s", commandsDir)
	}
	return nil
}

func writeFile(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, content, 0o644)
}

type example struct {
	desc string
	cmd  string
}

// page is what a tldr page needs from a command doc.
type page struct {
	title    string
	short    string
	examples []example
}

// parse reads the H1 title, the first paragraph under "## Short description"
// and the commented commands of the first fence under "## Quick examples".
func parse(md string) page {
	var p page
	sections := map[string][]string{}
	var current string

	for _, ln := range strings.Split(strings.ReplaceAll(md, "\r", ""), "\n") {
		switch {
		case strings.HasPrefix(ln, "# ") && p.title == "":
			p.title = strings.TrimSpace(ln[2:])
		case strings.HasPrefix(ln, "## "):
			current = strings.ToLower(strings.TrimSpace(ln[3:]))
		default:
			sections[current] = append(sections[current], ln)
		}
	}

	var para []string
	for _, ln := range sections["short description"] {
		if strings.TrimSpace(ln) == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, strings.TrimSpace(ln))
	}
	p.short = strings.Join(para, " ")
	if p.short == "" && p.title != "" {
		p.short = p.title + "."
	}

	p.examples = fenced(sections["quick examples"])
	return p
}

// fenced reads "# description" then "command" pairs from the first code
// fence in lines. A command without a description is still kept.
func fenced(lines []string) []example {
	var (
		exs    []example
		desc   string
		inside bool
	)
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if strings.HasPrefix(s, "```") {
			if inside {
				break
			}
			inside = true
			continue
		}
		if !inside || s == "" {
			continue
		}
		if strings.HasPrefix(s, "#") {
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
			continue
		}
		if desc == "" {
			desc = "Example"
		}
		exs = append(exs, example{desc: desc, cmd: strings.Join(strings.Fields(s), " ")})
		desc = ""
	}
	return exs
}

func (p page) tldr(cmd string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s-%s\n\n", binary, cmd)
	fmt.Fprintf(&b, "> %s\n", firstNonEmpty(p.short, p.title, binary+" "+cmd))
	fmt.Fprintf(&b, "> More information: https://github.com/staranto/%s.\n\n", binary)

	exs := p.examples
	if len(exs) == 0 {
		exs = []example{{desc: "Show help for the command", cmd: binary + " " + cmd + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s:\n\n`%s`\n", ex.desc, ex.cmd)
	}
	return b.String()
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
