// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
)

// Tag is one attribute path discovered from a struct's json tags, as shown
// by --schema.
type Tag struct {
	Name string
	Type string
}

// NewTag builds a Tag from a json struct tag value. holder is the path of the
// enclosing struct, if any. Fields tagged "-" yield an empty Tag.
func NewTag(holder string, tagValue string, typ reflect.Type) Tag {
	name := strings.Split(tagValue, ",")[0]
	if name == "" || name == "-" {
		return Tag{}
	}
	if holder != "" {
		name = holder + "." + name
	}
	return Tag{Name: name, Type: typeName(typ)}
}

func typeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	switch {
	case typ == reflect.TypeOf(time.Time{}):
		return "time"
	case typ.Kind() == reflect.Slice:
		return "list"
	case typ.Kind() == reflect.Struct:
		return "object"
	default:
		return typ.Kind().String()
	}
}

const maxSchemaDepth = 2

// DumpSchemaWalker walks typ collecting the json paths usable in --attrs,
// --filter and --sort.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	tags := make([]Tag, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(holder, tagValue, field.Type)
		if tag.Name == "" {
			continue
		}
		log.Debugf("schema field %s -> %s (%s)", field.Name, tag.Name, tag.Type)
		tags = append(tags, tag)

		if tag.Type == "object" && depth < maxSchemaDepth {
			tags = append(tags, DumpSchemaWalker(tag.Name, field.Type, depth+1)...)
		}
	}
	return tags
}

// DumpSchema prints the attribute paths of typ, sorted.
func DumpSchema(w io.Writer, typ reflect.Type) {
	tags := DumpSchemaWalker("", typ, 0)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{tag.Name, tag.Type})
	}

	name := typ.Name()
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
		name = typ.Name()
	}

	fmt.Fprintf(w, "Attributes of %s --\n", name)
	fmt.Fprintln(w, plainTable(rows, "Attribute", "Type"))
	fmt.Fprintln(w, `Use them with --attrs, --filter and --sort. Nested attributes are
addressed with dots, for example --attrs book.title.`)
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}
	rows := make([][]string, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}
	fmt.Fprintln(w, plainTable(rows, "Command", "Description"))
}

func plainTable(rows [][]string, headers ...string) *table.Table {
	return table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		BorderHeader(false).
		Rows(rows...)
}
