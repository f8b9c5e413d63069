// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var indexRegex = regexp.MustCompile(`\[(\d+)\]`)

// gjson treats these as path syntax. Keys from the service never contain
// them, but user supplied paths might.
var escaper = strings.NewReplacer("*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`, "!", `\!`)

// Driller returns the value at path in doc. Paths are dotted keys with
// optional [n] indexes, "book.title" or "items[1].isbn". An array holding a
// single element is drilled through, so "borrows.book" works whether or not
// the service wrapped the value in a one element list.
func Driller(doc string, path string) gjson.Result {
	if path == "" {
		return gjson.Result{}
	}

	gpath := indexRegex.ReplaceAllString(escaper.Replace(path), ".${1}")
	result := gjson.Get(doc, gpath)

	if result.IsArray() {
		if items := result.Array(); len(items) == 1 {
			return items[0]
		}
	}
	return result
}
