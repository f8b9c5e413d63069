// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/libctl/internal/attrs"
)

const catalog = `[
  {"_id": "b1", "title": "Dune", "author": "Frank Herbert", "genre": "FICTION", "copies": 3, "available": true, "tags": ["classic"]},
  {"_id": "b2", "title": "Cosmos", "author": "Carl Sagan", "genre": "SCIENCE", "copies": 0, "available": false},
  {"_id": "b3", "title": "Dracula", "author": "Bram Stoker", "genre": "FICTION", "copies": 1, "available": true, "description": "Gothic"}
]`

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
	}{
		{
			name: "empty spec",
			spec: "",
		},
		{
			name: "exact",
			spec: "genre=FICTION",
			want: []Filter{{Key: "genre", Operand: "=", Target: "FICTION"}},
		},
		{
			name: "negated prefix",
			spec: "title!^The",
			want: []Filter{{Key: "title", Operand: "^", Target: "The", Negate: true}},
		},
		{
			name: "numeric",
			spec: "copies>0",
			want: []Filter{{Key: "copies", Operand: ">", Target: "0"}},
		},
		{
			name: "regex keeps operand characters in the target",
			spec: "isbn/^978-0-?4",
			want: []Filter{{Key: "isbn", Operand: "/", Target: "^978-0-?4"}},
		},
		{
			name: "several",
			spec: "genre=FICTION,copies>1",
			want: []Filter{
				{Key: "genre", Operand: "=", Target: "FICTION"},
				{Key: "copies", Operand: ">", Target: "1"},
			},
		},
		{
			name: "invalid expressions are skipped",
			spec: "genre=FICTION,nonsense,=x",
			want: []Filter{{Key: "genre", Operand: "=", Target: "FICTION"}},
		},
		{
			name:      "custom delimiter",
			spec:      "title@,|genre=FICTION",
			delimiter: "|",
			want: []Filter{
				{Key: "title", Operand: "@", Target: ","},
				{Key: "genre", Operand: "=", Target: "FICTION"},
			},
		},
		{
			name: "dotted key",
			spec: "book.title~dune",
			want: []Filter{{Key: "book.title", Operand: "~", Target: "dune"}},
		},
		{
			name: "empty target",
			spec: "description=",
			want: []Filter{{Key: "description", Operand: "=", Target: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv(DelimEnv, tt.delimiter)
			}

			got := BuildFilters(tt.spec)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		value  interface{}
		want   bool
	}{
		{"string equal", "genre=FICTION", "FICTION", true},
		{"string not equal", "genre!=FICTION", "FICTION", false},
		{"fold", "title~DUNE", "Dune", true},
		{"prefix", "title^Dr", "Dracula", true},
		{"negated prefix", "title!^Dr", "Dune", true},
		{"contains", "author@Sagan", "Carl Sagan", true},
		{"regex", "isbn/^978-\\d+$", "978-0441013593", true},
		{"bad regex", "isbn/([", "978", false},
		{"lexical greater", "title>D", "Emma", true},
		{"bool", "available=true", true, true},
		{"negated bool", "available!=true", false, true},
		{"number equal", "copies=3", 3.0, true},
		{"number greater", "copies>0", 0.0, false},
		{"number less", "copies<2", 1.0, true},
		{"negated number", "copies!=0", 0.0, false},
		{"int", "copies>2", 3, true},
		{"number bad target", "copies>lots", 3.0, false},
		{"number prefix uses string form", "copies^1", 12.0, true},
		{"list contains", "tags@classic", []interface{}{"classic", "sf"}, true},
		{"list lacks", "tags!@classic", []interface{}{"sf"}, true},
		{"object has key", "book@isbn", map[string]interface{}{"isbn": "978"}, true},
		{"list with non contains operand", "tags=classic", []interface{}{"classic"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := BuildFilters(tt.filter)
			require.Len(t, filters, 1)
			assert.Equal(t, tt.want, filters[0].Match(tt.value))
		})
	}
}

func TestFilterDataset(t *testing.T) {
	list, err := attrs.Parse(attrs.BookDefaults, "")
	require.NoError(t, err)

	titles := func(rows []map[string]interface{}) []string {
		var out []string
		for _, row := range rows {
			out = append(out, row["title"].(string))
		}
		return out
	}

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"no filter", "", []string{"Dune", "Cosmos", "Dracula"}},
		{"by genre", "genre=FICTION", []string{"Dune", "Dracula"}},
		{"all must match", "genre=FICTION,copies>1", []string{"Dune"}},
		{"renamed column", "id=b2", []string{"Cosmos"}},
		{"raw key", "_id=b3", []string{"Dracula"}},
		{"available", "available=false", []string{"Cosmos"}},
		{"field not displayed", "description@Goth", []string{"Dracula"}},
		{"missing field never equals", "description=Gothic", []string{"Dracula"}},
		{"negation holds for a missing field", "description!=Gothic", []string{"Dune", "Cosmos"}},
		{"nothing matches", "title=Emma", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := FilterDataset(gjson.Parse(catalog), list, tt.spec)
			assert.Equal(t, tt.want, titles(rows))
		})
	}
}

func TestFilterDataset_Projects(t *testing.T) {
	list, err := attrs.Parse(attrs.BookDefaults, "!isbn,*::u")
	require.NoError(t, err)

	rows := FilterDataset(gjson.Parse(catalog), list, "id=b1")
	require.Len(t, rows, 1)

	assert.Equal(t, map[string]interface{}{
		"id":        "b1",
		"title":     "Dune",
		"author":    "Frank Herbert",
		"genre":     "FICTION",
		"isbn":      nil,
		"copies":    3.0,
		"available": true,
	}, rows[0])
}
