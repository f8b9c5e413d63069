// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters implements --filter expressions over result rows.
package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/libctl/internal/attrs"
	"github.com/staranto/libctl/internal/driller"
)

// DelimEnv overrides the "," between filter expressions.
const DelimEnv = "LIBCTL_FILTER_DELIM"

// filterRegex splits an expression into key, operand and target. Operands
// are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

func (f Filter) String() string {
	neg := ""
	if f.Negate {
		neg = "!"
	}
	return f.Key + neg + f.Operand + f.Target
}

// BuildFilters parses spec. Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnv); ok && d != "" {
		delim = d
	}

	for _, expr := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + expr)
			continue
		}

		operand := parts[2]
		negate := strings.HasPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: strings.TrimPrefix(operand, "!"),
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset keeps the rows of candidates matching every filter in spec
// and projects each onto attrs. Transforms are left to the output phase.
func FilterDataset(candidates gjson.Result, list attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var rows []map[string]interface{}

	filters := BuildFilters(spec)
	paths := resolve(filters, list)

	for _, candidate := range candidates.Array() {
		if !matchAll(candidate, filters, paths) {
			continue
		}

		row := make(map[string]interface{}, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = driller.Driller(candidate.Raw, attr.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows
}

// resolve maps each filter key to a JSON path. A key naming an attr's output
// key uses that attr's path; anything else is taken as a path itself, so rows
// can be filtered on fields that aren't displayed.
func resolve(filters []Filter, list attrs.AttrList) []string {
	paths := make([]string, len(filters))
	for i, f := range filters {
		paths[i] = strings.TrimPrefix(f.Key, ".")
		for _, attr := range list {
			if attr.OutputKey == f.Key {
				paths[i] = attr.Key
				break
			}
		}
	}
	return paths
}

func matchAll(candidate gjson.Result, filters []Filter, paths []string) bool {
	for i, f := range filters {
		value := driller.Driller(candidate.Raw, paths[i]).Value()
		if value == nil {
			// Only "this field is not X" holds for a missing field.
			if !f.Negate {
				return false
			}
			continue
		}
		if !f.Match(value) {
			return false
		}
	}
	return true
}

// Match reports whether value satisfies f.
func (f Filter) Match(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return f.matchString(v)
	case bool:
		return f.matchString(strconv.FormatBool(v))
	case []interface{}, map[string]interface{}:
		return f.matchContains(v)
	}
	if num, ok := toFloat64(value); ok {
		return f.matchNumber(num)
	}
	log.Errorf("unsupported type for filtering: %T", value)
	return false
}

// matchContains handles "@" against lists (element equality) and objects
// (key presence).
func (f Filter) matchContains(value interface{}) bool {
	if f.Operand != "@" {
		log.Error("only @ applies to lists and objects: " + f.String())
		return false
	}

	found := false
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if fmt.Sprint(item) == f.Target {
				found = true
				break
			}
		}
	case map[string]interface{}:
		_, found = v[f.Target]
	}
	return found != f.Negate
}

// matchNumber compares numerically. Operands other than = > < fall back to
// the string form, so copies^1 still works.
func (f Filter) matchNumber(value float64) bool {
	switch f.Operand {
	case "=", ">", "<":
	default:
		return f.matchString(strconv.FormatFloat(value, 'f', -1, 64))
	}

	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + f.Target)
		return false
	}

	var result bool
	switch f.Operand {
	case "=":
		result = value == tgt
	case ">":
		result = value > tgt
	case "<":
		result = value < tgt
	}
	return result != f.Negate
}

func (f Filter) matchString(value string) bool {
	var result bool
	switch f.Operand {
	case "=":
		result = value == f.Target
	case "~":
		result = strings.EqualFold(value, f.Target)
	case "^":
		result = strings.HasPrefix(value, f.Target)
	case ">":
		result = value > f.Target
	case "<":
		result = value < f.Target
	case "@":
		result = strings.Contains(value, f.Target)
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.Error("invalid regex: " + f.Target)
			return false
		}
		result = re.MatchString(value)
	default:
		log.Error("unsupported filtering operand: " + f.Operand)
		return false
	}
	return result != f.Negate
}

// toFloat64 normalizes the numeric types gjson and callers produce.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
