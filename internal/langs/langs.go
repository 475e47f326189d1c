// Package langs parses the per-repository language breakdown.
//
// The raw field is a Python literal: a list of dicts, each carrying at
// least a "name" and a "size" key, for example
//
//	[{'name': 'Go', 'size': 48213}, {'name': 'Makefile', 'size': 310}]
//
// Only the literal subset that appears in such dumps is accepted: lists,
// dicts, quoted strings, integers, floats, None, True and False.
package langs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Separator joins names and sizes in the flattened columns.
const Separator = ", "

// missingSentinel is the placeholder the missing-value step writes into string columns.
const missingSentinel = "-1"

// noneLiteral renders a None size the way the literal spelled it.
const noneLiteral = "None"

// Language is one entry of the breakdown.
type Language struct {
	Name     string
	Size     int64
	NullSize bool // the literal gave None; Size is 0
}

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("invalid language literal")

// Parse decodes a raw languages field. Empty input, "[]" and the missing
// sentinel yield an empty slice.
func Parse(raw string) ([]Language, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == missingSentinel {
		return []Language{}, nil
	}

	p := &parser{src: trimmed}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}

	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not a list", ErrSyntax)
	}

	out := make([]Language, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a dict", ErrSyntax, i)
		}
		lang, err := toLanguage(entry)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, lang)
	}
	return out, nil
}

// Names joins the language names in input order.
func Names(langs []Language) string {
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.Name
	}
	return strings.Join(names, Separator)
}

// Sizes joins the language sizes in input order. A None size is written
// as "None".
func Sizes(langs []Language) string {
	sizes := make([]string, len(langs))
	for i, l := range langs {
		if l.NullSize {
			sizes[i] = noneLiteral
			continue
		}
		sizes[i] = strconv.FormatInt(l.Size, 10)
	}
	return strings.Join(sizes, Separator)
}

// Split breaks a flattened column value back into its items.
func Split(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toLanguage(entry map[string]any) (Language, error) {
	name, ok := entry["name"].(string)
	if !ok {
		return Language{}, fmt.Errorf("%w: missing string key 'name'", ErrSyntax)
	}

	var size int64
	nullSize := false
	switch v := entry["size"].(type) {
	case int64:
		size = v
	case float64:
		if v != math.Trunc(v) {
			return Language{}, fmt.Errorf("%w: non-integral size %v", ErrSyntax, v)
		}
		size = int64(v)
	case nil:
		if _, present := entry["size"]; !present {
			return Language{}, fmt.Errorf("%w: missing key 'size'", ErrSyntax)
		}
		nullSize = true
	default:
		return Language{}, fmt.Errorf("%w: size has type %T", ErrSyntax, v)
	}

	return Language{Name: name, Size: size, NullSize: nullSize}, nil
}
