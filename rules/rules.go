// Package rules provides cross-field validation helpers shaped as SuperRefine
// visitors over decoded object values:
//
//	order := dsl.SuperRefine(orderSchema, rules.UniqueBy("/items", "sku"))
//
// Paths are JSON Pointers ("/items", "/billing/address"); issue paths point at
// the offending element, not the rule's attachment point.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	skema "github.com/skemalib/skema"
)

// Visitor is the function shape dsl.SuperRefine accepts.
type Visitor = func(v any, c *skema.Collector)

// AtLeastOne requires the collection at path to have at least one element.
// Absent or non-collection values are left for the schema itself to report.
func AtLeastOne(path string) Visitor {
	segs := splitPointer(path)
	return func(v any, c *skema.Collector) {
		val, ok := valueAt(v, segs)
		if !ok {
			return
		}
		arr, ok := val.([]any)
		if !ok {
			return
		}
		if len(arr) == 0 {
			c.AddIssue(skema.Issue{
				Path:   skema.Path(segs),
				Code:   skema.CodeTooSmall,
				Params: map[string]any{"min": 1},
			})
		}
	}
}

// UniqueBy requires elements of the collection at collectionPath to carry
// distinct values at keyPath (relative to each element). Issues point at the
// duplicate element's key.
func UniqueBy(collectionPath, keyPath string) Visitor {
	colSegs := splitPointer(collectionPath)
	keySegs := splitPointer(keyPath)
	return func(v any, c *skema.Collector) {
		val, ok := valueAt(v, colSegs)
		if !ok {
			return
		}
		arr, ok := val.([]any)
		if !ok {
			return
		}
		seen := map[string]int{}
		for i, el := range arr {
			kv, ok := valueAt(el, keySegs)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if first, dup := seen[key]; dup {
				p := append(append(skema.Path{}, colSegs...), i)
				p = append(p, keySegs...)
				c.AddIssue(skema.Issue{
					Path:   p,
					Code:   skema.CodeUniqueness,
					Params: map[string]any{"first": first, "dup": i, "key": key},
				})
			} else {
				seen[key] = i
			}
		}
	}
}

// Requires makes thenPath mandatory whenever ifPath is present and non-null.
func Requires(ifPath, thenPath string) Visitor {
	ifSegs := splitPointer(ifPath)
	thenSegs := splitPointer(thenPath)
	return func(v any, c *skema.Collector) {
		cond, ok := valueAt(v, ifSegs)
		if !ok || cond == nil {
			return
		}
		if _, found := valueAt(v, thenSegs); !found {
			c.AddIssue(skema.Issue{
				Path:   skema.Path(thenSegs),
				Code:   skema.CodeRequired,
				Params: map[string]any{"requiredBy": ifPath},
			})
		}
	}
}

// splitPointer turns a JSON Pointer into engine path segments, converting
// all-digit segments to int indices.
func splitPointer(p string) []any {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := make([]any, len(parts))
	for i, seg := range parts {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		if n, err := strconv.Atoi(seg); err == nil && seg != "" {
			out[i] = n
		} else {
			out[i] = seg
		}
	}
	return out
}

func valueAt(v any, segs []any) (any, bool) {
	cur := v
	for _, seg := range segs {
		switch t := cur.(type) {
		case map[string]any:
			key, ok := seg.(string)
			if !ok {
				key = fmt.Sprint(seg)
			}
			next, found := t[key]
			if !found {
				return nil, false
			}
			cur = next
		case []any:
			idx, ok := seg.(int)
			if !ok || idx < 0 || idx >= len(t) {
				return nil, false
			}
			cur = t[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
