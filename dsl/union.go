package dsl

import (
	"encoding/json"
	"fmt"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

// UnionSchema tries ordered alternatives; the first that validates cleanly
// wins. When every alternative fails, a single invalid_union issue is
// reported instead of the per-alternative noise.
type UnionSchema struct {
	alts []skema.Schema
}

// Union returns a schema accepting any of the given alternatives.
func Union(alts ...skema.Schema) *UnionSchema {
	cp := make([]skema.Schema, len(alts))
	copy(cp, alts)
	return &UnionSchema{alts: cp}
}

func (u *UnionSchema) Kind() skema.Kind { return skema.KindUnion }

func (u *UnionSchema) Async() bool {
	for _, a := range u.alts {
		if a.Async() {
			return true
		}
	}
	return false
}

func (u *UnionSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	for _, alt := range u.alts {
		scratch := st.Fork()
		out, ok, err := alt.Check(scratch, v)
		if err != nil {
			return nil, false, err
		}
		if ok && scratch.Len() == 0 {
			return out, true, nil
		}
	}
	st.Add(skema.CodeInvalidUnion, "", map[string]any{"alternatives": len(u.alts)})
	return nil, false, nil
}

func (u *UnionSchema) Descriptor() *js.Schema {
	d := &js.Schema{OneOf: make([]*js.Schema, len(u.alts))}
	for i, a := range u.alts {
		d.OneOf[i] = a.Descriptor()
	}
	return d
}

// tagged is implemented by Literal and Enum so discriminated unions can index
// a variant's possible discriminator values at construction time.
type tagged interface {
	tagValues() []any
}

// DiscriminatedUnionSchema routes by a discriminator key in O(1) and reports
// the matched variant's issues with full fidelity.
type DiscriminatedUnionSchema struct {
	key      string
	variants []*ObjectSchema
	byTag    map[any]*ObjectSchema
}

// DiscriminatedUnion builds a tag-routed union over object variants. Each
// variant must declare the key field as a Literal or Enum; the mapping from
// tag value to variant is precomputed here. Ambiguous or missing tags are a
// construction error.
func DiscriminatedUnion(key string, variants ...*ObjectSchema) (*DiscriminatedUnionSchema, error) {
	d := &DiscriminatedUnionSchema{
		key:      key,
		variants: variants,
		byTag:    make(map[any]*ObjectSchema),
	}
	for _, v := range variants {
		i, ok := v.index[key]
		if !ok {
			return nil, fmt.Errorf("dsl: discriminated union variant lacks key %q", key)
		}
		tg, ok := unwrapTagged(v.fields[i].Schema)
		if !ok {
			return nil, fmt.Errorf("dsl: discriminator %q must be a Literal or Enum", key)
		}
		for _, tag := range tg.tagValues() {
			tag = normTag(tag)
			if _, dup := d.byTag[tag]; dup {
				return nil, fmt.Errorf("dsl: duplicate discriminator value %v for key %q", tag, key)
			}
			d.byTag[tag] = v
		}
	}
	if len(d.byTag) == 0 {
		return nil, fmt.Errorf("dsl: discriminated union needs at least one variant")
	}
	return d, nil
}

// MustDiscriminatedUnion is DiscriminatedUnion but panics on construction
// errors; intended for package-level schema variables.
func MustDiscriminatedUnion(key string, variants ...*ObjectSchema) *DiscriminatedUnionSchema {
	d, err := DiscriminatedUnion(key, variants...)
	if err != nil {
		panic(err)
	}
	return d
}

func unwrapTagged(s skema.Schema) (tagged, bool) {
	for {
		switch t := s.(type) {
		case tagged:
			return t, true
		case *OptionalSchema:
			s = t.inner
		case *DefaultSchema:
			s = t.inner
		default:
			return nil, false
		}
	}
}

// normTag canonicalizes numeric tag values so json.Number input matches
// float64/int declarations.
func normTag(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		if f, ok := toFloat(v); ok {
			return f
		}
		return v
	}
}

func (d *DiscriminatedUnionSchema) Kind() skema.Kind { return skema.KindUnion }

func (d *DiscriminatedUnionSchema) Async() bool {
	for _, v := range d.variants {
		if v.Async() {
			return true
		}
	}
	return false
}

func (d *DiscriminatedUnionSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		st.Add(skema.CodeInvalidType, "", map[string]any{"expected": "object", "got": typeName(v)})
		return nil, false, nil
	}
	tag, present := m[d.key]
	if !present {
		st.Push(d.key)
		st.Add(skema.CodeInvalidDiscriminator, "", map[string]any{"key": d.key})
		st.Pop()
		return nil, false, nil
	}
	variant, found := d.byTag[normTag(tag)]
	if !found {
		st.Push(d.key)
		st.Add(skema.CodeInvalidDiscriminator, "", map[string]any{"key": d.key, "value": tag})
		st.Pop()
		return nil, false, nil
	}
	return variant.Check(st, m)
}

func (d *DiscriminatedUnionSchema) Descriptor() *js.Schema {
	out := &js.Schema{Discriminator: d.key, OneOf: make([]*js.Schema, len(d.variants))}
	for i, v := range d.variants {
		out.OneOf[i] = v.Descriptor()
	}
	return out
}
