package dsl

import (
	"sort"

	"golang.org/x/sync/errgroup"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

type unknownPolicy int

const (
	unknownStrip unknownPolicy = iota // default
	unknownStrict
	unknownPassthrough
)

// ObjectField pairs a key with its schema. Declaration order governs issue
// order and descriptor order.
type ObjectField struct {
	Name   string
	Schema skema.Schema
}

// ObjectSchema validates map[string]any values against an ordered field list.
type ObjectSchema struct {
	fields  []ObjectField
	index   map[string]int
	unknown unknownPolicy
	typeMsg string
}

// Object returns an empty object schema. Unknown keys are stripped unless
// Strict or Passthrough is applied.
func Object() *ObjectSchema {
	return &ObjectSchema{index: map[string]int{}}
}

func (o *ObjectSchema) clone() *ObjectSchema {
	cp := *o
	cp.fields = make([]ObjectField, len(o.fields), len(o.fields)+1)
	copy(cp.fields, o.fields)
	cp.index = make(map[string]int, len(o.index)+1)
	for k, v := range o.index {
		cp.index[k] = v
	}
	return &cp
}

// Field returns a copy with the named field added. Redeclaring an existing
// name replaces its schema in place, keeping the original position.
func (o *ObjectSchema) Field(name string, s skema.Schema) *ObjectSchema {
	cp := o.clone()
	if i, ok := cp.index[name]; ok {
		cp.fields[i].Schema = s
		return cp
	}
	cp.index[name] = len(cp.fields)
	cp.fields = append(cp.fields, ObjectField{Name: name, Schema: s})
	return cp
}

// Fields returns a copy of the ordered field list.
func (o *ObjectSchema) Fields() []ObjectField {
	out := make([]ObjectField, len(o.fields))
	copy(out, o.fields)
	return out
}

// Strict rejects unknown keys with a single unrecognized_keys issue listing
// the offending keys in sorted order.
func (o *ObjectSchema) Strict() *ObjectSchema {
	cp := o.clone()
	cp.unknown = unknownStrict
	return cp
}

// Strip silently drops unknown keys from the output. This is the default.
func (o *ObjectSchema) Strip() *ObjectSchema {
	cp := o.clone()
	cp.unknown = unknownStrip
	return cp
}

// Passthrough copies unknown keys into the output unvalidated.
func (o *ObjectSchema) Passthrough() *ObjectSchema {
	cp := o.clone()
	cp.unknown = unknownPassthrough
	return cp
}

// TypeMessage overrides the invalid_type message for this node.
func (o *ObjectSchema) TypeMessage(msg string) *ObjectSchema {
	cp := o.clone()
	cp.typeMsg = msg
	return cp
}

func (o *ObjectSchema) Kind() skema.Kind { return skema.KindObject }

func (o *ObjectSchema) Async() bool {
	for _, f := range o.fields {
		if f.Schema.Async() {
			return true
		}
	}
	return false
}

func (o *ObjectSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		st.Add(skema.CodeInvalidType, o.typeMsg, map[string]any{"expected": "object", "got": typeName(v)})
		return nil, false, nil
	}
	if st.Mode() == skema.ModeAsync && o.Async() {
		return o.checkConcurrent(st, m)
	}

	out := make(map[string]any, len(m))
	allOK := true
	for _, f := range o.fields {
		val, present := m[f.Name]
		if !present {
			val = skema.Missing
		}
		st.Push(f.Name)
		fv, fok, err := f.Schema.Check(st, val)
		st.Pop()
		if err != nil {
			return nil, false, err
		}
		if !fok {
			allOK = false
			continue
		}
		if !skema.IsMissing(fv) {
			out[f.Name] = fv
		}
	}
	if !o.applyUnknown(st, m, out) {
		allOK = false
	}
	return out, allOK, nil
}

// checkConcurrent validates each field on a forked State via errgroup and
// merges issues back in declaration order.
func (o *ObjectSchema) checkConcurrent(st *skema.State, m map[string]any) (any, bool, error) {
	type fieldResult struct {
		out   any
		ok    bool
		child *skema.State
	}
	results := make([]fieldResult, len(o.fields))
	var g errgroup.Group
	for i, f := range o.fields {
		i, f := i, f
		child := st.Fork()
		child.Push(f.Name)
		val, present := m[f.Name]
		if !present {
			val = skema.Missing
		}
		results[i].child = child
		g.Go(func() error {
			fv, fok, err := f.Schema.Check(child, val)
			if err != nil {
				return err
			}
			results[i].out = fv
			results[i].ok = fok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if err := st.Context().Err(); err != nil {
		return nil, false, err
	}

	out := make(map[string]any, len(m))
	allOK := true
	for i, f := range o.fields {
		st.Merge(results[i].child)
		if !results[i].ok {
			allOK = false
			continue
		}
		if !skema.IsMissing(results[i].out) {
			out[f.Name] = results[i].out
		}
	}
	if !o.applyUnknown(st, m, out) {
		allOK = false
	}
	return out, allOK, nil
}

func (o *ObjectSchema) applyUnknown(st *skema.State, in, out map[string]any) bool {
	if o.unknown == unknownStrip {
		return true
	}
	var extra []string
	for k := range in {
		if _, known := o.index[k]; !known {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return true
	}
	sort.Strings(extra)
	switch o.unknown {
	case unknownPassthrough:
		for _, k := range extra {
			out[k] = in[k]
		}
		return true
	default: // strict
		st.Add(skema.CodeUnrecognizedKeys, "", map[string]any{"keys": extra})
		return false
	}
}

func (o *ObjectSchema) Descriptor() *js.Schema {
	d := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(o.fields))}
	for _, f := range o.fields {
		d.Properties[f.Name] = f.Schema.Descriptor()
		if !isOptionalNode(f.Schema) {
			d.Required = append(d.Required, f.Name)
		}
	}
	switch o.unknown {
	case unknownStrict:
		d.AdditionalProperties = false
	case unknownPassthrough:
		d.AdditionalProperties = true
	}
	return d
}
