package dsl

import (
	"sync"

	skema "github.com/skemalib/skema"
)

// Extend returns a copy with the given fields added. Existing names are
// replaced in place; new names append in order.
func (o *ObjectSchema) Extend(fields ...ObjectField) *ObjectSchema {
	cp := o
	for _, f := range fields {
		cp = cp.Field(f.Name, f.Schema)
	}
	return cp
}

// Merge combines the receiver with another object schema. Fields from other
// win on name conflicts; other's unknown-key policy is kept.
func (o *ObjectSchema) Merge(other *ObjectSchema) *ObjectSchema {
	cp := o.Extend(other.fields...)
	cp = cp.clone()
	cp.unknown = other.unknown
	return cp
}

// Pick keeps only the named fields, preserving their declaration order.
// Unknown names are ignored.
func (o *ObjectSchema) Pick(names ...string) *ObjectSchema {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	cp := &ObjectSchema{index: map[string]int{}, unknown: o.unknown, typeMsg: o.typeMsg}
	for _, f := range o.fields {
		if _, ok := keep[f.Name]; ok {
			cp.index[f.Name] = len(cp.fields)
			cp.fields = append(cp.fields, f)
		}
	}
	return cp
}

// Omit drops the named fields. Unknown names are ignored.
func (o *ObjectSchema) Omit(names ...string) *ObjectSchema {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	cp := &ObjectSchema{index: map[string]int{}, unknown: o.unknown, typeMsg: o.typeMsg}
	for _, f := range o.fields {
		if _, ok := drop[f.Name]; ok {
			continue
		}
		cp.index[f.Name] = len(cp.fields)
		cp.fields = append(cp.fields, f)
	}
	return cp
}

// Partial makes the named fields optional; with no names, every field.
// Already-optional fields are left as-is.
func (o *ObjectSchema) Partial(names ...string) *ObjectSchema {
	pick := map[string]struct{}{}
	for _, n := range names {
		pick[n] = struct{}{}
	}
	cp := o.clone()
	for i, f := range cp.fields {
		if len(pick) > 0 {
			if _, ok := pick[f.Name]; !ok {
				continue
			}
		}
		if !isOptionalNode(f.Schema) {
			cp.fields[i].Schema = Optional(f.Schema)
		}
	}
	return cp
}

// Required strips Optional wrappers from the named fields; with no names,
// from every field. Default wrappers are left alone: a defaulted field never
// reports required.
func (o *ObjectSchema) Required(names ...string) *ObjectSchema {
	pick := map[string]struct{}{}
	for _, n := range names {
		pick[n] = struct{}{}
	}
	cp := o.clone()
	for i, f := range cp.fields {
		if len(pick) > 0 {
			if _, ok := pick[f.Name]; !ok {
				continue
			}
		}
		if opt, ok := f.Schema.(*OptionalSchema); ok {
			cp.fields[i].Schema = opt.inner
		}
	}
	return cp
}

// dpMemo guards the node-identity cache: Lazy nodes resolve their rewritten
// body on first parse, which may happen from concurrent goroutines.
type dpMemo struct {
	mu sync.Mutex
	m  map[skema.Schema]skema.Schema
}

func (d *dpMemo) load(k skema.Schema) (skema.Schema, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[k]
	return v, ok
}

func (d *dpMemo) store(k skema.Schema, v skema.Schema) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[k] = v
}

// DeepPartial makes every field optional recursively, descending through
// objects, arrays, effects and Lazy nodes. Results are memoized on node
// identity so self-referential graphs terminate and share structure; the
// operation is idempotent.
func (o *ObjectSchema) DeepPartial() *ObjectSchema {
	memo := &dpMemo{m: map[skema.Schema]skema.Schema{}}
	return deepPartialObject(o, memo)
}

func deepPartialObject(o *ObjectSchema, memo *dpMemo) *ObjectSchema {
	if cached, ok := memo.load(o); ok {
		return cached.(*ObjectSchema)
	}
	cp := o.clone()
	memo.store(o, cp)
	for i, f := range cp.fields {
		inner := deepPartialNode(f.Schema, memo)
		if !isOptionalNode(inner) {
			inner = Optional(inner)
		}
		cp.fields[i].Schema = inner
	}
	return cp
}

func deepPartialNode(s skema.Schema, memo *dpMemo) skema.Schema {
	if cached, ok := memo.load(s); ok {
		return cached
	}
	switch t := s.(type) {
	case *ObjectSchema:
		return deepPartialObject(t, memo)
	case *ArraySchema:
		cp := t.clone()
		memo.store(t, cp)
		cp.elem = deepPartialNode(t.elem, memo)
		return cp
	case *OptionalSchema:
		cp := &OptionalSchema{}
		memo.store(t, cp)
		cp.inner = deepPartialNode(t.inner, memo)
		return cp
	case *NullableSchema:
		cp := &NullableSchema{}
		memo.store(t, cp)
		cp.inner = deepPartialNode(t.inner, memo)
		return cp
	case *DefaultSchema:
		cp := &DefaultSchema{value: t.value}
		memo.store(t, cp)
		cp.inner = deepPartialNode(t.inner, memo)
		return cp
	case *LazySchema:
		// Registered before resolution so recursive references share the
		// rewritten node instead of looping.
		cp := &LazySchema{}
		memo.store(t, cp)
		cp.fn = func() skema.Schema { return deepPartialNode(t.resolve(), memo) }
		return cp
	default:
		// Primitives and opaque effects carry no nested fields to relax.
		return s
	}
}

// isOptionalNode reports whether a field schema absorbs the missing marker.
func isOptionalNode(s skema.Schema) bool {
	switch s.(type) {
	case *OptionalSchema, *DefaultSchema:
		return true
	default:
		return false
	}
}
