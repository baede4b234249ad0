package dsl

import (
	"context"
	"sync"
	"sync/atomic"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

// OptionalSchema absorbs the missing-field marker: an absent object field
// validates and is omitted from the output.
type OptionalSchema struct {
	inner skema.Schema
}

// Optional wraps s so that a missing field is accepted.
func Optional(s skema.Schema) *OptionalSchema { return &OptionalSchema{inner: s} }

func (s *OptionalSchema) Kind() skema.Kind { return skema.KindEffect }
func (s *OptionalSchema) Async() bool      { return s.inner.Async() }

func (s *OptionalSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		return skema.Missing, true, nil
	}
	return s.inner.Check(st, v)
}

func (s *OptionalSchema) Descriptor() *js.Schema { return s.inner.Descriptor() }

// Unwrap returns the wrapped schema.
func (s *OptionalSchema) Unwrap() skema.Schema { return s.inner }

// NullableSchema accepts null in addition to the wrapped schema's values.
type NullableSchema struct {
	inner skema.Schema
}

// Nullable wraps s so that null validates to null.
func Nullable(s skema.Schema) *NullableSchema { return &NullableSchema{inner: s} }

func (s *NullableSchema) Kind() skema.Kind { return skema.KindEffect }
func (s *NullableSchema) Async() bool      { return s.inner.Async() }

func (s *NullableSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	return s.inner.Check(st, v)
}

func (s *NullableSchema) Descriptor() *js.Schema {
	d := s.inner.Descriptor()
	cp := *d
	cp.Nullable = true
	return &cp
}

// Unwrap returns the wrapped schema.
func (s *NullableSchema) Unwrap() skema.Schema { return s.inner }

// DefaultSchema substitutes a value for missing fields; the default bypasses
// the inner schema's checks.
type DefaultSchema struct {
	inner skema.Schema
	value any
}

// Default wraps s so that a missing field yields v.
func Default(s skema.Schema, v any) *DefaultSchema {
	return &DefaultSchema{inner: s, value: v}
}

func (s *DefaultSchema) Kind() skema.Kind { return skema.KindEffect }
func (s *DefaultSchema) Async() bool      { return s.inner.Async() }

func (s *DefaultSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		return s.value, true, nil
	}
	return s.inner.Check(st, v)
}

func (s *DefaultSchema) Descriptor() *js.Schema {
	d := s.inner.Descriptor()
	cp := *d
	cp.Default = s.value
	return &cp
}

// Unwrap returns the wrapped schema.
func (s *DefaultSchema) Unwrap() skema.Schema { return s.inner }

// LazySchema defers construction until first use, enabling self-referential
// schemas:
//
//	var node *dsl.LazySchema
//	node = dsl.Lazy(func() skema.Schema {
//		return dsl.Object().
//			Field("name", dsl.String()).
//			Field("children", dsl.Optional(dsl.Array(node)))
//	})
type LazySchema struct {
	fn       func() skema.Schema
	once     sync.Once
	resolved skema.Schema

	descGuard atomic.Bool
}

// Lazy returns a schema resolved from fn on first use.
func Lazy(fn func() skema.Schema) *LazySchema { return &LazySchema{fn: fn} }

func (s *LazySchema) resolve() skema.Schema {
	s.once.Do(func() { s.resolved = s.fn() })
	return s.resolved
}

func (s *LazySchema) Kind() skema.Kind { return skema.KindLazy }

// Async reports false: resolving here could recurse forever on cyclic
// schemas. The runtime guard in Check rejects async subtrees reached through
// a Lazy node under the sync entries.
func (s *LazySchema) Async() bool { return false }

func (s *LazySchema) Check(st *skema.State, v any) (any, bool, error) {
	inner := s.resolve()
	if st.Mode() == skema.ModeSync && inner.Async() {
		return nil, false, skema.ErrAsyncSchema
	}
	return inner.Check(st, v)
}

func (s *LazySchema) Descriptor() *js.Schema {
	if !s.descGuard.CompareAndSwap(false, true) {
		return &js.Schema{Ref: "#"}
	}
	defer s.descGuard.Store(false)
	return s.resolve().Descriptor()
}

// ---------------------------------------------------------------------------
// Refinements

type refineConf struct {
	msg    string
	path   []any
	params map[string]any
}

// RefineOpt configures the issue a failed refinement reports.
type RefineOpt func(*refineConf)

// WithMessage sets the issue message.
func WithMessage(msg string) RefineOpt {
	return func(c *refineConf) { c.msg = msg }
}

// AtPath attaches the issue at the given segments relative to the refined
// value.
func AtPath(segs ...any) RefineOpt {
	return func(c *refineConf) { c.path = segs }
}

// WithParams attaches structured parameters to the issue.
func WithParams(p map[string]any) RefineOpt {
	return func(c *refineConf) { c.params = p }
}

type refineSchema struct {
	inner skema.Schema
	sync  func(any) bool
	async func(context.Context, any) (bool, error)
	conf  refineConf
}

// Refine attaches a predicate that runs after s validates. A false result
// reports one custom issue. Refinements never run over subtrees that failed
// structural validation.
func Refine(s skema.Schema, fn func(any) bool, opts ...RefineOpt) skema.Schema {
	r := &refineSchema{inner: s, sync: fn}
	for _, o := range opts {
		o(&r.conf)
	}
	return r
}

// RefineAsync is Refine for predicates that perform I/O. Schemas containing
// it must be parsed with the async entries. A non-nil error from fn is fatal.
func RefineAsync(s skema.Schema, fn func(context.Context, any) (bool, error), opts ...RefineOpt) skema.Schema {
	r := &refineSchema{inner: s, async: fn}
	for _, o := range opts {
		o(&r.conf)
	}
	return r
}

func (r *refineSchema) Kind() skema.Kind { return skema.KindEffect }
func (r *refineSchema) Async() bool      { return r.async != nil || r.inner.Async() }

func (r *refineSchema) Check(st *skema.State, v any) (any, bool, error) {
	before := st.Len()
	out, ok, err := r.inner.Check(st, v)
	if err != nil {
		return nil, false, err
	}
	if !ok || st.Len() > before {
		return out, false, nil
	}
	var pass bool
	if r.async != nil {
		if st.Mode() == skema.ModeSync {
			return nil, false, skema.ErrAsyncSchema
		}
		ctx := st.Context()
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		pass, err = r.async(ctx, out)
		if err != nil {
			if iss, isIss := skema.AsIssues(err); isIss {
				rebase(st, iss)
				return out, false, nil
			}
			return nil, false, err
		}
	} else {
		pass = r.sync(out)
	}
	if !pass {
		st.AddIssue(skema.Issue{
			Path:    st.Path().Join(r.conf.path...),
			Code:    skema.CodeCustom,
			Message: r.conf.msg,
			Params:  r.conf.params,
		})
		return out, false, nil
	}
	return out, true, nil
}

func (r *refineSchema) Descriptor() *js.Schema { return r.inner.Descriptor() }

type superRefineSchema struct {
	inner skema.Schema
	sync  func(any, *skema.Collector)
	async func(context.Context, any, *skema.Collector) error
}

// SuperRefine attaches a visitor that may record any number of issues at
// arbitrary relative paths via the Collector. The visitor cannot replace the
// value.
func SuperRefine(s skema.Schema, fn func(v any, c *skema.Collector)) skema.Schema {
	return &superRefineSchema{inner: s, sync: fn}
}

// SuperRefineAsync is SuperRefine for visitors that perform I/O. A non-nil
// error from fn is fatal unless it is an Issues value.
func SuperRefineAsync(s skema.Schema, fn func(ctx context.Context, v any, c *skema.Collector) error) skema.Schema {
	return &superRefineSchema{inner: s, async: fn}
}

func (r *superRefineSchema) Kind() skema.Kind { return skema.KindEffect }
func (r *superRefineSchema) Async() bool      { return r.async != nil || r.inner.Async() }

func (r *superRefineSchema) Check(st *skema.State, v any) (any, bool, error) {
	before := st.Len()
	out, ok, err := r.inner.Check(st, v)
	if err != nil {
		return nil, false, err
	}
	if !ok || st.Len() > before {
		return out, false, nil
	}
	c := skema.NewCollector(st.Path())
	if r.async != nil {
		if st.Mode() == skema.ModeSync {
			return nil, false, skema.ErrAsyncSchema
		}
		ctx := st.Context()
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if err := r.async(ctx, out, c); err != nil {
			if iss, isIss := skema.AsIssues(err); isIss {
				rebase(st, iss)
				return out, false, nil
			}
			return nil, false, err
		}
	} else {
		r.sync(out, c)
	}
	if c.Len() > 0 {
		for _, is := range c.Issues() {
			st.AddIssue(is)
		}
		return out, false, nil
	}
	return out, true, nil
}

func (r *superRefineSchema) Descriptor() *js.Schema { return r.inner.Descriptor() }

// ---------------------------------------------------------------------------
// Transform / Preprocess

type transformSchema struct {
	inner skema.Schema
	sync  func(any) (any, error)
	async func(context.Context, any) (any, error)
}

// Transform maps the validated output through fn; the result may have a
// different shape. Chained transforms nest, so attachment order is the
// execution order. An error from fn is fatal unless it is an Issues value.
func Transform(s skema.Schema, fn func(any) (any, error)) skema.Schema {
	return &transformSchema{inner: s, sync: fn}
}

// TransformAsync is Transform for mappings that perform I/O.
func TransformAsync(s skema.Schema, fn func(context.Context, any) (any, error)) skema.Schema {
	return &transformSchema{inner: s, async: fn}
}

func (t *transformSchema) Kind() skema.Kind { return skema.KindEffect }
func (t *transformSchema) Async() bool      { return t.async != nil || t.inner.Async() }

func (t *transformSchema) Check(st *skema.State, v any) (any, bool, error) {
	before := st.Len()
	out, ok, err := t.inner.Check(st, v)
	if err != nil {
		return nil, false, err
	}
	if !ok || st.Len() > before {
		return out, false, nil
	}
	var mapped any
	if t.async != nil {
		if st.Mode() == skema.ModeSync {
			return nil, false, skema.ErrAsyncSchema
		}
		ctx := st.Context()
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		mapped, err = t.async(ctx, out)
	} else {
		mapped, err = t.sync(out)
	}
	if err != nil {
		if iss, isIss := skema.AsIssues(err); isIss {
			rebase(st, iss)
			return nil, false, nil
		}
		return nil, false, err
	}
	return mapped, true, nil
}

// Descriptor reports the input shape: transforms run after validation and do
// not change what the schema accepts.
func (t *transformSchema) Descriptor() *js.Schema { return t.inner.Descriptor() }

type preprocessSchema struct {
	inner skema.Schema
	sync  func(any) (any, error)
	async func(context.Context, any) (any, error)
}

// Preprocess maps the raw input through fn before validation. The mapper is
// not invoked for missing fields, so Optional and Default wrappers keep their
// semantics.
func Preprocess(s skema.Schema, fn func(any) (any, error)) skema.Schema {
	return &preprocessSchema{inner: s, sync: fn}
}

// PreprocessAsync is Preprocess for mappings that perform I/O.
func PreprocessAsync(s skema.Schema, fn func(context.Context, any) (any, error)) skema.Schema {
	return &preprocessSchema{inner: s, async: fn}
}

func (p *preprocessSchema) Kind() skema.Kind { return skema.KindEffect }
func (p *preprocessSchema) Async() bool      { return p.async != nil || p.inner.Async() }

func (p *preprocessSchema) Check(st *skema.State, v any) (any, bool, error) {
	if !skema.IsMissing(v) {
		var err error
		if p.async != nil {
			if st.Mode() == skema.ModeSync {
				return nil, false, skema.ErrAsyncSchema
			}
			ctx := st.Context()
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			v, err = p.async(ctx, v)
		} else {
			v, err = p.sync(v)
		}
		if err != nil {
			if iss, isIss := skema.AsIssues(err); isIss {
				rebase(st, iss)
				return nil, false, nil
			}
			return nil, false, err
		}
	}
	return p.inner.Check(st, v)
}

func (p *preprocessSchema) Descriptor() *js.Schema { return p.inner.Descriptor() }

// rebase records user-supplied issues at paths relative to the current node.
func rebase(st *skema.State, iss skema.Issues) {
	base := st.Path()
	for _, is := range iss {
		is.Path = base.Join(is.Path...)
		st.AddIssue(is)
	}
}
