package dsl

import (
	"golang.org/x/sync/errgroup"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

type arrayCheck struct {
	code   string
	msg    string
	params map[string]any
	fn     func(int) bool
	js     func(*js.Schema)
}

// ArraySchema validates []any values. Length checks run independently of
// element validation; element issues carry int index segments.
type ArraySchema struct {
	elem    skema.Schema
	checks  []arrayCheck
	typeMsg string
}

// Array returns a schema validating arrays whose elements match elem.
func Array(elem skema.Schema) *ArraySchema { return &ArraySchema{elem: elem} }

func (a *ArraySchema) clone() *ArraySchema {
	cp := *a
	cp.checks = make([]arrayCheck, len(a.checks), len(a.checks)+1)
	copy(cp.checks, a.checks)
	return &cp
}

func (a *ArraySchema) with(c arrayCheck) *ArraySchema {
	cp := a.clone()
	cp.checks = append(cp.checks, c)
	return cp
}

// Min requires at least n elements.
func (a *ArraySchema) Min(n int, msg ...string) *ArraySchema {
	return a.with(arrayCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": n},
		fn:     func(l int) bool { return l >= n },
		js:     func(d *js.Schema) { d.MinItems = js.IntPtr(n) },
	})
}

// Max requires at most n elements.
func (a *ArraySchema) Max(n int, msg ...string) *ArraySchema {
	return a.with(arrayCheck{
		code: skema.CodeTooBig, msg: firstMsg(msg),
		params: map[string]any{"max": n},
		fn:     func(l int) bool { return l <= n },
		js:     func(d *js.Schema) { d.MaxItems = js.IntPtr(n) },
	})
}

// Length requires exactly n elements.
func (a *ArraySchema) Length(n int, msg ...string) *ArraySchema {
	return a.with(arrayCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"length": n},
		fn:     func(l int) bool { return l == n },
		js: func(d *js.Schema) {
			d.MinItems = js.IntPtr(n)
			d.MaxItems = js.IntPtr(n)
		},
	})
}

// NonEmpty requires at least one element; runtime-equivalent to Min(1).
func (a *ArraySchema) NonEmpty(msg ...string) *ArraySchema {
	return a.with(arrayCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": 1},
		fn:     func(l int) bool { return l >= 1 },
		js:     func(d *js.Schema) { d.MinItems = js.IntPtr(1) },
	})
}

// TypeMessage overrides the invalid_type message for this node.
func (a *ArraySchema) TypeMessage(msg string) *ArraySchema {
	cp := a.clone()
	cp.typeMsg = msg
	return cp
}

func (a *ArraySchema) Kind() skema.Kind { return skema.KindArray }
func (a *ArraySchema) Async() bool      { return a.elem.Async() }

func (a *ArraySchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		st.Add(skema.CodeInvalidType, a.typeMsg, map[string]any{"expected": "array", "got": typeName(v)})
		return nil, false, nil
	}
	allOK := true
	for _, c := range a.checks {
		if !c.fn(len(arr)) {
			st.Add(c.code, c.msg, c.params)
			allOK = false
		}
	}
	if st.Mode() == skema.ModeAsync && a.elem.Async() {
		out, elemsOK, err := a.checkConcurrent(st, arr)
		return out, allOK && elemsOK, err
	}

	out := make([]any, len(arr))
	for i, el := range arr {
		st.Push(i)
		ev, eok, err := a.elem.Check(st, el)
		st.Pop()
		if err != nil {
			return nil, false, err
		}
		if !eok {
			allOK = false
			continue
		}
		out[i] = ev
	}
	return out, allOK, nil
}

func (a *ArraySchema) checkConcurrent(st *skema.State, arr []any) ([]any, bool, error) {
	type elemResult struct {
		out   any
		ok    bool
		child *skema.State
	}
	results := make([]elemResult, len(arr))
	var g errgroup.Group
	for i, el := range arr {
		i, el := i, el
		child := st.Fork()
		child.Push(i)
		results[i].child = child
		g.Go(func() error {
			ev, eok, err := a.elem.Check(child, el)
			if err != nil {
				return err
			}
			results[i].out = ev
			results[i].ok = eok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if err := st.Context().Err(); err != nil {
		return nil, false, err
	}

	out := make([]any, len(arr))
	allOK := true
	for i := range results {
		st.Merge(results[i].child)
		if !results[i].ok {
			allOK = false
			continue
		}
		out[i] = results[i].out
	}
	return out, allOK, nil
}

func (a *ArraySchema) Descriptor() *js.Schema {
	d := &js.Schema{Type: "array", Items: a.elem.Descriptor()}
	for _, c := range a.checks {
		if c.js != nil {
			c.js(d)
		}
	}
	return d
}
