package dsl

import (
	"reflect"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

// IntersectionSchema requires a value to satisfy both sides. Each side is
// checked independently on a forked State so issues from both are retained
// (left first). Outputs are structurally merged; values that cannot be merged
// report invalid_intersection.
type IntersectionSchema struct {
	left, right skema.Schema
}

// Intersection returns a schema requiring both a and b.
func Intersection(a, b skema.Schema) *IntersectionSchema {
	return &IntersectionSchema{left: a, right: b}
}

func (s *IntersectionSchema) Kind() skema.Kind { return skema.KindIntersection }
func (s *IntersectionSchema) Async() bool      { return s.left.Async() || s.right.Async() }

func (s *IntersectionSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	ls := st.Fork()
	lv, lok, err := s.left.Check(ls, v)
	if err != nil {
		return nil, false, err
	}
	rs := st.Fork()
	rv, rok, err := s.right.Check(rs, v)
	if err != nil {
		return nil, false, err
	}
	st.Merge(ls)
	st.Merge(rs)
	if !lok || !rok {
		return nil, false, nil
	}
	merged, ok := mergeValues(lv, rv)
	if !ok {
		st.Add(skema.CodeInvalidIntersection, "", nil)
		return nil, false, nil
	}
	return merged, true, nil
}

// mergeValues combines the two side outputs. Equal values pick the left;
// objects merge key-wise recursively; equal-length arrays merge pairwise.
func mergeValues(a, b any) (any, bool) {
	if reflect.DeepEqual(a, b) {
		return a, true
	}
	if am, ok := a.(map[string]any); ok {
		if bm, ok := b.(map[string]any); ok {
			out := make(map[string]any, len(am)+len(bm))
			for k, v := range am {
				out[k] = v
			}
			for k, bv := range bm {
				av, exists := out[k]
				if !exists {
					out[k] = bv
					continue
				}
				mv, ok := mergeValues(av, bv)
				if !ok {
					return nil, false
				}
				out[k] = mv
			}
			return out, true
		}
		return nil, false
	}
	if aa, ok := a.([]any); ok {
		if ba, ok := b.([]any); ok && len(aa) == len(ba) {
			out := make([]any, len(aa))
			for i := range aa {
				mv, ok := mergeValues(aa[i], ba[i])
				if !ok {
					return nil, false
				}
				out[i] = mv
			}
			return out, true
		}
		return nil, false
	}
	return nil, false
}

func (s *IntersectionSchema) Descriptor() *js.Schema {
	return &js.Schema{AllOf: []*js.Schema{s.left.Descriptor(), s.right.Descriptor()}}
}
