package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/skemalib/skema"
	"github.com/skemalib/skema/dsl"
)

func fieldNames(o *dsl.ObjectSchema) []string {
	fs := o.Fields()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

func TestExtendAddsAndOverrides(t *testing.T) {
	base := dsl.Object().
		Field("a", dsl.String()).
		Field("b", dsl.Number())
	ext := base.Extend(
		dsl.ObjectField{Name: "b", Schema: dsl.String()}, // override keeps position
		dsl.ObjectField{Name: "c", Schema: dsl.Bool()},
	)
	assert.Equal(t, []string{"a", "b", "c"}, fieldNames(ext))
	assert.Equal(t, []string{"a", "b"}, fieldNames(base), "base untouched")

	ok := skema.Is(context.Background(), ext, map[string]any{"a": "x", "b": "now a string", "c": true})
	assert.True(t, ok)
}

func TestOmitUndoesExtend(t *testing.T) {
	base := signupSchema()
	roundTrip := base.Extend(dsl.ObjectField{Name: "extra", Schema: dsl.String()}).Omit("extra")

	assert.Equal(t, fieldNames(base), fieldNames(roundTrip))
	inputs := []any{
		map[string]any{"email": "a@example.com", "password": "long enough!"},
		map[string]any{"email": "bad", "password": "short"},
		map[string]any{},
	}
	for _, in := range inputs {
		a, errA := skema.Parse(context.Background(), base, in)
		b, errB := skema.Parse(context.Background(), roundTrip, in)
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
	}
}

func TestPick(t *testing.T) {
	s := signupSchema().Pick("email")
	assert.Equal(t, []string{"email"}, fieldNames(s))
	assert.True(t, skema.Is(context.Background(), s, map[string]any{"email": "a@example.com"}))
}

func TestMergeRightWins(t *testing.T) {
	left := dsl.Object().Field("a", dsl.String()).Field("b", dsl.String())
	right := dsl.Object().Field("b", dsl.Number()).Strict()
	merged := left.Merge(right)

	assert.True(t, skema.Is(context.Background(), merged, map[string]any{"a": "x", "b": float64(1)}))
	// right's Strict policy carried over
	_, err := skema.Parse(context.Background(), merged, map[string]any{"a": "x", "b": float64(1), "c": 1})
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeUnrecognizedKeys, iss[0].Code)
}

func TestPartialAndRequired(t *testing.T) {
	base := signupSchema()
	part := base.Partial()
	assert.True(t, skema.Is(context.Background(), part, map[string]any{}))

	// Named form relaxes only the given keys.
	half := base.Partial("password")
	_, err := skema.Parse(context.Background(), half, map[string]any{})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/email", iss[0].Path.Pointer())

	back := part.Required()
	_, err = skema.Parse(context.Background(), back, map[string]any{})
	iss = issuesOf(t, err)
	require.Len(t, iss, 2)
}

func TestDeepPartialRecurses(t *testing.T) {
	s := dsl.Object().
		Field("name", dsl.String()).
		Field("address", dsl.Object().
			Field("street", dsl.String()).
			Field("zip", dsl.String())).
		Field("tags", dsl.Array(dsl.Object().Field("k", dsl.String())))

	dp := s.DeepPartial()
	ok := skema.Is(context.Background(), dp, map[string]any{
		"address": map[string]any{"street": "1 Main St"},
		"tags":    []any{map[string]any{}},
	})
	assert.True(t, ok, "nested fields all optional")

	// Present values are still validated.
	_, err := skema.Parse(context.Background(), dp, map[string]any{
		"address": map[string]any{"zip": 12345},
	})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/address/zip", iss[0].Path.Pointer())
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
}

func TestDeepPartialIdempotent(t *testing.T) {
	s := dsl.Object().
		Field("a", dsl.String()).
		Field("nested", dsl.Object().Field("b", dsl.Number()))
	once := s.DeepPartial()
	twice := once.DeepPartial()

	inputs := []any{
		map[string]any{},
		map[string]any{"a": "x"},
		map[string]any{"nested": map[string]any{}},
		map[string]any{"nested": map[string]any{"b": "wrong"}},
	}
	for _, in := range inputs {
		a, errA := skema.Parse(context.Background(), once, in)
		b, errB := skema.Parse(context.Background(), twice, in)
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
	}
	assert.Empty(t, twice.Descriptor().Required)
}

func TestDeepPartialTerminatesOnRecursiveSchema(t *testing.T) {
	var node *dsl.LazySchema
	node = dsl.Lazy(func() skema.Schema {
		return dsl.Object().
			Field("name", dsl.String()).
			Field("children", dsl.Optional(dsl.Array(node)))
	})
	tree := dsl.Object().Field("root", node)

	dp := tree.DeepPartial()
	ok := skema.Is(context.Background(), dp, map[string]any{
		"root": map[string]any{
			"children": []any{
				map[string]any{"name": "leaf"},
				map[string]any{},
			},
		},
	})
	assert.True(t, ok)
}

func TestIntersection(t *testing.T) {
	ctx := context.Background()
	bounded := dsl.Intersection(dsl.Number().Min(0), dsl.Number().Max(10))
	assert.True(t, skema.Is(ctx, bounded, float64(5)))

	_, err := skema.Parse(ctx, bounded, float64(-1))
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)

	// Values satisfying the intersection satisfy each side.
	for _, v := range []float64{0, 3, 10} {
		if skema.Is(ctx, bounded, v) {
			assert.True(t, skema.Is(ctx, dsl.Number().Min(0), v))
			assert.True(t, skema.Is(ctx, dsl.Number().Max(10), v))
		}
	}

	// Conflicting constraints are simply unsatisfiable.
	never := dsl.Intersection(dsl.Number().Min(5), dsl.Number().Max(3))
	for _, v := range []float64{2, 4, 6} {
		assert.False(t, skema.Is(ctx, never, v))
	}
}

func TestIntersectionMergesObjects(t *testing.T) {
	left := dsl.Object().Field("a", dsl.String()).Field("shared", dsl.String())
	right := dsl.Object().Field("b", dsl.Number()).Field("shared", dsl.String())
	both := dsl.Intersection(left, right)

	out, err := skema.Parse(context.Background(), both, map[string]any{
		"a": "x", "b": float64(1), "shared": "s",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": float64(1), "shared": "s"}, out)
}

func TestIntersectionIssuesFromBothSides(t *testing.T) {
	left := dsl.Object().Field("a", dsl.String())
	right := dsl.Object().Field("b", dsl.Number())
	_, err := skema.Parse(context.Background(), dsl.Intersection(left, right), map[string]any{})
	iss := issuesOf(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, "/a", iss[0].Path.Pointer(), "left side first")
	assert.Equal(t, "/b", iss[1].Path.Pointer())
}

func TestIntersectionUnmergeable(t *testing.T) {
	// Both sides validate but produce different scalar outputs.
	upper := dsl.ToUpper(dsl.String())
	lower := dsl.ToLower(dsl.String())
	_, err := skema.Parse(context.Background(), dsl.Intersection(upper, lower), "Mixed")
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidIntersection, iss[0].Code)
}
