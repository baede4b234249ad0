package dsl_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/skemalib/skema"
	"github.com/skemalib/skema/dsl"
)

func issuesOf(t *testing.T, err error) skema.Issues {
	t.Helper()
	iss, ok := skema.AsIssues(err)
	require.True(t, ok, "expected Issues, got %v", err)
	return iss
}

func TestStringConstraintsAllRun(t *testing.T) {
	s := dsl.String().Min(5).Regex(`^[a-z]+$`).EndsWith("x")
	_, err := skema.Parse(context.Background(), s, "AB1")
	iss := issuesOf(t, err)
	require.Len(t, iss, 3, "every constraint reports, none short-circuits")
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)
	assert.Equal(t, skema.CodeInvalidString, iss[1].Code)
	assert.Equal(t, skema.CodeInvalidString, iss[2].Code)
}

func TestStringTypeMismatchSkipsConstraints(t *testing.T) {
	s := dsl.String().Min(5)
	_, err := skema.Parse(context.Background(), s, 42)
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
}

func TestStringFormats(t *testing.T) {
	ctx := context.Background()
	assert.True(t, skema.Is(ctx, dsl.String().Email(), "a@example.com"))
	assert.False(t, skema.Is(ctx, dsl.String().Email(), "not-an-email"))
	assert.True(t, skema.Is(ctx, dsl.String().UUID(), "123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, skema.Is(ctx, dsl.String().UUID(), "123e4567e89b12d3a456426614174000"))
	assert.True(t, skema.Is(ctx, dsl.String().URL(), "https://example.com/x"))
	assert.False(t, skema.Is(ctx, dsl.String().URL(), "/relative/only"))
	assert.True(t, skema.Is(ctx, dsl.String().StartsWith("ab").EndsWith("yz"), "ab-yz"))
}

func TestStringCustomMessage(t *testing.T) {
	s := dsl.String().Min(8, "password is too short")
	_, err := skema.Parse(context.Background(), s, "short")
	iss := issuesOf(t, err)
	assert.Equal(t, "password is too short", iss[0].Message)
}

func TestStringCoerce(t *testing.T) {
	out, err := skema.Parse(context.Background(), dsl.String().Coerce(), float64(3.5))
	require.NoError(t, err)
	assert.Equal(t, "3.5", out)

	out, err = skema.Parse(context.Background(), dsl.String().Coerce(), true)
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestNumberCanonicalizesToFloat64(t *testing.T) {
	ctx := context.Background()
	for _, in := range []any{42, int64(42), json.Number("42"), float64(42)} {
		out, err := skema.Parse(ctx, dsl.Number(), in)
		require.NoError(t, err, "input %T", in)
		assert.Equal(t, float64(42), out)
	}
}

func TestNumberConstraints(t *testing.T) {
	ctx := context.Background()
	_, err := skema.Parse(ctx, dsl.Number().Min(0).Max(10).Int(), float64(-3.5))
	iss := issuesOf(t, err)
	require.Len(t, iss, 2, "Min and Int both report")

	assert.True(t, skema.Is(ctx, dsl.Number().Gt(0), float64(1)))
	assert.False(t, skema.Is(ctx, dsl.Number().Gt(0), float64(0)))
	assert.True(t, skema.Is(ctx, dsl.Number().MultipleOf(5), float64(15)))
	assert.False(t, skema.Is(ctx, dsl.Number().MultipleOf(5), float64(7)))
}

func TestNumberNonFinite(t *testing.T) {
	for _, in := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := skema.Parse(context.Background(), dsl.Number(), in)
		iss := issuesOf(t, err)
		require.Len(t, iss, 1)
		assert.Equal(t, skema.CodeNotFinite, iss[0].Code)

		_, err = skema.Parse(context.Background(), dsl.Number().AllowNonFinite(), in)
		assert.NoError(t, err)
	}
}

func TestNumberCoerce(t *testing.T) {
	out, err := skema.Parse(context.Background(), dsl.Number().Coerce(), "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, out)

	_, err = skema.Parse(context.Background(), dsl.Number().Coerce(), "not a number")
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
}

func TestBool(t *testing.T) {
	ctx := context.Background()
	assert.True(t, skema.Is(ctx, dsl.Bool(), true))
	assert.False(t, skema.Is(ctx, dsl.Bool(), "true"))
	assert.True(t, skema.Is(ctx, dsl.Bool().Coerce(), "true"))

	out, err := skema.Parse(ctx, dsl.Bool().Coerce(), float64(0))
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestDateCoerce(t *testing.T) {
	ctx := context.Background()
	out, err := skema.Parse(ctx, dsl.Date().Coerce(), "2026-08-24T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC), out)

	out, err = skema.Parse(ctx, dsl.Date().Coerce(), float64(0))
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(0).UTC(), out)

	_, err = skema.Parse(ctx, dsl.Date().Coerce(), "yesterday")
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeInvalidDate, iss[0].Code)
}

func TestDateBounds(t *testing.T) {
	lo := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := dsl.Date().Min(lo)
	_, err := skema.Parse(context.Background(), s, lo.Add(-time.Hour))
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)
	assert.True(t, skema.Is(context.Background(), s, lo))
}

func TestLiteral(t *testing.T) {
	ctx := context.Background()
	assert.True(t, skema.Is(ctx, dsl.Literal("v1"), "v1"))
	assert.False(t, skema.Is(ctx, dsl.Literal("v1"), "v2"))
	// Numeric literals match across input representations.
	assert.True(t, skema.Is(ctx, dsl.Literal(1), json.Number("1")))

	_, err := skema.Parse(ctx, dsl.Literal("v1"), "v2")
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeInvalidLiteral, iss[0].Code)
}

func TestEnum(t *testing.T) {
	s := dsl.Enum("red", "green", "blue")
	assert.True(t, skema.Is(context.Background(), s, "green"))
	_, err := skema.Parse(context.Background(), s, "yellow")
	iss := issuesOf(t, err)
	assert.Equal(t, skema.CodeInvalidEnum, iss[0].Code)
}

func TestAny(t *testing.T) {
	for _, in := range []any{nil, "x", float64(1), map[string]any{}, []any{}} {
		assert.True(t, skema.Is(context.Background(), dsl.Any(), in))
	}
}

func TestConstraintMethodsDoNotMutate(t *testing.T) {
	base := dsl.String()
	long := base.Min(10)
	assert.True(t, skema.Is(context.Background(), base, "x"), "base keeps no Min")
	assert.False(t, skema.Is(context.Background(), long, "x"))
}
