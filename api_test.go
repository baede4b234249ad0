package skema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/skemalib/skema"
	"github.com/skemalib/skema/dsl"
)

func userSchema() *dsl.ObjectSchema {
	return dsl.Object().
		Field("email", dsl.String().Email()).
		Field("age", dsl.Number().Int().NonNegative())
}

func TestParseAndSafeParseAgree(t *testing.T) {
	s := userSchema()
	inputs := []any{
		map[string]any{"email": "a@example.com", "age": float64(30)},
		map[string]any{"email": "nope", "age": float64(30)},
		map[string]any{"email": "a@example.com"},
		"not an object",
		nil,
	}
	for _, in := range inputs {
		out, err := skema.Parse(context.Background(), s, in)
		r, serr := skema.SafeParse(context.Background(), s, in)
		require.NoError(t, serr)
		if err == nil {
			assert.True(t, r.OK)
			assert.Equal(t, out, r.Value)
			assert.Empty(t, r.Issues)
		} else {
			iss, ok := skema.AsIssues(err)
			require.True(t, ok, "parse failure must be Issues, got %v", err)
			assert.False(t, r.OK)
			assert.Equal(t, iss, r.Issues)
		}
	}
}

func TestParseAggregatesAllIssues(t *testing.T) {
	s := userSchema()
	_, err := skema.Parse(context.Background(), s, map[string]any{
		"email": "nope",
		"age":   float64(-1),
	})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "/email", iss[0].Path.Pointer())
	assert.Equal(t, skema.CodeInvalidString, iss[0].Code)
	assert.Equal(t, "/age", iss[1].Path.Pointer())
	assert.Equal(t, skema.CodeTooSmall, iss[1].Code)
}

func TestParseAs(t *testing.T) {
	got, err := skema.ParseAs[string](context.Background(), dsl.String(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = skema.ParseAs[float64](context.Background(), dsl.String(), "hi")
	require.Error(t, err)
	_, isIssues := skema.AsIssues(err)
	assert.False(t, isIssues, "type mismatch is fatal, not an Issue")
}

func TestIs(t *testing.T) {
	s := dsl.String().Min(2)
	assert.True(t, skema.Is(context.Background(), s, "ok"))
	assert.False(t, skema.Is(context.Background(), s, "x"))
	assert.False(t, skema.Is(context.Background(), s, 42))
}

func TestNilSchemaIsFatal(t *testing.T) {
	_, err := skema.Parse(context.Background(), nil, "x")
	require.Error(t, err)
	_, isIssues := skema.AsIssues(err)
	assert.False(t, isIssues)
}

func TestIssuesErrorSummary(t *testing.T) {
	iss := skema.Issues{
		{Path: skema.Path{"a"}, Code: skema.CodeRequired},
		{Path: skema.Path{"b"}, Code: skema.CodeInvalidType},
		{Path: skema.Path{"c"}, Code: skema.CodeTooSmall},
		{Path: skema.Path{"d"}, Code: skema.CodeTooBig},
	}
	msg := iss.Error()
	assert.Contains(t, msg, "required at /a")
	assert.Contains(t, msg, "total 4")
	assert.NotContains(t, msg, "/d", "summary stops after three issues")
}

func TestParseJSON(t *testing.T) {
	s := userSchema()
	out, err := skema.ParseJSON(context.Background(), s, []byte(`{"email":"a@example.com","age":30}`))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, float64(30), m["age"], "numbers canonicalize to float64")

	_, err = skema.ParseJSON(context.Background(), s, []byte(`{"email":`))
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeParseError, iss[0].Code)
}

func TestParseYAML(t *testing.T) {
	s := userSchema()
	out, err := skema.ParseYAML(context.Background(), s, []byte("email: a@example.com\nage: 30\n"))
	require.NoError(t, err)
	assert.Equal(t, float64(30), out.(map[string]any)["age"])

	_, err = skema.ParseYAML(context.Background(), s, []byte(":\n- ["))
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeParseError, iss[0].Code)
}

func TestSafeParseJSONDoesNotErrorOnValidationFailure(t *testing.T) {
	r, err := skema.SafeParseJSON(context.Background(), userSchema(), []byte(`{"email":"nope","age":1}`))
	require.NoError(t, err)
	assert.False(t, r.OK)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "/email", r.Issues[0].Path.Pointer())
}
