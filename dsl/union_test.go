package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/skemalib/skema"
	"github.com/skemalib/skema/dsl"
)

func TestUnionFirstMatchWins(t *testing.T) {
	s := dsl.Union(dsl.String().Coerce(), dsl.Number())
	out, err := skema.Parse(context.Background(), s, float64(5))
	require.NoError(t, err)
	assert.Equal(t, "5", out, "alternatives try in declaration order")
}

func TestUnionAllFailSingleIssue(t *testing.T) {
	s := dsl.Union(dsl.String(), dsl.Number())
	_, err := skema.Parse(context.Background(), s, true)
	iss := issuesOf(t, err)
	require.Len(t, iss, 1, "per-alternative noise is collapsed")
	assert.Equal(t, skema.CodeInvalidUnion, iss[0].Code)
	assert.Equal(t, "/", iss[0].Path.Pointer())
}

func TestUnionInsideObjectKeepsPath(t *testing.T) {
	s := dsl.Object().Field("v", dsl.Union(dsl.String(), dsl.Number()))
	_, err := skema.Parse(context.Background(), s, map[string]any{"v": true})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/v", iss[0].Path.Pointer())
}

func eventSchemas() (*dsl.ObjectSchema, *dsl.ObjectSchema) {
	created := dsl.Object().
		Field("type", dsl.Literal("created")).
		Field("id", dsl.String().UUID())
	deleted := dsl.Object().
		Field("type", dsl.Literal("deleted")).
		Field("reason", dsl.String().NonEmpty())
	return created, deleted
}

func TestDiscriminatedUnionRoutesByTag(t *testing.T) {
	created, deleted := eventSchemas()
	s, err := dsl.DiscriminatedUnion("type", created, deleted)
	require.NoError(t, err)

	out, err := skema.Parse(context.Background(), s, map[string]any{
		"type": "deleted", "reason": "cleanup",
	})
	require.NoError(t, err)
	assert.Equal(t, "cleanup", out.(map[string]any)["reason"])
}

func TestDiscriminatedUnionMatchedBranchIssuesSurface(t *testing.T) {
	created, deleted := eventSchemas()
	s := dsl.MustDiscriminatedUnion("type", created, deleted)

	_, err := skema.Parse(context.Background(), s, map[string]any{
		"type": "created", "id": "nope",
	})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/id", iss[0].Path.Pointer())
	assert.Equal(t, skema.CodeInvalidString, iss[0].Code)
}

func TestDiscriminatedUnionUnknownTag(t *testing.T) {
	created, deleted := eventSchemas()
	s := dsl.MustDiscriminatedUnion("type", created, deleted)

	_, err := skema.Parse(context.Background(), s, map[string]any{"type": "archived"})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidDiscriminator, iss[0].Code)
	assert.Equal(t, "/type", iss[0].Path.Pointer())

	_, err = skema.Parse(context.Background(), s, map[string]any{"reason": "no tag"})
	iss = issuesOf(t, err)
	assert.Equal(t, skema.CodeInvalidDiscriminator, iss[0].Code)
}

func TestDiscriminatedUnionEnumTags(t *testing.T) {
	active := dsl.Object().Field("state", dsl.Enum("active", "enabled"))
	gone := dsl.Object().Field("state", dsl.Literal("gone"))
	s, err := dsl.DiscriminatedUnion("state", active, gone)
	require.NoError(t, err)
	assert.True(t, skema.Is(context.Background(), s, map[string]any{"state": "enabled"}))
}

func TestDiscriminatedUnionConstructionErrors(t *testing.T) {
	noTag := dsl.Object().Field("type", dsl.String())
	_, err := dsl.DiscriminatedUnion("type", noTag)
	require.Error(t, err, "discriminant must be a Literal or Enum")

	missingKey := dsl.Object().Field("other", dsl.Literal("x"))
	_, err = dsl.DiscriminatedUnion("type", missingKey)
	require.Error(t, err)

	a := dsl.Object().Field("type", dsl.Literal("same"))
	b := dsl.Object().Field("type", dsl.Literal("same"))
	_, err = dsl.DiscriminatedUnion("type", a, b)
	require.Error(t, err, "duplicate tag values are rejected")
}
