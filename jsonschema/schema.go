// Package jsonschema holds the shape-descriptor representation schemas export
// through Descriptor(). It covers the subset of JSON Schema the node tree can
// express; marshal it with any JSON encoder.
package jsonschema

// Schema is the exported shape of a node.
type Schema struct {
	// Core
	Type     string `json:"type,omitempty"`
	Format   string `json:"format,omitempty"`
	Default  any    `json:"default,omitempty"`
	Const    any    `json:"const,omitempty"`
	Enum     []any  `json:"enum,omitempty"`
	Nullable bool   `json:"nullable,omitempty"`
	Ref      string `json:"$ref,omitempty"`

	// String
	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Composition
	OneOf         []*Schema `json:"oneOf,omitempty"`
	AllOf         []*Schema `json:"allOf,omitempty"`
	Discriminator string    `json:"discriminator,omitempty"`
}

// IntPtr is a small helper for the pointer-typed bounds.
func IntPtr(n int) *int { return &n }

// FloatPtr is a small helper for the pointer-typed bounds.
func FloatPtr(f float64) *float64 { return &f }
