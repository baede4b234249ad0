// Package dsl provides the schema constructors and the composition algebra.
// Every constraint and combinator returns a new node; existing nodes are
// never mutated, so partially-applied schemas can be shared and extended
// freely:
//
//	base := dsl.Object().
//		Field("id", dsl.String().UUID()).
//		Field("name", dsl.String().NonEmpty())
//
//	strict := base.Strict()      // base keeps its Strip policy
//	patch  := base.DeepPartial() // every field optional, recursively
package dsl
