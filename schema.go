package skema

import (
	"github.com/skemalib/skema/jsonschema"
)

// Kind identifies the structural kind of a schema node.
type Kind string

const (
	KindString       Kind = "string"
	KindNumber       Kind = "number"
	KindBool         Kind = "bool"
	KindDate         Kind = "date"
	KindLiteral      Kind = "literal"
	KindEnum         Kind = "enum"
	KindAny          Kind = "any"
	KindObject       Kind = "object"
	KindArray        Kind = "array"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindEffect       Kind = "effect"
	KindLazy         Kind = "lazy"
)

// Schema is the node interface every combinator implements. Nodes are
// immutable after construction and safe for concurrent use.
//
// Check validates v against the node. Validation failures are recorded on the
// State; ok reports whether the subtree validated. The error return is
// reserved for fatal conditions (user-code failures that are not Issues,
// ErrAsyncSchema from the runtime guard, context cancellation) and aborts the
// parse.
type Schema interface {
	Kind() Kind
	Check(st *State, v any) (out any, ok bool, err error)
	// Async reports whether the subtree contains asynchronous stages.
	Async() bool
	// Descriptor exports the node's shape for documentation and codegen.
	Descriptor() *jsonschema.Schema
}
