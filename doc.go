// Package skema is a runtime schema-validation engine. Schemas are immutable
// node trees built with the dsl subpackage; parsing a value walks the tree,
// aggregates every validation failure into an Issues value and returns the
// (possibly transformed) output.
//
//	user := dsl.Object().
//		Field("email", dsl.String().Email()).
//		Field("age", dsl.Number().Int().NonNegative())
//
//	out, err := skema.Parse(ctx, user, input)
//	if iss, ok := skema.AsIssues(err); ok {
//		for _, it := range iss {
//			log.Println(it.Path.Pointer(), it.Code, it.Message)
//		}
//	}
//
// Parse and SafeParse are the synchronous entries; ParseAsync and
// SafeParseAsync additionally run stages registered with the *Async
// constructors and honor context deadlines. Synchronous entries reject
// schemas containing async stages with ErrAsyncSchema.
package skema
