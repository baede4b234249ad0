package skema

import (
	"context"
	"errors"
	"fmt"
)

// Result is the non-throwing parse outcome. Exactly one of Value and Issues
// is meaningful: OK selects which.
type Result struct {
	OK     bool
	Value  any
	Issues Issues
}

// Parse validates v synchronously and returns the output value. Validation
// failures are returned as Issues (which implements error); schemas that
// contain async stages are rejected with ErrAsyncSchema.
func Parse(ctx context.Context, s Schema, v any) (any, error) {
	out, iss, err := run(ctx, s, v, ModeSync)
	if err != nil {
		return nil, err
	}
	if iss != nil {
		return nil, iss
	}
	return out, nil
}

// SafeParse validates v synchronously without treating validation failure as
// an error. The error return is reserved for fatal conditions: nil schema,
// ErrAsyncSchema, or a non-Issue failure from user code.
func SafeParse(ctx context.Context, s Schema, v any) (Result, error) {
	out, iss, err := run(ctx, s, v, ModeSync)
	if err != nil {
		return Result{}, err
	}
	if iss != nil {
		return Result{Issues: iss}, nil
	}
	return Result{OK: true, Value: out}, nil
}

// ParseAsync validates v with async stages enabled. Context cancellation or
// deadline expiry surfaces as the context error, distinct from Issues.
func ParseAsync(ctx context.Context, s Schema, v any) (any, error) {
	out, iss, err := run(ctx, s, v, ModeAsync)
	if err != nil {
		return nil, err
	}
	if iss != nil {
		return nil, iss
	}
	return out, nil
}

// SafeParseAsync is the non-throwing form of ParseAsync.
func SafeParseAsync(ctx context.Context, s Schema, v any) (Result, error) {
	out, iss, err := run(ctx, s, v, ModeAsync)
	if err != nil {
		return Result{}, err
	}
	if iss != nil {
		return Result{Issues: iss}, nil
	}
	return Result{OK: true, Value: out}, nil
}

// ParseAs parses v and asserts the output to T. A type mismatch after a
// successful parse is a fatal error, not an Issue.
func ParseAs[T any](ctx context.Context, s Schema, v any) (T, error) {
	var zero T
	out, err := Parse(ctx, s, v)
	if err != nil {
		return zero, err
	}
	t, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("skema: parsed value is %T, not %T", out, zero)
	}
	return t, nil
}

// Is reports whether v validates against s. Fatal errors also report false.
func Is(ctx context.Context, s Schema, v any) bool {
	r, err := SafeParse(ctx, s, v)
	return err == nil && r.OK
}

func run(ctx context.Context, s Schema, v any, mode Mode) (any, Issues, error) {
	if s == nil {
		return nil, nil, errors.New("skema: nil schema")
	}
	// Upfront flag check; Lazy nodes are additionally caught by the runtime
	// guard inside their Check.
	if mode == ModeSync && s.Async() {
		return nil, nil, ErrAsyncSchema
	}
	st := NewState(ctx, mode)
	out, ok, err := s.Check(st, v)
	if err != nil {
		return nil, nil, err
	}
	if !ok || st.Len() > 0 {
		iss := st.Issues()
		if len(iss) == 0 {
			// A node reported failure without recording anything; keep the
			// aggregate non-empty so callers always see a cause.
			iss = Issues{{Path: Path{}, Code: CodeCustom, Message: "validation failed"}}
		}
		return nil, iss, nil
	}
	return out, nil, nil
}
