package dsl

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	skema "github.com/skemalib/skema"
	js "github.com/skemalib/skema/jsonschema"
)

// firstMsg picks the optional custom message attached to a constraint call.
func firstMsg(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}

func reportMissing(st *skema.State) {
	st.Add(skema.CodeRequired, "", nil)
}

// ---------------------------------------------------------------------------
// String

type stringCheck struct {
	code   string
	msg    string
	params map[string]any
	fn     func(string) bool
	js     func(*js.Schema)
}

// StringSchema validates string values. Constraints are independent: every
// check runs and reports even after an earlier one failed.
type StringSchema struct {
	checks  []stringCheck
	coerce  bool
	typeMsg string
}

// String returns a schema accepting string values.
func String() *StringSchema { return &StringSchema{} }

func (s *StringSchema) clone() *StringSchema {
	cp := *s
	cp.checks = make([]stringCheck, len(s.checks), len(s.checks)+1)
	copy(cp.checks, s.checks)
	return &cp
}

func (s *StringSchema) with(c stringCheck) *StringSchema {
	cp := s.clone()
	cp.checks = append(cp.checks, c)
	return cp
}

// Coerce converts number and bool inputs to their string rendering before
// validation.
func (s *StringSchema) Coerce() *StringSchema {
	cp := s.clone()
	cp.coerce = true
	return cp
}

// TypeMessage overrides the invalid_type message for this node.
func (s *StringSchema) TypeMessage(msg string) *StringSchema {
	cp := s.clone()
	cp.typeMsg = msg
	return cp
}

// Min requires at least n characters (runes).
func (s *StringSchema) Min(n int, msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": n},
		fn:     func(v string) bool { return len([]rune(v)) >= n },
		js:     func(d *js.Schema) { d.MinLength = js.IntPtr(n) },
	})
}

// Max requires at most n characters (runes).
func (s *StringSchema) Max(n int, msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeTooBig, msg: firstMsg(msg),
		params: map[string]any{"max": n},
		fn:     func(v string) bool { return len([]rune(v)) <= n },
		js:     func(d *js.Schema) { d.MaxLength = js.IntPtr(n) },
	})
}

// Length requires exactly n characters (runes).
func (s *StringSchema) Length(n int, msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"length": n},
		fn:     func(v string) bool { return len([]rune(v)) == n },
		js: func(d *js.Schema) {
			d.MinLength = js.IntPtr(n)
			d.MaxLength = js.IntPtr(n)
		},
	})
}

// NonEmpty requires a non-empty string; runtime-equivalent to Min(1).
func (s *StringSchema) NonEmpty(msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": 1},
		fn:     func(v string) bool { return v != "" },
		js:     func(d *js.Schema) { d.MinLength = js.IntPtr(1) },
	})
}

// Regex requires the value to match pattern. The pattern is compiled at
// construction; an invalid pattern panics, like regexp.MustCompile.
func (s *StringSchema) Regex(pattern string, msg ...string) *StringSchema {
	re := regexp.MustCompile(pattern)
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"pattern": pattern},
		fn:     re.MatchString,
		js:     func(d *js.Schema) { d.Pattern = pattern },
	})
}

// Email requires an RFC 5322 address (single mailbox, no display name).
func (s *StringSchema) Email(msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"format": "email"},
		fn: func(v string) bool {
			a, err := mail.ParseAddress(v)
			return err == nil && a.Address == v
		},
		js: func(d *js.Schema) { d.Format = "email" },
	})
}

// UUID requires a canonical hyphenated UUID.
func (s *StringSchema) UUID(msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"format": "uuid"},
		fn:     isUUID,
		js:     func(d *js.Schema) { d.Format = "uuid" },
	})
}

func isUUID(v string) bool {
	// Cheap shape check before the full parse.
	if len(v) != 36 || v[8] != '-' || v[13] != '-' || v[18] != '-' || v[23] != '-' {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

// URL requires an absolute URL with a scheme and host.
func (s *StringSchema) URL(msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"format": "url"},
		fn: func(v string) bool {
			u, err := url.Parse(v)
			return err == nil && u.Scheme != "" && u.Host != ""
		},
		js: func(d *js.Schema) { d.Format = "uri" },
	})
}

// StartsWith requires the given prefix.
func (s *StringSchema) StartsWith(prefix string, msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"startsWith": prefix},
		fn:     func(v string) bool { return strings.HasPrefix(v, prefix) },
		js:     func(d *js.Schema) { d.Pattern = "^" + regexp.QuoteMeta(prefix) },
	})
}

// EndsWith requires the given suffix.
func (s *StringSchema) EndsWith(suffix string, msg ...string) *StringSchema {
	return s.with(stringCheck{
		code: skema.CodeInvalidString, msg: firstMsg(msg),
		params: map[string]any{"endsWith": suffix},
		fn:     func(v string) bool { return strings.HasSuffix(v, suffix) },
		js:     func(d *js.Schema) { d.Pattern = regexp.QuoteMeta(suffix) + "$" },
	})
}

func (s *StringSchema) Kind() skema.Kind { return skema.KindString }
func (s *StringSchema) Async() bool      { return false }

func (s *StringSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	if s.coerce {
		v = coerceString(v)
	}
	str, ok := v.(string)
	if !ok {
		st.Add(skema.CodeInvalidType, s.typeMsg, map[string]any{"expected": "string", "got": typeName(v)})
		return nil, false, nil
	}
	failed := false
	for _, c := range s.checks {
		if !c.fn(str) {
			st.Add(c.code, c.msg, c.params)
			failed = true
		}
	}
	return str, !failed, nil
}

func (s *StringSchema) Descriptor() *js.Schema {
	d := &js.Schema{Type: "string"}
	for _, c := range s.checks {
		if c.js != nil {
			c.js(d)
		}
	}
	return d
}

func coerceString(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return v
	}
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case time.Time:
		return "date"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ---------------------------------------------------------------------------
// Number

type numberCheck struct {
	code   string
	msg    string
	params map[string]any
	fn     func(float64) bool
	js     func(*js.Schema)
}

// NumberSchema validates numeric values. Inputs of any Go numeric type and
// json.Number are canonicalized to float64 before checks run.
type NumberSchema struct {
	checks         []numberCheck
	coerce         bool
	allowNonFinite bool
	typeMsg        string
}

// Number returns a schema accepting numeric values.
func Number() *NumberSchema { return &NumberSchema{} }

func (s *NumberSchema) clone() *NumberSchema {
	cp := *s
	cp.checks = make([]numberCheck, len(s.checks), len(s.checks)+1)
	copy(cp.checks, s.checks)
	return &cp
}

func (s *NumberSchema) with(c numberCheck) *NumberSchema {
	cp := s.clone()
	cp.checks = append(cp.checks, c)
	return cp
}

// Coerce parses string and bool inputs into numbers before validation.
func (s *NumberSchema) Coerce() *NumberSchema {
	cp := s.clone()
	cp.coerce = true
	return cp
}

// AllowNonFinite permits NaN and ±Inf inputs, which are otherwise rejected
// with not_finite.
func (s *NumberSchema) AllowNonFinite() *NumberSchema {
	cp := s.clone()
	cp.allowNonFinite = true
	return cp
}

// TypeMessage overrides the invalid_type message for this node.
func (s *NumberSchema) TypeMessage(msg string) *NumberSchema {
	cp := s.clone()
	cp.typeMsg = msg
	return cp
}

// Min requires v >= n.
func (s *NumberSchema) Min(n float64, msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": n},
		fn:     func(v float64) bool { return v >= n },
		js:     func(d *js.Schema) { d.Minimum = js.FloatPtr(n) },
	})
}

// Max requires v <= n.
func (s *NumberSchema) Max(n float64, msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeTooBig, msg: firstMsg(msg),
		params: map[string]any{"max": n},
		fn:     func(v float64) bool { return v <= n },
		js:     func(d *js.Schema) { d.Maximum = js.FloatPtr(n) },
	})
}

// Gt requires v > n.
func (s *NumberSchema) Gt(n float64, msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"gt": n},
		fn:     func(v float64) bool { return v > n },
		js:     func(d *js.Schema) { d.ExclusiveMinimum = js.FloatPtr(n) },
	})
}

// Lt requires v < n.
func (s *NumberSchema) Lt(n float64, msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeTooBig, msg: firstMsg(msg),
		params: map[string]any{"lt": n},
		fn:     func(v float64) bool { return v < n },
		js:     func(d *js.Schema) { d.ExclusiveMaximum = js.FloatPtr(n) },
	})
}

// Int requires an integral value.
func (s *NumberSchema) Int(msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeInvalidType, msg: firstMsg(msg),
		params: map[string]any{"expected": "integer"},
		fn:     func(v float64) bool { return v == math.Trunc(v) },
		js:     func(d *js.Schema) { d.Type = "integer" },
	})
}

// Positive requires v > 0.
func (s *NumberSchema) Positive(msg ...string) *NumberSchema { return s.Gt(0, msg...) }

// NonNegative requires v >= 0.
func (s *NumberSchema) NonNegative(msg ...string) *NumberSchema { return s.Min(0, msg...) }

// Negative requires v < 0.
func (s *NumberSchema) Negative(msg ...string) *NumberSchema { return s.Lt(0, msg...) }

// NonPositive requires v <= 0.
func (s *NumberSchema) NonPositive(msg ...string) *NumberSchema { return s.Max(0, msg...) }

// MultipleOf requires v to be divisible by n.
func (s *NumberSchema) MultipleOf(n float64, msg ...string) *NumberSchema {
	return s.with(numberCheck{
		code: skema.CodeCustom, msg: firstMsg(msg),
		params: map[string]any{"multipleOf": n},
		fn: func(v float64) bool {
			if n == 0 {
				return false
			}
			q := v / n
			return q == math.Trunc(q)
		},
		js: func(d *js.Schema) { d.MultipleOf = js.FloatPtr(n) },
	})
}

func (s *NumberSchema) Kind() skema.Kind { return skema.KindNumber }
func (s *NumberSchema) Async() bool      { return false }

func (s *NumberSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	if s.coerce {
		v = coerceNumber(v)
	}
	f, ok := toFloat(v)
	if !ok {
		st.Add(skema.CodeInvalidType, s.typeMsg, map[string]any{"expected": "number", "got": typeName(v)})
		return nil, false, nil
	}
	if !s.allowNonFinite && (math.IsNaN(f) || math.IsInf(f, 0)) {
		st.Add(skema.CodeNotFinite, "", nil)
		return nil, false, nil
	}
	failed := false
	for _, c := range s.checks {
		if !c.fn(f) {
			st.Add(c.code, c.msg, c.params)
			failed = true
		}
	}
	return f, !failed, nil
}

func (s *NumberSchema) Descriptor() *js.Schema {
	d := &js.Schema{Type: "number"}
	for _, c := range s.checks {
		if c.js != nil {
			c.js(d)
		}
	}
	return d
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceNumber(v any) any {
	switch t := v.(type) {
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
		return v
	case bool:
		if t {
			return float64(1)
		}
		return float64(0)
	default:
		return v
	}
}

// ---------------------------------------------------------------------------
// Bool

// BoolSchema validates boolean values.
type BoolSchema struct {
	coerce  bool
	typeMsg string
}

// Bool returns a schema accepting boolean values.
func Bool() *BoolSchema { return &BoolSchema{} }

// Coerce parses string inputs via strconv.ParseBool and maps numbers to their
// zero test.
func (s *BoolSchema) Coerce() *BoolSchema {
	cp := *s
	cp.coerce = true
	return &cp
}

// TypeMessage overrides the invalid_type message for this node.
func (s *BoolSchema) TypeMessage(msg string) *BoolSchema {
	cp := *s
	cp.typeMsg = msg
	return &cp
}

func (s *BoolSchema) Kind() skema.Kind { return skema.KindBool }
func (s *BoolSchema) Async() bool      { return false }

func (s *BoolSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	if s.coerce {
		switch t := v.(type) {
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				v = b
			}
		default:
			if f, ok := toFloat(v); ok {
				v = f != 0
			}
		}
	}
	b, ok := v.(bool)
	if !ok {
		st.Add(skema.CodeInvalidType, s.typeMsg, map[string]any{"expected": "bool", "got": typeName(v)})
		return nil, false, nil
	}
	return b, true, nil
}

func (s *BoolSchema) Descriptor() *js.Schema { return &js.Schema{Type: "boolean"} }

// ---------------------------------------------------------------------------
// Date

type dateCheck struct {
	code   string
	msg    string
	params map[string]any
	fn     func(time.Time) bool
}

// DateSchema validates time.Time values. With Coerce it also accepts RFC 3339
// strings and Unix-millisecond numbers.
type DateSchema struct {
	checks  []dateCheck
	coerce  bool
	typeMsg string
}

// Date returns a schema accepting time.Time values.
func Date() *DateSchema { return &DateSchema{} }

func (s *DateSchema) clone() *DateSchema {
	cp := *s
	cp.checks = make([]dateCheck, len(s.checks), len(s.checks)+1)
	copy(cp.checks, s.checks)
	return &cp
}

// Coerce accepts RFC 3339 strings and Unix-millisecond numbers in addition to
// time.Time.
func (s *DateSchema) Coerce() *DateSchema {
	cp := s.clone()
	cp.coerce = true
	return cp
}

// Min requires the instant to be at or after t.
func (s *DateSchema) Min(t time.Time, msg ...string) *DateSchema {
	cp := s.clone()
	cp.checks = append(cp.checks, dateCheck{
		code: skema.CodeTooSmall, msg: firstMsg(msg),
		params: map[string]any{"min": t.Format(time.RFC3339)},
		fn:     func(v time.Time) bool { return !v.Before(t) },
	})
	return cp
}

// Max requires the instant to be at or before t.
func (s *DateSchema) Max(t time.Time, msg ...string) *DateSchema {
	cp := s.clone()
	cp.checks = append(cp.checks, dateCheck{
		code: skema.CodeTooBig, msg: firstMsg(msg),
		params: map[string]any{"max": t.Format(time.RFC3339)},
		fn:     func(v time.Time) bool { return !v.After(t) },
	})
	return cp
}

func (s *DateSchema) Kind() skema.Kind { return skema.KindDate }
func (s *DateSchema) Async() bool      { return false }

func (s *DateSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	t, ok := v.(time.Time)
	if !ok && s.coerce {
		switch raw := v.(type) {
		case string:
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				st.Add(skema.CodeInvalidDate, "", map[string]any{"value": raw})
				return nil, false, nil
			}
			t, ok = parsed, true
		default:
			if ms, isNum := toFloat(raw); isNum {
				t, ok = time.UnixMilli(int64(ms)).UTC(), true
			}
		}
	}
	if !ok {
		st.Add(skema.CodeInvalidType, s.typeMsg, map[string]any{"expected": "date", "got": typeName(v)})
		return nil, false, nil
	}
	failed := false
	for _, c := range s.checks {
		if !c.fn(t) {
			st.Add(c.code, c.msg, c.params)
			failed = true
		}
	}
	return t, !failed, nil
}

func (s *DateSchema) Descriptor() *js.Schema {
	return &js.Schema{Type: "string", Format: "date-time"}
}

// ---------------------------------------------------------------------------
// Literal / Enum / Any

// LiteralSchema matches exactly one value, compared with reflect.DeepEqual
// after numeric canonicalization.
type LiteralSchema struct {
	value any
	msg   string
}

// Literal returns a schema matching exactly v.
func Literal(v any, msg ...string) *LiteralSchema {
	return &LiteralSchema{value: canonValue(v), msg: firstMsg(msg)}
}

func (s *LiteralSchema) Kind() skema.Kind { return skema.KindLiteral }
func (s *LiteralSchema) Async() bool      { return false }

func (s *LiteralSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	got := canonValue(v)
	if !reflect.DeepEqual(got, s.value) {
		st.Add(skema.CodeInvalidLiteral, s.msg, map[string]any{"expected": s.value})
		return nil, false, nil
	}
	return got, true, nil
}

func (s *LiteralSchema) Descriptor() *js.Schema {
	return &js.Schema{Const: s.value, Type: literalType(s.value)}
}

// tagValues lets discriminated unions index this node's possible values.
func (s *LiteralSchema) tagValues() []any { return []any{s.value} }

// EnumSchema matches one of a fixed set of strings.
type EnumSchema struct {
	values []string
	set    map[string]struct{}
	msg    string
}

// Enum returns a schema matching one of the given strings.
func Enum(values ...string) *EnumSchema {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	vs := make([]string, len(values))
	copy(vs, values)
	return &EnumSchema{values: vs, set: set}
}

// Message overrides the invalid_enum message.
func (s *EnumSchema) Message(msg string) *EnumSchema {
	cp := *s
	cp.msg = msg
	return &cp
}

func (s *EnumSchema) Kind() skema.Kind { return skema.KindEnum }
func (s *EnumSchema) Async() bool      { return false }

func (s *EnumSchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	str, ok := v.(string)
	if !ok {
		st.Add(skema.CodeInvalidType, "", map[string]any{"expected": "string", "got": typeName(v)})
		return nil, false, nil
	}
	if _, found := s.set[str]; !found {
		st.Add(skema.CodeInvalidEnum, s.msg, map[string]any{"options": strings.Join(s.values, ", ")})
		return nil, false, nil
	}
	return str, true, nil
}

func (s *EnumSchema) Descriptor() *js.Schema {
	opts := make([]any, len(s.values))
	for i, v := range s.values {
		opts[i] = v
	}
	return &js.Schema{Type: "string", Enum: opts}
}

func (s *EnumSchema) tagValues() []any {
	out := make([]any, len(s.values))
	for i, v := range s.values {
		out[i] = v
	}
	return out
}

// AnySchema accepts every value, including null.
type AnySchema struct{}

// Any returns a schema accepting every value.
func Any() *AnySchema { return &AnySchema{} }

func (s *AnySchema) Kind() skema.Kind { return skema.KindAny }
func (s *AnySchema) Async() bool      { return false }

func (s *AnySchema) Check(st *skema.State, v any) (any, bool, error) {
	if skema.IsMissing(v) {
		reportMissing(st)
		return nil, false, nil
	}
	return v, true, nil
}

func (s *AnySchema) Descriptor() *js.Schema { return &js.Schema{} }

// canonValue normalizes numeric values to float64 so Literal("1") and
// json.Number inputs compare predictably.
func canonValue(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

func literalType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return ""
	}
}
