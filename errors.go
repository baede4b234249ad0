package skema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. Messages for each code live in the i18n package.
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeInvalidString        = "invalid_string"
	CodeInvalidLiteral       = "invalid_literal"
	CodeInvalidEnum          = "invalid_enum"
	CodeNotFinite            = "not_finite"
	CodeInvalidDate          = "invalid_date"
	CodeUnrecognizedKeys     = "unrecognized_keys"
	CodeInvalidUnion         = "invalid_union"
	CodeInvalidDiscriminator = "invalid_discriminator"
	CodeInvalidIntersection  = "invalid_intersection"
	CodeUniqueness           = "uniqueness"
	CodeParseError           = "parse_error"
	CodeCustom               = "custom"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    Path   // segment list ("email", 2, ...); render with Path.Pointer()
	Code    string // one of the Code* constants
	Message string
	Hint    string // optional: remediation hints, format names, etc.
	Cause   error  // optional: underlying error
	// Params carries structured parameters (for example {"min": 1}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is the aggregate produced by one parse call. Entries keep the
// deterministic order in which the engine visited the input. Issues
// implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to dst, initializing the slice when needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrAsyncSchema is returned by the synchronous entry points when the schema
// tree contains asynchronous stages (declared via the *Async constructors).
// The asynchronous check is never skipped silently.
var ErrAsyncSchema = errors.New("skema: schema contains async stages; use ParseAsync or SafeParseAsync")
