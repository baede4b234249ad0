package skema

import (
	"fmt"
	"strconv"
	"strings"
)

// Path locates a value inside the input. Segments are strings (object keys)
// or ints (array indices). The zero value addresses the document root.
type Path []any

// Field returns a new Path with a key segment appended. The receiver is not
// modified.
func (p Path) Field(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = name
	return out
}

// Index returns a new Path with an index segment appended.
func (p Path) Index(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Join returns a new Path with segs appended.
func (p Path) Join(segs ...any) Path {
	out := make(Path, len(p), len(p)+len(segs))
	copy(out, p)
	return append(out, segs...)
}

// Pointer renders the path as an RFC 6901 JSON Pointer. The root renders as
// "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			b.WriteString(escapePointerSegment(s))
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			b.WriteString(escapePointerSegment(fmt.Sprint(seg)))
		}
	}
	return b.String()
}

func escapePointerSegment(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
