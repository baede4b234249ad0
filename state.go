package skema

import (
	"context"
	"fmt"

	"github.com/skemalib/skema/i18n"
)

// Mode selects the engine entry family a parse was started from.
type Mode int

const (
	ModeSync Mode = iota
	ModeAsync
)

// missingType marks object fields absent from the input. Optional and Default
// wrappers absorb the marker; every other node reports a required issue.
type missingType struct{}

func (missingType) String() string { return "<missing>" }

// Missing is the sentinel fed to field schemas when the key is absent.
var Missing any = missingType{}

// IsMissing reports whether v is the absent-field sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingType)
	return ok
}

// State carries the engine's per-parse context: current path, accumulated
// issues, mode and the caller's context. Composite nodes fork it to validate
// siblings concurrently in async mode.
type State struct {
	ctx  context.Context
	mode Mode
	path Path
	iss  Issues
}

// NewState returns a fresh State rooted at the document root.
func NewState(ctx context.Context, mode Mode) *State {
	if ctx == nil {
		ctx = context.Background()
	}
	return &State{ctx: ctx, mode: mode}
}

// Context returns the context the parse was started with.
func (s *State) Context() context.Context { return s.ctx }

// Mode reports whether the parse runs under the sync or async entry family.
func (s *State) Mode() Mode { return s.mode }

// Push descends into a child segment (string key or int index).
func (s *State) Push(seg any) { s.path = append(s.path, seg) }

// Pop ascends back to the parent segment.
func (s *State) Pop() { s.path = s.path[:len(s.path)-1] }

// Path returns a copy of the current path.
func (s *State) Path() Path {
	out := make(Path, len(s.path))
	copy(out, s.path)
	return out
}

// Add records an issue at the current path. An empty message is filled from
// the i18n dictionary for the code.
func (s *State) Add(code, msg string, params map[string]any) {
	if msg == "" {
		msg = i18n.T(code, stringParams(params))
	}
	s.iss = append(s.iss, Issue{Path: s.Path(), Code: code, Message: msg, Params: params})
}

// AddIssue records a fully-formed issue as-is.
func (s *State) AddIssue(is Issue) {
	if is.Message == "" {
		is.Message = i18n.T(is.Code, stringParams(is.Params))
	}
	s.iss = append(s.iss, is)
}

// Issues returns the accumulated issues.
func (s *State) Issues() Issues { return s.iss }

// Len returns the number of accumulated issues.
func (s *State) Len() int { return len(s.iss) }

// Fork returns a child State sharing context and mode, carrying a copy of the
// current path and an empty issue list. Used for sibling dispatch and for
// speculative checks (union alternatives, intersection sides).
func (s *State) Fork() *State {
	return &State{ctx: s.ctx, mode: s.mode, path: s.Path()}
}

// Merge appends a forked child's issues. Child paths are already absolute.
func (s *State) Merge(child *State) {
	if child == nil || len(child.iss) == 0 {
		return
	}
	s.iss = append(s.iss, child.iss...)
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Collector accumulates issues emitted by a SuperRefine visitor. Paths passed
// to Add are relative to the refined value and rebased onto the collector's
// base path.
type Collector struct {
	base Path
	iss  Issues
}

// NewCollector returns a Collector rebasing onto base.
func NewCollector(base Path) *Collector {
	return &Collector{base: base}
}

// Add records an issue at the given relative segments.
func (c *Collector) Add(code, msg string, segs ...any) {
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	c.iss = append(c.iss, Issue{Path: c.base.Join(segs...), Code: code, Message: msg})
}

// AddIssue records an issue whose Path is interpreted relative to the base.
func (c *Collector) AddIssue(is Issue) {
	is.Path = c.base.Join(is.Path...)
	if is.Message == "" {
		is.Message = i18n.T(is.Code, stringParams(is.Params))
	}
	c.iss = append(c.iss, is)
}

// Issues returns the collected issues.
func (c *Collector) Issues() Issues { return c.iss }

// Len returns the number of collected issues.
func (c *Collector) Len() int { return len(c.iss) }
