package binding

import (
	"fmt"
	"strings"

	"github.com/go-loom/loom/pkg/errors"
)

// Path is a parsed path expression: a dotted sequence of property names,
// optionally rooted at a named binding context instead of the nearest
// attachment ancestor.
//
// Syntax:
//
//	count                 property on the nearest ancestor exposing it
//	item.title            nested property access
//	#.busy                rooted at the nearest binding root
//	#activity.user.name   rooted at the binding root named "activity"
type Path struct {
	raw         string
	context     bool
	contextName string
	segments    []string
}

// ParsePath parses a path expression, failing fast with a descriptive
// structural error on malformed syntax. A path that parses but never
// resolves at runtime is not an error; it simply yields undefined.
func ParsePath(expr string) (Path, error) {
	p := Path{raw: expr}
	rest := expr
	if strings.HasPrefix(rest, "#") {
		p.context = true
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			return Path{}, pathError(expr, "context reference must be followed by a property path")
		}
		p.contextName = rest[1:dot]
		if p.contextName != "" && !validIdent(p.contextName) {
			return Path{}, pathError(expr, fmt.Sprintf("invalid context name %q", p.contextName))
		}
		rest = rest[dot+1:]
	}
	if rest == "" {
		return Path{}, pathError(expr, "empty path")
	}
	for _, seg := range strings.Split(rest, ".") {
		if seg == "" {
			return Path{}, pathError(expr, "empty path segment")
		}
		if !validIdent(seg) {
			return Path{}, pathError(expr, fmt.Sprintf("invalid property name %q", seg))
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

// String returns the original path expression.
func (p Path) String() string { return p.raw }

// Segments returns the property-name segments in resolution order.
func (p Path) Segments() []string { return p.segments }

// ContextRooted reports whether the path resolves against a designated
// binding root rather than the nearest ancestor owning the first segment.
func (p Path) ContextRooted() bool { return p.context }

// ContextName returns the binding-root name for a context-rooted path,
// or "" when any root matches.
func (p Path) ContextName() string { return p.contextName }

func pathError(expr, reason string) error {
	return &errors.LoomError{
		Op:   "binding.ParsePath",
		Kind: errors.KindStructural,
		Err:  fmt.Errorf("invalid path expression %q: %s", expr, reason),
	}
}

func validIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
