package observable

import (
	"reflect"
	"sort"
)

// PropertyHost exposes observed (bindable) properties by name. The
// binding engine walks the attachment chain testing each ancestor with
// ObservedValue to locate the object owning the first path segment, so
// the root-source resolution is an explicit capability check rather than
// reflection over struct fields.
//
// Base implements PropertyHost over its dynamic property bag (Set/Get).
// Types with typed fields can shadow ObservedValue on the outer struct to
// expose those fields instead; they are then responsible for calling
// EmitChange after mutating them.
type PropertyHost interface {
	// ObservedValue returns the named property's current value and
	// whether the property exists on this object.
	ObservedValue(name string) (any, bool)
}

// PropertyLister additionally enumerates the observed property names.
// The harness renderer uses it to refresh a mirror node after a generic
// (untagged) change event.
type PropertyLister interface {
	ObservedNames() []string
}

// Set writes an observed property and emits a change event tagged with
// the property name. Writing a value equal to the current one (by
// ValueEqual) emits nothing. Writing on an unlinked object is a no-op.
func (b *Base) Set(name string, value any) {
	if b.unlinked || name == "" {
		return
	}
	if old, ok := b.props[name]; ok && ValueEqual(old, value) {
		return
	}
	if b.props == nil {
		b.props = make(map[string]any)
	}
	b.props[name] = value
	b.EmitChange(name)
}

// Get returns an observed property's value. It reports false for a
// property that was never set, and degrades to (nil, false) on an
// unlinked object, since dangling listeners can still read transiently.
func (b *Base) Get(name string) (any, bool) {
	if b.unlinked {
		return nil, false
	}
	v, ok := b.props[name]
	return v, ok
}

// ObservedValue implements PropertyHost over the dynamic property bag.
func (b *Base) ObservedValue(name string) (any, bool) {
	return b.Get(name)
}

// ObservedNames implements PropertyLister, returning the sorted names of
// all properties set so far. It returns nil on an unlinked object.
func (b *Base) ObservedNames() []string {
	if b.unlinked || len(b.props) == 0 {
		return nil
	}
	names := make([]string, 0, len(b.props))
	for name := range b.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValueEqual reports whether two bound values are equal by reference or
// primitive equality. Values of uncomparable dynamic types (slices, maps,
// functions) are never equal, so the binding engine conservatively
// re-delivers them. This is the dedup relation the binding engine uses to
// suppress no-op deliveries.
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
