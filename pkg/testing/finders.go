package testing

import (
	"github.com/go-loom/loom/pkg/observable"
)

// Finder locates objects in the observed attachment tree.
type Finder interface {
	// Matches reports whether the object satisfies the finder.
	Matches(h *Harness, obj observable.Object) bool
	// Description returns a human-readable description for error messages.
	Description() string
}

// Find evaluates a finder over the observed tree in depth-first
// attachment order, root first.
func (h *Harness) Find(f Finder) FinderResult {
	var matches []observable.Object
	h.walk(h.root, func(obj observable.Object) {
		if f.Matches(h, obj) {
			matches = append(matches, obj)
		}
	})
	return FinderResult{objects: matches, finder: f}
}

func (h *Harness) walk(obj observable.Object, visit func(observable.Object)) {
	if obj == nil || obj.Core().IsUnlinked() {
		return
	}
	visit(obj)
	obj.Core().VisitAttached(func(child observable.Object) bool {
		h.walk(child, visit)
		return true
	})
}

// FinderResult wraps finder matches with convenient accessors.
type FinderResult struct {
	objects []observable.Object
	finder  Finder
}

// First returns the first match. Panics if there are none.
func (r FinderResult) First() observable.Object {
	if len(r.objects) == 0 {
		panic("Finder found no objects: " + r.describe())
	}
	return r.objects[0]
}

// FirstOrNil returns the first match, or nil.
func (r FinderResult) FirstOrNil() observable.Object {
	if len(r.objects) == 0 {
		return nil
	}
	return r.objects[0]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []observable.Object { return r.objects }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.objects) }

// Exists reports whether at least one object matched.
func (r FinderResult) Exists() bool { return len(r.objects) > 0 }

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// ByID matches the object with the given harness label, e.g. "Counter#1".
func ByID(id string) Finder { return byID(id) }

type byID string

func (f byID) Matches(h *Harness, obj observable.Object) bool {
	return h.ID(obj) == string(f)
}

func (f byID) Description() string { return "id == " + string(f) }

// ByType matches objects whose type name equals name (without package
// qualifier or pointer marker).
func ByType(name string) Finder { return byType(name) }

type byType string

func (f byType) Matches(_ *Harness, obj observable.Object) bool {
	return typeName(obj) == string(f)
}

func (f byType) Description() string { return "type == " + string(f) }

// ByProp matches objects exposing an observed property with the given
// value (compared by observable.ValueEqual).
func ByProp(name string, value any) Finder {
	return byProp{name: name, value: value}
}

type byProp struct {
	name  string
	value any
}

func (f byProp) Matches(_ *Harness, obj observable.Object) bool {
	host, ok := obj.(observable.PropertyHost)
	if !ok {
		return false
	}
	v, ok := host.ObservedValue(f.name)
	return ok && observable.ValueEqual(v, f.value)
}

func (f byProp) Description() string {
	return "prop " + f.name
}

// ByPredicate matches objects satisfying an arbitrary predicate.
func ByPredicate(desc string, pred func(observable.Object) bool) Finder {
	return byPredicate{desc: desc, pred: pred}
}

type byPredicate struct {
	desc string
	pred func(observable.Object) bool
}

func (f byPredicate) Matches(_ *Harness, obj observable.Object) bool {
	return f.pred(obj)
}

func (f byPredicate) Description() string { return f.desc }
