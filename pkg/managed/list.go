package managed

import (
	"fmt"
	"reflect"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/observable"
)

// List is an ordered, duplicate-permitting sequence of observable
// objects, itself observable so the binding engine and list renderers
// can react to structural changes. By default a list owns its elements:
// added objects are attached to the list and unlinked when removed. A
// list built with References only points at externally owned records.
//
// Every structural mutation emits a change event tagged "items" whose
// payload carries the operation and the indexes affected, enough for a
// bound list renderer to resynchronize while preserving row identity.
type List struct {
	observable.Base

	owns     bool
	restrict reflect.Type
	items    []observable.Object
}

// ListOption configures a List at construction; the ownership mode and
// type restriction are fixed for the list's lifetime.
type ListOption func(*List)

// References makes the list reference its elements without owning them:
// elements are not attached on add and not unlinked on remove.
func References() ListOption {
	return func(l *List) { l.owns = false }
}

// RestrictTo limits the list to instances assignable to the prototype's
// type. Pass a nil pointer of the element type:
//
//	managed.NewList(managed.RestrictTo((*Item)(nil)))
//
// A pointer to an interface restricts to implementations of that
// interface. Adding a non-matching instance fails with a structural
// error and no partial mutation.
func RestrictTo(prototype any) ListOption {
	t := reflect.TypeOf(prototype)
	if t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	return func(l *List) { l.restrict = t }
}

// NewList creates an empty list. Without options the list owns its
// elements and accepts any observable object.
func NewList(opts ...ListOption) *List {
	l := &List{owns: true}
	l.Extend(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends items in order. If any item fails the type restriction or
// is itself unlinked, the whole call fails and the list is unchanged.
// Adding to an unlinked list is a no-op.
func (l *List) Add(items ...observable.Object) error {
	return l.insert(len(l.items), items)
}

// Insert places items before the given index, shifting later elements.
func (l *List) Insert(index int, items ...observable.Object) error {
	if index < 0 || index > len(l.items) {
		return l.structural("managed.List.Insert", fmt.Errorf("index %d out of range [0,%d]", index, len(l.items)))
	}
	return l.insert(index, items)
}

func (l *List) insert(index int, items []observable.Object) error {
	if l.IsUnlinked() {
		return nil
	}
	for _, item := range items {
		if err := l.checkType(item); err != nil {
			return err
		}
	}
	for _, item := range items {
		if l.owns {
			l.Attach(item)
		}
	}
	l.items = append(l.items[:index], append(append([]observable.Object{}, items...), l.items[index:]...)...)
	l.emitItems("add", map[string]any{"index": index, "count": len(items)})
	return nil
}

// Remove drops the first occurrence of item, matched by reference
// identity. An owned item is unlinked, unless another occurrence of the
// same object remains in the list. It reports whether a match was found.
func (l *List) Remove(item observable.Object) bool {
	index := l.IndexOf(item)
	if index < 0 {
		return false
	}
	l.removeIndex(index)
	return true
}

// RemoveAt drops the element at index, returning it, or nil when the
// index is out of range.
func (l *List) RemoveAt(index int) observable.Object {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.removeIndex(index)
}

func (l *List) removeIndex(index int) observable.Object {
	item := l.items[index]
	l.items = append(l.items[:index], l.items[index+1:]...)
	l.emitItems("remove", map[string]any{"index": index, "count": 1})
	if l.owns && l.IndexOf(item) < 0 {
		item.Core().Unlink()
	}
	return item
}

// Clear removes every element, unlinking owned ones, and emits a single
// structural change.
func (l *List) Clear() {
	if len(l.items) == 0 {
		return
	}
	removed := l.items
	l.items = nil
	l.emitItems("clear", nil)
	if l.owns {
		for _, item := range removed {
			item.Core().Unlink()
		}
	}
}

// Move relocates the element at from so it ends up at index to,
// preserving the element's identity. Renderers receive a single "move"
// change, so a row can be relocated without a remove/re-add flicker.
func (l *List) Move(from, to int) error {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return l.structural("managed.List.Move", fmt.Errorf("move %d->%d out of range [0,%d)", from, to, n))
	}
	if from == to {
		return nil
	}
	item := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items[:to], append([]observable.Object{item}, l.items[to:]...)...)
	l.emitItems("move", map[string]any{"from": from, "to": to})
	return nil
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at index, or nil when out of range.
func (l *List) At(index int) observable.Object {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.items[index]
}

// IndexOf returns the index of the first occurrence of item by reference
// identity, or -1.
func (l *List) IndexOf(item observable.Object) int {
	if item == nil {
		return -1
	}
	core := item.Core()
	for i, existing := range l.items {
		if existing.Core() == core {
			return i
		}
	}
	return -1
}

// Find returns the first element satisfying the predicate, or nil.
func (l *List) Find(pred func(observable.Object) bool) observable.Object {
	for _, item := range l.items {
		if pred(item) {
			return item
		}
	}
	return nil
}

// All returns the elements in order. The returned slice is a copy.
func (l *List) All() []observable.Object {
	out := make([]observable.Object, len(l.items))
	copy(out, l.items)
	return out
}

// ObservedValue exposes the element count as the bindable "length"
// property, alongside the dynamic properties of the embedded Base.
func (l *List) ObservedValue(name string) (any, bool) {
	if name == "length" {
		if l.IsUnlinked() {
			return nil, false
		}
		return len(l.items), true
	}
	return l.Base.ObservedValue(name)
}

// ChildDetached implements observable.ChildObserver: when an owned
// element is unlinked externally or claimed by another parent, it drops
// out of the list automatically.
func (l *List) ChildDetached(child observable.Object) {
	core := child.Core()
	removed := false
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i].Core() == core {
			l.items = append(l.items[:i], l.items[i+1:]...)
			removed = true
		}
	}
	if removed {
		l.emitItems("remove", nil)
	}
}

func (l *List) checkType(item observable.Object) error {
	if item == nil {
		return l.structural("managed.List.Add", fmt.Errorf("nil item"))
	}
	// An unlinked object can no longer be attached, so admitting it
	// would leave the list holding a dead, unowned element.
	if item.Core().IsUnlinked() {
		return l.structural("managed.List.Add", fmt.Errorf("unlinked item"))
	}
	if l.restrict == nil {
		return nil
	}
	t := reflect.TypeOf(item)
	if l.restrict.Kind() == reflect.Interface {
		if t.Implements(l.restrict) {
			return nil
		}
	} else if t.AssignableTo(l.restrict) {
		return nil
	}
	return l.structural("managed.List.Add", fmt.Errorf("item type %s does not satisfy restriction %s", t, l.restrict))
}

func (l *List) emitItems(op string, extra map[string]any) {
	data := map[string]any{"op": op, "length": len(l.items)}
	for k, v := range extra {
		data[k] = v
	}
	l.EmitEvent(observable.NewChangeEvent("items", data))
	l.EmitChange("length")
}

func (l *List) structural(op string, err error) error {
	return &errors.LoomError{Op: op, Kind: errors.KindStructural, Err: err}
}
