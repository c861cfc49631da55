// Package observable provides the reactive object model at the heart of
// Loom: observable objects, the exclusive attachment tree, and the event
// emission and propagation machinery the binding engine is built on.
//
// # Objects and attachment
//
// Application code builds a tree of observable objects — activities,
// view models, UI elements — by embedding Base and claiming ownership
// with Attach:
//
//	type TodoList struct {
//	    observable.Base
//	}
//
//	func NewTodoList() *TodoList {
//	    l := &TodoList{}
//	    l.Extend(l)
//	    return l
//	}
//
//	parent.Attach(child)
//
// An object has at most one attachment parent; attaching to a new parent
// detaches from the previous one. Unlinking an object cascades to its
// attached subtree and is idempotent. Once unlinked, an object is
// permanently dead: all operations on it degrade to no-ops or zero
// values rather than failing, because the object graph is torn down
// asynchronously relative to in-flight binding recomputation.
//
// # Events
//
// Emit delivers an event synchronously to the object's listeners in
// registration order, then bubbles it to the attachment parent wrapped
// as an inner event, unless propagation is suppressed. Change events
// (EmitChange) notify property observers and never bubble. A panicking
// listener is reported through pkg/errors and does not interrupt
// delivery.
//
// # Properties
//
// Observed properties are read through the PropertyHost capability. Base
// provides a dynamic property bag (Set/Get) that emits tagged change
// events automatically; typed objects can shadow ObservedValue instead
// and call EmitChange by hand.
//
// # Threading
//
// The package is single-threaded by design, matching a UI event loop:
// emission, propagation, and binding recomputation all complete within
// the triggering call stack, so a property write is observable in every
// dependent binding before the write returns.
package observable
