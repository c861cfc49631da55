package observable

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-loom/loom/pkg/errors"
)

// ErrAttachCycle is reported when attaching a child would make the
// attachment tree cyclic.
var ErrAttachCycle = fmt.Errorf("attachment would create a cycle")

// Object is implemented by any type that embeds Base. It is the handle
// the framework passes around: activities, view models, UI elements and
// managed collections are all Objects.
type Object interface {
	Core() *Base
}

// ChildObserver is implemented by owners that track their attached
// children. When an attached child is detached — because it was claimed
// by another parent or because it was unlinked — ChildDetached is called
// on the former owner.
type ChildObserver interface {
	ChildDetached(child Object)
}

// Lifecycle identifies a lifecycle transition reported to hooks
// registered with OnLifecycle.
type Lifecycle int

const (
	// LifecycleAttachChanged means the object gained, lost, or changed
	// its attachment parent. The binding engine uses this to re-resolve
	// path roots.
	LifecycleAttachChanged Lifecycle = iota
	// LifecycleChildrenChanged means the object's set of attached
	// children changed.
	LifecycleChildrenChanged
	// LifecycleUnlinked means the object was permanently deactivated.
	LifecycleUnlinked
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleAttachChanged:
		return "attach-changed"
	case LifecycleChildrenChanged:
		return "children-changed"
	case LifecycleUnlinked:
		return "unlinked"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

type listenerEntry struct {
	id int
	fn func(Event)
}

type lifecycleEntry struct {
	id int
	fn func(Lifecycle)
}

// Base provides the observable-object core: identity, the exclusive
// parent/child attachment tree, event listeners, and observed properties.
// Embed it in a struct and call Extend from the constructor so the
// framework sees the outer type:
//
//	type Counter struct {
//	    observable.Base
//	}
//
//	func NewCounter() *Counter {
//	    c := &Counter{}
//	    c.Extend(c)
//	    c.Set("count", 0)
//	    return c
//	}
//
// Base is NOT thread-safe. All mutation, event emission, and binding
// recomputation must happen on a single goroutine; a property write is
// reflected in every dependent binding before the write returns.
type Base struct {
	id   uuid.UUID
	self Object

	parent         *Base
	children       []*Base
	attachHandlers []func(Event)

	listeners      []listenerEntry
	nextListenerID int

	lifecycleHooks []lifecycleEntry
	nextHookID     int

	props map[string]any

	bindingRoot     bool
	bindingRootName string

	errHandler errors.ErrorHandler

	unlinked bool
}

// Core returns the embedded Base, satisfying Object.
func (b *Base) Core() *Base { return b }

// Extend registers the outer struct as the object's identity, so events
// report it as their source and interface checks (PropertyHost,
// ChildObserver) find methods defined on the outer type. Call it once
// from the constructor, passing the outer pointer.
func (b *Base) Extend(self Object) {
	if self != nil && b.self == nil {
		b.self = self
	}
}

// ID returns a stable unique identifier, assigned on first use.
func (b *Base) ID() uuid.UUID {
	if b.id == uuid.Nil {
		b.id = uuid.New()
	}
	return b.id
}

// IsUnlinked reports whether the object has been permanently deactivated.
func (b *Base) IsUnlinked() bool { return b.unlinked }

// Parent returns the attachment parent, or nil if the object is not
// currently attached.
func (b *Base) Parent() Object {
	if b.parent == nil {
		return nil
	}
	return b.parent.selfObject()
}

// VisitAttached calls visitor for each attached child in attachment
// order. Returning false stops the walk.
func (b *Base) VisitAttached(visitor func(Object) bool) {
	children := make([]*Base, len(b.children))
	copy(children, b.children)
	for _, child := range children {
		if !visitor(child.selfObject()) {
			return
		}
	}
}

// MarkBindingRoot designates this object as a binding context root for
// context-rooted path expressions ("#.path" or "#name.path"). The name
// may be empty; "#.path" matches the nearest root regardless of name.
func (b *Base) MarkBindingRoot(name string) {
	b.bindingRoot = true
	b.bindingRootName = name
}

// IsBindingRoot reports whether this object matches a context reference
// with the given name. An empty name matches any binding root.
func (b *Base) IsBindingRoot(name string) bool {
	if !b.bindingRoot {
		return false
	}
	return name == "" || name == b.bindingRootName
}

// SetErrorHandler overrides the error handler for this object and, via
// the attachment chain, everything attached beneath it. Objects without
// an override fall back to the process-wide handler. Pass nil to remove
// the override.
func (b *Base) SetErrorHandler(h errors.ErrorHandler) {
	b.errHandler = h
}

// Attach claims exclusive ownership of child, detaching it from any
// previous parent first. Optional onEvent handlers observe every event
// emitted on the child, including change events. Non-change child events
// additionally propagate to this object's own listeners unless the event
// suppresses propagation.
//
// Attaching an unlinked child, or attaching to an unlinked parent, is a
// no-op: teardown races are expected and must not fail. Attaching an
// ancestor of this object is refused and reported as a structural error.
// The child is returned for chaining in all cases.
func (b *Base) Attach(child Object, onEvent ...func(Event)) Object {
	if child == nil {
		return nil
	}
	cb := child.Core()
	cb.Extend(child)
	if b.unlinked || cb.unlinked {
		return child
	}
	for ancestor := b; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == cb {
			b.reportStructural("observable.Attach", ErrAttachCycle)
			return child
		}
	}
	if cb.parent == b {
		cb.attachHandlers = append(cb.attachHandlers[:0], onEvent...)
		cb.notifyLifecycle(LifecycleAttachChanged)
		return child
	}
	if cb.parent != nil {
		cb.parent.removeChild(cb, true)
	}
	cb.parent = b
	cb.attachHandlers = append([]func(Event){}, onEvent...)
	b.children = append(b.children, cb)
	cb.notifyLifecycle(LifecycleAttachChanged)
	b.notifyLifecycle(LifecycleChildrenChanged)
	return child
}

// Detach releases an attached child without unlinking it. The child
// keeps its own state and can be attached elsewhere. Detaching an object
// that is not a child of this one is a no-op.
func (b *Base) Detach(child Object) {
	if child == nil {
		return
	}
	cb := child.Core()
	if cb.parent != b {
		return
	}
	b.removeChild(cb, true)
	cb.parent = nil
	cb.attachHandlers = nil
	cb.notifyLifecycle(LifecycleAttachChanged)
}

// Listen registers a callback for every event emitted on this object,
// including propagated and change events. Listeners run in registration
// order; a panicking listener is reported to the error handler and does
// not prevent later listeners from running. The returned function removes
// the listener and is safe to call more than once.
//
// Listening on an unlinked object is a no-op and returns a no-op remover.
func (b *Base) Listen(fn func(Event)) func() {
	if fn == nil || b.unlinked {
		return func() {}
	}
	id := b.nextListenerID
	b.nextListenerID++
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		for i, entry := range b.listeners {
			if entry.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// OnLifecycle registers a hook for lifecycle transitions on this object.
// The binding engine uses this to re-resolve path roots after
// re-attachment; observers use it to notice unlinks and child changes.
// The returned function removes the hook.
func (b *Base) OnLifecycle(fn func(Lifecycle)) func() {
	if fn == nil || b.unlinked {
		return func() {}
	}
	id := b.nextHookID
	b.nextHookID++
	b.lifecycleHooks = append(b.lifecycleHooks, lifecycleEntry{id: id, fn: fn})
	return func() {
		for i, entry := range b.lifecycleHooks {
			if entry.id == id {
				b.lifecycleHooks = append(b.lifecycleHooks[:i], b.lifecycleHooks[i+1:]...)
				return
			}
		}
	}
}

// Emit constructs an event and synchronously delivers it: first to this
// object's listeners in registration order, then, unless propagation is
// suppressed, to the attachment parent wrapped as an inner event. The
// payload map is copied; nil means no payload. Emitting on an unlinked
// object is a no-op.
func (b *Base) Emit(name string, data map[string]any) {
	b.EmitEvent(NewEvent(name, data))
}

// EmitEvent delivers a pre-constructed event, stamping this object as its
// source. Use this with Event.WithoutPropagation or NewChangeEvent when
// Emit and EmitChange are not expressive enough.
func (b *Base) EmitEvent(ev Event) {
	if b.unlinked {
		return
	}
	ev.source = b.selfObject()
	b.deliver(ev)
}

// EmitChange emits a property-change event. The tag names the property
// that changed; an empty tag conservatively signals that any property may
// have changed. Change events are delivered locally (and to attach
// handlers) but never propagate to the parent.
func (b *Base) EmitChange(tag string) {
	b.EmitEvent(NewChangeEvent(tag, nil))
}

// Unlink permanently deactivates this object: attached children are
// unlinked first (depth-first), the object is detached from its parent,
// and all listeners and hooks are cleared. Unlink is idempotent and the
// sole teardown primitive; there is no way back to the linked state.
func (b *Base) Unlink() {
	b.unlink(map[*Base]bool{})
}

func (b *Base) unlink(visited map[*Base]bool) {
	if b.unlinked || visited[b] {
		return
	}
	visited[b] = true
	b.unlinked = true

	children := b.children
	b.children = nil
	for _, child := range children {
		child.parent = nil
		child.attachHandlers = nil
		child.unlink(visited)
	}

	if b.parent != nil {
		parent := b.parent
		b.parent = nil
		b.attachHandlers = nil
		parent.removeChild(b, true)
	}

	b.notifyLifecycle(LifecycleUnlinked)
	b.listeners = nil
	b.lifecycleHooks = nil
	b.props = nil
}

// deliver runs the local listeners, then the attach handlers registered
// by the parent, then propagates upward. Propagation wraps the event at
// every hop, so a child's listeners always complete before the parent's.
func (b *Base) deliver(ev Event) {
	listeners := make([]listenerEntry, len(b.listeners))
	copy(listeners, b.listeners)
	for _, entry := range listeners {
		b.invoke(entry.fn, ev)
	}

	handlers := make([]func(Event), len(b.attachHandlers))
	copy(handlers, b.attachHandlers)
	for _, fn := range handlers {
		b.invoke(fn, ev)
	}

	if ev.NoPropagation() || ev.IsChange() {
		return
	}
	parent := b.parent
	if parent == nil || parent.unlinked {
		return
	}
	parent.deliver(ev.propagated(parent.selfObject()))
}

// invoke runs a single listener, converting a panic into a report to the
// resolved error handler so delivery to the remaining listeners and the
// parent continues.
func (b *Base) invoke(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			h := b.resolveErrorHandler()
			if h == nil {
				return
			}
			h.HandleListenerError(&errors.ListenerError{
				Source:     b.describe(),
				Event:      ev.Name(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	fn(ev)
}

func (b *Base) notifyLifecycle(lc Lifecycle) {
	hooks := make([]lifecycleEntry, len(b.lifecycleHooks))
	copy(hooks, b.lifecycleHooks)
	for _, entry := range hooks {
		b.invokeHook(entry.fn, lc)
	}
}

// invokeHook runs a single lifecycle hook under the same recover guard
// as event listeners, so a panicking hook cannot unwind into the
// mutation that triggered the transition.
func (b *Base) invokeHook(fn func(Lifecycle), lc Lifecycle) {
	defer func() {
		if r := recover(); r != nil {
			h := b.resolveErrorHandler()
			if h == nil {
				return
			}
			h.HandleListenerError(&errors.ListenerError{
				Source:     b.describe(),
				Event:      "lifecycle:" + lc.String(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	fn(lc)
}

// removeChild drops child from the children slice. When notify is set,
// the owner's ChildDetached (if implemented on the outer type) and
// children-changed hooks run.
func (b *Base) removeChild(child *Base, notify bool) {
	for i, c := range b.children {
		if c == child {
			b.children = append(b.children[:i], b.children[i+1:]...)
			if notify {
				if observer, ok := b.selfObject().(ChildObserver); ok {
					observer.ChildDetached(child.selfObject())
				}
				b.notifyLifecycle(LifecycleChildrenChanged)
			}
			return
		}
	}
}

// selfObject returns the outer object registered via Extend or Attach,
// falling back to the Base itself when the object was never extended.
func (b *Base) selfObject() Object {
	if b.self != nil {
		return b.self
	}
	return b
}

// ErrorHandler returns the handler errors on this object are reported
// to: the nearest override on the attachment chain, or the process-wide
// handler. The binding engine and observers report through this so a
// tree configured with SetErrorHandler stays isolated in tests.
func (b *Base) ErrorHandler() errors.ErrorHandler {
	return b.resolveErrorHandler()
}

// resolveErrorHandler walks the attachment chain for the nearest handler
// override, falling back to the process-wide handler.
func (b *Base) resolveErrorHandler() errors.ErrorHandler {
	for cur := b; cur != nil; cur = cur.parent {
		if cur.errHandler != nil {
			return cur.errHandler
		}
	}
	return errors.Handler()
}

func (b *Base) reportStructural(op string, err error) {
	h := b.resolveErrorHandler()
	if h == nil {
		return
	}
	h.HandleError(&errors.LoomError{
		Op:        op,
		Kind:      errors.KindStructural,
		Err:       err,
		Source:    b.describe(),
		Timestamp: time.Now(),
	})
}

func (b *Base) describe() string {
	id := b.ID().String()
	return fmt.Sprintf("%T#%s", b.selfObject(), id[:8])
}
