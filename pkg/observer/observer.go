// Package observer defines the contract between the observable core and
// a renderer. A renderer obtains a handle to a root observable object
// (e.g. an activity's view), registers an Observer over it, and
// translates the resulting notifications into target-specific output.
// The harness renderer in pkg/testing is the in-repo implementation;
// platform renderers live outside the core.
package observer

import "github.com/go-loom/loom/pkg/observable"

// Observer receives notifications for an observed object and every
// object attached beneath it.
type Observer interface {
	// ObjectObserved is called once when an object enters observation:
	// for the root and each existing descendant when Observe is called,
	// and for objects attached into the tree afterwards.
	ObjectObserved(obj observable.Object)
	// EventEmitted is called for each non-change event delivered on an
	// observed object, including events propagated from its children
	// (distinguishable by a non-nil Inner).
	EventEmitted(obj observable.Object, ev observable.Event)
	// PropertyChanged is called for each change event. An empty tag
	// means any property may have changed.
	PropertyChanged(obj observable.Object, tag string)
	// ObjectUnlinked is called when an observed object is unlinked.
	// No further notifications follow for that object.
	ObjectUnlinked(obj observable.Object)
}

// Observe registers the observer over root and its attached descendants,
// following attachments made later. The returned function tears the
// registration down; renderers must call it (or unlink the root) when
// the corresponding UI surface is removed.
func Observe(root observable.Object, o Observer) (stop func()) {
	w := &watcher{observer: o, nodes: map[*observable.Base]*nodeWatch{}}
	w.observe(root)
	return w.stop
}

type watcher struct {
	observer Observer
	nodes    map[*observable.Base]*nodeWatch
	stopped  bool
}

type nodeWatch struct {
	removeListener func()
	removeHook     func()
}

func (w *watcher) observe(obj observable.Object) {
	core := obj.Core()
	core.Extend(obj)
	if w.stopped || core.IsUnlinked() {
		return
	}
	if _, seen := w.nodes[core]; seen {
		return
	}

	watch := &nodeWatch{}
	w.nodes[core] = watch
	w.observer.ObjectObserved(obj)

	watch.removeListener = core.Listen(func(ev observable.Event) {
		if ev.IsChange() {
			w.observer.PropertyChanged(obj, ev.ChangeTag())
		} else {
			w.observer.EventEmitted(obj, ev)
		}
	})
	watch.removeHook = core.OnLifecycle(func(lc observable.Lifecycle) {
		switch lc {
		case observable.LifecycleUnlinked:
			if _, ok := w.nodes[core]; ok {
				delete(w.nodes, core)
				w.observer.ObjectUnlinked(obj)
			}
		case observable.LifecycleChildrenChanged:
			// Pick up children attached after registration.
			core.VisitAttached(func(child observable.Object) bool {
				w.observe(child)
				return true
			})
		}
	})

	core.VisitAttached(func(child observable.Object) bool {
		w.observe(child)
		return true
	})
}

func (w *watcher) stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	for _, watch := range w.nodes {
		watch.removeListener()
		watch.removeHook()
	}
	w.nodes = nil
}
