package binding

import (
	"time"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/observable"
)

// Binding is a declarative recipe for a live bound value. A single
// Binding can be bound any number of times against different
// subscribers; each Bind call produces an independent Subscription with
// its own resolution state (no shared cache across subscriptions).
type Binding interface {
	// Bind starts delivering values for subscriber. The deliver callback
	// runs synchronously within the triggering mutation, and only when
	// the computed value differs from the last delivered one (by
	// observable.ValueEqual).
	Bind(subscriber observable.Object, deliver func(any)) Subscription
}

// Subscription is a live bound value. It stops delivering when the
// subscriber unlinks, and can be stopped explicitly.
type Subscription interface {
	// Stop ends delivery and releases all change watches. Idempotent.
	Stop()
}

// PathBinding binds a single path expression, optionally transformed.
// Build one with New or Must, then chain transforms:
//
//	b := binding.Must("item.count").Else(0)
type PathBinding struct {
	path       Path
	transforms []Transform
}

// New compiles a path expression into a binding. A malformed expression
// fails fast with a structural error; see ParsePath for the syntax.
func New(expr string) (*PathBinding, error) {
	path, err := ParsePath(expr)
	if err != nil {
		return nil, err
	}
	return &PathBinding{path: path}, nil
}

// Must is like New but panics on a malformed expression. Use it for
// expressions that are literals in the program text.
func Must(expr string) *PathBinding {
	b, err := New(expr)
	if err != nil {
		panic(err)
	}
	return b
}

// BindTo compiles expr and binds it to subscriber in one step.
func BindTo(subscriber observable.Object, expr string, deliver func(any)) (Subscription, error) {
	b, err := New(expr)
	if err != nil {
		return nil, err
	}
	return b.Bind(subscriber, deliver), nil
}

// Bind implements Binding.
func (b *PathBinding) Bind(subscriber observable.Object, deliver func(any)) Subscription {
	core := subscriber.Core()
	core.Extend(subscriber)
	s := &pathSubscription{
		binding:    b,
		subscriber: subscriber,
		deliver:    deliver,
	}
	if core.IsUnlinked() {
		s.stopped = true
		return s
	}
	s.unhook = core.OnLifecycle(func(lc observable.Lifecycle) {
		switch lc {
		case observable.LifecycleAttachChanged:
			s.refresh()
		case observable.LifecycleUnlinked:
			s.Stop()
		}
	})
	s.refresh()
	return s
}

// pathSubscription is one live instance of a PathBinding. It holds the
// currently watched object chain — the resolved root source plus every
// intermediate object on the path — and rebuilds that chain from scratch
// on every re-evaluation, because both the root (after re-attachment)
// and the intermediates (after a nested write) may have changed.
type pathSubscription struct {
	binding    *PathBinding
	subscriber observable.Object
	deliver    func(any)

	last    any
	hasLast bool
	watches []func()
	unhook  func()
	stopped bool
}

// Stop implements Subscription.
func (s *pathSubscription) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.clearWatches()
	if s.unhook != nil {
		s.unhook()
		s.unhook = nil
	}
}

func (s *pathSubscription) clearWatches() {
	for _, remove := range s.watches {
		remove()
	}
	s.watches = nil
}

// refresh re-resolves the full path from the subscriber's current
// position in the attachment tree, resets the change watches, and pushes
// the recomputed value.
func (s *pathSubscription) refresh() {
	if s.stopped {
		return
	}
	s.clearWatches()

	core := s.subscriber.Core()
	if core.IsUnlinked() {
		s.Stop()
		return
	}

	segments := s.binding.path.Segments()
	root, walked := s.resolveRoot()

	// Re-resolve when any ancestor between the subscriber and the root
	// moves: attaching the subtree elsewhere changes which sources are
	// reachable even though the subscriber's own parent is unchanged.
	// The subscriber itself is already hooked by Bind.
	for _, obj := range walked {
		if obj == s.subscriber {
			continue
		}
		s.watchAttach(obj)
	}

	if root == nil {
		// No ancestor currently satisfies the first segment. Watch the
		// walked chain so a later property write or generic change can
		// complete the resolution; the value stays undefined until then.
		for _, obj := range walked {
			s.watch(obj, segments[0])
		}
		return
	}

	value, chain := evaluate(root, segments)
	for i, obj := range chain {
		s.watch(obj, segments[i])
	}
	s.push(value)
}

// watch subscribes to change events on obj that can affect the given
// segment: a change tagged with the segment name, or an untagged change,
// which conservatively re-evaluates every binding observing the object.
func (s *pathSubscription) watch(obj observable.Object, segment string) {
	remove := obj.Core().Listen(func(ev observable.Event) {
		if !ev.IsChange() {
			return
		}
		if tag := ev.ChangeTag(); tag != "" && tag != segment {
			return
		}
		s.refresh()
	})
	s.watches = append(s.watches, remove)
}

// watchAttach subscribes to attachment changes on an ancestor below the
// resolved root, so a subtree move re-runs the root walk.
func (s *pathSubscription) watchAttach(obj observable.Object) {
	remove := obj.Core().OnLifecycle(func(lc observable.Lifecycle) {
		if lc == observable.LifecycleAttachChanged {
			s.refresh()
		}
	})
	s.watches = append(s.watches, remove)
}

// resolveRoot finds the object owning the first path segment. For a
// plain path it walks from the subscriber up the attachment chain and
// returns the first ancestor exposing the segment; for a context-rooted
// path it returns the nearest matching binding root. The second return
// is the chain walked below the root (the whole chain when no root was
// found), used for re-resolution watches.
func (s *pathSubscription) resolveRoot() (observable.Object, []observable.Object) {
	path := s.binding.path
	first := path.Segments()[0]
	var walked []observable.Object
	for obj := s.subscriber; obj != nil; obj = obj.Core().Parent() {
		core := obj.Core()
		if core.IsUnlinked() {
			return nil, walked
		}
		if path.ContextRooted() {
			if core.IsBindingRoot(path.ContextName()) {
				return obj, walked
			}
		} else if host, ok := obj.(observable.PropertyHost); ok {
			if _, ok := host.ObservedValue(first); ok {
				return obj, walked
			}
		}
		walked = append(walked, obj)
	}
	return nil, walked
}

// evaluate reads the path from root, following nested observable objects.
// It returns the resolved value (nil when any hop is missing or dead) and
// the chain of objects owning each segment, for change watching. The
// chain may be shorter than the path when resolution breaks early.
func evaluate(root observable.Object, segments []string) (any, []observable.Object) {
	chain := []observable.Object{root}
	current := root
	for i, seg := range segments {
		if current.Core().IsUnlinked() {
			return nil, chain
		}
		host, ok := current.(observable.PropertyHost)
		if !ok {
			return nil, chain
		}
		value, ok := host.ObservedValue(seg)
		if !ok {
			return nil, chain
		}
		if i == len(segments)-1 {
			return value, chain
		}
		next, ok := value.(observable.Object)
		if !ok || next == nil || next.Core().IsUnlinked() {
			return nil, chain
		}
		chain = append(chain, next)
		current = next
	}
	return nil, chain
}

// push applies the transform pipeline and delivers the result if it
// differs from the last delivered value.
func (s *pathSubscription) push(raw any) {
	value, ok := s.applyTransforms(raw)
	if !ok {
		return
	}
	if s.hasLast && observable.ValueEqual(s.last, value) {
		return
	}
	s.last = value
	s.hasLast = true
	s.invokeDeliver(value)
}

// applyTransforms runs the pipeline, reporting a panicking transform to
// the subscriber's error handler instead of unwinding into the emitter.
func (s *pathSubscription) applyTransforms(value any) (result any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			h := s.subscriber.Core().ErrorHandler()
			if h == nil {
				return
			}
			h.HandlePanic(&errors.PanicError{
				Op:         "binding.transform(" + s.binding.path.String() + ")",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	for _, t := range s.binding.transforms {
		value = t(value)
	}
	return value, true
}

// invokeDeliver guards the application callback: a panic is reported to
// the subscriber's error handler and does not corrupt the emitter's
// call stack.
func (s *pathSubscription) invokeDeliver(value any) {
	defer func() {
		if r := recover(); r != nil {
			h := s.subscriber.Core().ErrorHandler()
			if h == nil {
				return
			}
			h.HandlePanic(&errors.PanicError{
				Op:         "binding.deliver(" + s.binding.path.String() + ")",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	s.deliver(value)
}
