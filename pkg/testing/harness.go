package testing

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-loom/loom/pkg/observable"
	"github.com/go-loom/loom/pkg/observer"
)

// Harness is the test renderer: it observes a root observable object and
// records what a real renderer would consume — objects entering and
// leaving observation, emitted events, and property changes — without
// producing any visual output. It drives the same observer registration
// contract as a platform renderer.
//
// Objects are identified by stable ordinal labels such as "Counter#1",
// assigned in observation order per type, so logs and snapshots are
// deterministic across runs.
type Harness struct {
	root observable.Object
	stop func()

	ids      map[*observable.Base]string
	counters map[string]int

	events   []string
	changes  []string
	unlinked []string
}

// NewHarness starts observing root. Call Stop when done, or use
// NewHarnessWithT.
func NewHarness(root observable.Object) *Harness {
	h := &Harness{
		root:     root,
		ids:      map[*observable.Base]string{},
		counters: map[string]int{},
	}
	h.stop = observer.Observe(root, h)
	return h
}

// NewHarnessWithT starts observing root and tears the harness down via
// t.Cleanup. This is the recommended constructor for tests.
func NewHarnessWithT(t *testing.T, root observable.Object) *Harness {
	h := NewHarness(root)
	t.Cleanup(h.Stop)
	return h
}

// Stop ends observation. Idempotent.
func (h *Harness) Stop() {
	if h.stop != nil {
		h.stop()
	}
}

// ObjectObserved implements observer.Observer.
func (h *Harness) ObjectObserved(obj observable.Object) {
	core := obj.Core()
	if _, ok := h.ids[core]; ok {
		return
	}
	name := typeName(obj)
	h.counters[name]++
	h.ids[core] = fmt.Sprintf("%s#%d", name, h.counters[name])
}

// EventEmitted implements observer.Observer. Only originating events are
// recorded; propagated wrappers (non-nil Inner) are skipped so each
// emission appears once regardless of tree depth.
func (h *Harness) EventEmitted(obj observable.Object, ev observable.Event) {
	if ev.Inner() != nil {
		return
	}
	h.events = append(h.events, h.ID(obj)+":"+ev.Name())
}

// PropertyChanged implements observer.Observer.
func (h *Harness) PropertyChanged(obj observable.Object, tag string) {
	entry := h.ID(obj) + ":Change"
	if tag != "" {
		entry += "(" + tag + ")"
	}
	h.changes = append(h.changes, entry)
}

// ObjectUnlinked implements observer.Observer.
func (h *Harness) ObjectUnlinked(obj observable.Object) {
	h.unlinked = append(h.unlinked, h.ID(obj))
}

// ID returns the harness label for an observed object, or "" if the
// object was never observed.
func (h *Harness) ID(obj observable.Object) string {
	return h.ids[obj.Core()]
}

// Events returns the recorded event log, entries like "Counter#1:Click".
func (h *Harness) Events() []string { return append([]string(nil), h.events...) }

// Changes returns the recorded change log, entries like
// "Counter#1:Change(count)".
func (h *Harness) Changes() []string { return append([]string(nil), h.changes...) }

// Unlinked returns the labels of objects unlinked while observed.
func (h *Harness) Unlinked() []string { return append([]string(nil), h.unlinked...) }

func typeName(obj any) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
