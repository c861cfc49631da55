package observer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-loom/loom/pkg/observable"
	"github.com/go-loom/loom/pkg/observer"
)

type view struct {
	observable.Base
	name string
}

func newView(name string) *view {
	v := &view{name: name}
	v.Extend(v)
	return v
}

// recorder logs observer notifications as compact strings.
type recorder struct {
	log []string
}

func (r *recorder) ObjectObserved(obj observable.Object) {
	r.log = append(r.log, "observe:"+obj.(*view).name)
}

func (r *recorder) EventEmitted(obj observable.Object, ev observable.Event) {
	entry := "event:" + obj.(*view).name + ":" + ev.Name()
	if ev.Inner() != nil {
		entry += ":propagated"
	}
	r.log = append(r.log, entry)
}

func (r *recorder) PropertyChanged(obj observable.Object, tag string) {
	r.log = append(r.log, "change:"+obj.(*view).name+":"+tag)
}

func (r *recorder) ObjectUnlinked(obj observable.Object) {
	r.log = append(r.log, "unlink:"+obj.(*view).name)
}

func TestObserveExistingTree(t *testing.T) {
	root := newView("root")
	a := newView("a")
	b := newView("b")
	root.Attach(a)
	a.Attach(b)

	rec := &recorder{}
	stop := observer.Observe(root, rec)
	defer stop()

	want := []string{"observe:root", "observe:a", "observe:b"}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("registration log (-want +got):\n%s", diff)
	}
}

func TestObserveLateAttachedChild(t *testing.T) {
	root := newView("root")
	rec := &recorder{}
	stop := observer.Observe(root, rec)
	defer stop()

	child := newView("child")
	grand := newView("grand")
	child.Attach(grand)
	root.Attach(child)

	want := []string{"observe:root", "observe:child", "observe:grand"}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("late attachment log (-want +got):\n%s", diff)
	}
}

func TestObserveEventsAndChanges(t *testing.T) {
	root := newView("root")
	child := newView("child")
	root.Attach(child)

	rec := &recorder{}
	stop := observer.Observe(root, rec)
	defer stop()
	rec.log = nil

	child.Emit("Click", nil)
	child.Set("label", "go")

	want := []string{
		"event:child:Click",
		"event:root:Click:propagated",
		"change:child:label",
	}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("notification log (-want +got):\n%s", diff)
	}
}

func TestObserveUnlink(t *testing.T) {
	root := newView("root")
	child := newView("child")
	root.Attach(child)

	rec := &recorder{}
	stop := observer.Observe(root, rec)
	defer stop()
	rec.log = nil

	child.Unlink()

	want := []string{"unlink:child"}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("unlink log (-want +got):\n%s", diff)
	}

	// A new child under root is still picked up.
	root.Attach(newView("next"))
	if diff := cmp.Diff([]string{"unlink:child", "observe:next"}, rec.log); diff != "" {
		t.Errorf("post-unlink log (-want +got):\n%s", diff)
	}
}

func TestObserveStop(t *testing.T) {
	root := newView("root")
	rec := &recorder{}
	stop := observer.Observe(root, rec)
	rec.log = nil

	stop()
	stop() // idempotent

	root.Emit("Click", nil)
	root.Attach(newView("child"))

	if len(rec.log) != 0 {
		t.Errorf("stopped observer received %v", rec.log)
	}
}

func TestObserveSharedChildOnce(t *testing.T) {
	root := newView("root")
	child := newView("child")
	root.Attach(child)

	rec := &recorder{}
	stop := observer.Observe(root, rec)
	defer stop()

	// Re-attaching under the same parent must not double-register.
	root.Attach(child)

	want := []string{"observe:root", "observe:child"}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("re-attachment log (-want +got):\n%s", diff)
	}

	rec.log = nil
	child.Emit("Click", nil)
	if diff := cmp.Diff([]string{"event:child:Click", "event:root:Click:propagated"}, rec.log); diff != "" {
		t.Errorf("single-delivery log (-want +got):\n%s", diff)
	}
}
