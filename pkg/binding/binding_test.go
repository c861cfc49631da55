package binding_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-loom/loom/pkg/binding"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/observable"
	loomtest "github.com/go-loom/loom/pkg/testing"
)

// node is a plain observable object for binding tests.
type node struct {
	observable.Base
}

func newNode() *node {
	n := &node{}
	n.Extend(n)
	return n
}

func TestBindDeliversInitialValue(t *testing.T) {
	parent := newNode()
	parent.Set("count", 1)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}

	if diff := cmp.Diff([]any{1}, probe.Values()); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
}

func TestBindingConvergence(t *testing.T) {
	parent := newNode()
	parent.Set("count", 1)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	probe.Reset()

	parent.Set("count", 2)
	if diff := cmp.Diff([]any{2}, probe.Values()); diff != "" {
		t.Fatalf("write should deliver exactly once (-want +got):\n%s", diff)
	}

	// Re-announcing the same value must not deliver again.
	parent.EmitChange("count")
	parent.EmitChange("")
	if probe.Count() != 1 {
		t.Errorf("no-op change events caused %d extra deliveries", probe.Count()-1)
	}
}

func TestBindingDeliveryIsSynchronous(t *testing.T) {
	parent := newNode()
	parent.Set("count", 0)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}

	parent.Set("count", 41)
	// The write must be reflected before Set returns.
	if probe.Last() != 41 {
		t.Errorf("Last = %v immediately after write, want 41", probe.Last())
	}
}

func TestNestedPathReEvaluation(t *testing.T) {
	root := newNode()
	mid := newNode()
	leaf := newNode()
	leaf.Set("c", 1)
	mid.Set("b", observable.Object(leaf))
	root.Set("a", observable.Object(mid))

	sub := newNode()
	root.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "a.b.c", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Last() != 1 {
		t.Fatalf("initial value = %v, want 1", probe.Last())
	}

	leaf.Set("c", 2)
	if probe.Last() != 2 {
		t.Errorf("after leaf write, value = %v, want 2", probe.Last())
	}

	// Replacing an intermediate object re-resolves the tail.
	leaf2 := newNode()
	leaf2.Set("c", 3)
	mid.Set("b", observable.Object(leaf2))
	if probe.Last() != 3 {
		t.Errorf("after intermediate swap, value = %v, want 3", probe.Last())
	}

	// The old leaf is no longer watched.
	count := probe.Count()
	leaf.Set("c", 99)
	if probe.Count() != count {
		t.Error("write to a replaced intermediate must not deliver")
	}
}

func TestReParentingReResolution(t *testing.T) {
	p1 := newNode()
	p1.Set("count", 1)
	p2 := newNode()
	p2.Set("count", 2)

	sub := newNode()
	p1.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Last() != 1 {
		t.Fatalf("value under p1 = %v, want 1", probe.Last())
	}

	p2.Attach(sub)
	if probe.Last() != 2 {
		t.Errorf("value under p2 = %v, want 2 without re-declaring the binding", probe.Last())
	}
}

func TestUnresolvedPathDeliversNothing(t *testing.T) {
	sub := newNode()
	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "nowhere", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 0 {
		t.Errorf("unresolved binding delivered %d values, want 0", probe.Count())
	}
}

func TestResolutionAfterLateAttach(t *testing.T) {
	parent := newNode()
	parent.Set("count", 5)
	sub := newNode()

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 0 {
		t.Fatal("binding delivered before the subscriber was attached")
	}

	parent.Attach(sub)
	if probe.Last() != 5 {
		t.Errorf("after attach, value = %v, want 5", probe.Last())
	}
}

func TestResolutionAfterLatePropertyWrite(t *testing.T) {
	parent := newNode()
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 0 {
		t.Fatal("binding delivered before any ancestor owned the property")
	}

	parent.Set("count", 7)
	if probe.Last() != 7 {
		t.Errorf("after late write, value = %v, want 7", probe.Last())
	}
}

func TestResolutionAfterSubtreeAttach(t *testing.T) {
	activity := newNode()
	activity.Set("count", 42)

	// The binding is declared inside a detached view subtree; the
	// subscriber's own parent never changes afterwards.
	view := newNode()
	sub := newNode()
	view.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 0 {
		t.Fatal("binding delivered before the subtree was attached")
	}

	activity.Attach(view)
	if probe.Last() != 42 {
		t.Errorf("after subtree attach, value = %v, want 42", probe.Last())
	}
}

func TestAncestorMoveReResolves(t *testing.T) {
	root1 := newNode()
	root1.Set("count", 1)
	root2 := newNode()
	root2.Set("count", 2)

	view := newNode()
	sub := newNode()
	view.Attach(sub)
	root1.Attach(view)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Last() != 1 {
		t.Fatalf("value under root1 = %v, want 1", probe.Last())
	}

	// Moving the whole subtree re-runs the root walk even though the
	// subscriber's own parent is unchanged.
	root2.Attach(view)
	if probe.Last() != 2 {
		t.Fatalf("after ancestor move, value = %v, want 2", probe.Last())
	}

	count := probe.Count()
	root1.Set("count", 9)
	if probe.Count() != count {
		t.Error("write to the abandoned root must not deliver")
	}

	root2.Set("count", 3)
	if probe.Last() != 3 {
		t.Errorf("write to the current root, value = %v, want 3", probe.Last())
	}
}

func TestContextRootAfterSubtreeAttach(t *testing.T) {
	app := newNode()
	app.MarkBindingRoot("app")
	app.Set("title", "Inbox")

	view := newNode()
	sub := newNode()
	view.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "#app.title", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 0 {
		t.Fatal("context binding delivered before a root was reachable")
	}

	app.Attach(view)
	if probe.Last() != "Inbox" {
		t.Errorf("after subtree attach, value = %v, want Inbox", probe.Last())
	}
}

func TestBrokenIntermediateYieldsUndefined(t *testing.T) {
	root := newNode()
	mid := newNode()
	root.Set("a", observable.Object(mid))
	sub := newNode()
	root.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "a.b.c", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Count() != 1 || probe.Last() != nil {
		t.Fatalf("broken path should deliver undefined once, got %v", probe.Values())
	}

	leaf := newNode()
	leaf.Set("c", 4)
	mid.Set("b", observable.Object(leaf))
	if probe.Last() != 4 {
		t.Errorf("after completing the path, value = %v, want 4", probe.Last())
	}
}

func TestContextRootedBinding(t *testing.T) {
	activity := newNode()
	activity.MarkBindingRoot("activity")
	activity.Set("title", "Inbox")

	view := newNode()
	view.Set("title", "shadowed") // nearest-ancestor value that must be skipped
	activity.Attach(view)
	sub := newNode()
	view.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "#activity.title", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Last() != "Inbox" {
		t.Errorf("context-rooted value = %v, want Inbox", probe.Last())
	}

	activity.Set("title", "Archive")
	if probe.Last() != "Archive" {
		t.Errorf("after root write, value = %v, want Archive", probe.Last())
	}
}

func TestAnonymousContextBinding(t *testing.T) {
	rootObj := newNode()
	rootObj.MarkBindingRoot("")
	rootObj.Set("busy", true)
	sub := newNode()
	rootObj.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "#.busy", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}
	if probe.Last() != true {
		t.Errorf("value = %v, want true", probe.Last())
	}
}

func TestTransformNot(t *testing.T) {
	parent := newNode()
	parent.Set("busy", true)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	binding.Must("busy").Not().Bind(sub, probe.Deliver)
	if probe.Last() != false {
		t.Fatalf("negated value = %v, want false", probe.Last())
	}

	parent.Set("busy", false)
	if probe.Last() != true {
		t.Errorf("negated value = %v, want true", probe.Last())
	}
}

func TestTransformElse(t *testing.T) {
	parent := newNode()
	parent.Set("name", nil)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	binding.Must("name").Else("anonymous").Bind(sub, probe.Deliver)
	if probe.Last() != "anonymous" {
		t.Fatalf("default value = %v, want anonymous", probe.Last())
	}

	parent.Set("name", "ada")
	if probe.Last() != "ada" {
		t.Errorf("value = %v, want ada", probe.Last())
	}
}

func TestTransformMapDoesNotMutateOriginal(t *testing.T) {
	base := binding.Must("count")
	doubled := base.Map(func(v any) any {
		if n, ok := v.(int); ok {
			return n * 2
		}
		return v
	})

	parent := newNode()
	parent.Set("count", 3)
	sub := newNode()
	parent.Attach(sub)

	plain := loomtest.NewProbe()
	mapped := loomtest.NewProbe()
	base.Bind(sub, plain.Deliver)
	doubled.Bind(sub, mapped.Deliver)

	if plain.Last() != 3 {
		t.Errorf("plain binding = %v, want 3 (Map must copy, not mutate)", plain.Last())
	}
	if mapped.Last() != 6 {
		t.Errorf("mapped binding = %v, want 6", mapped.Last())
	}
}

func TestSubscriptionStop(t *testing.T) {
	parent := newNode()
	parent.Set("count", 1)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	s, err := binding.BindTo(sub, "count", probe.Deliver)
	if err != nil {
		t.Fatalf("BindTo: %v", err)
	}

	s.Stop()
	s.Stop() // idempotent
	parent.Set("count", 2)

	if probe.Count() != 1 {
		t.Errorf("stopped subscription delivered %d values, want 1 (the initial one)", probe.Count())
	}
}

func TestSubscriberUnlinkStopsDelivery(t *testing.T) {
	parent := newNode()
	parent.Set("count", 1)
	sub := newNode()
	parent.Attach(sub)

	probe := loomtest.NewProbe()
	if _, err := binding.BindTo(sub, "count", probe.Deliver); err != nil {
		t.Fatalf("BindTo: %v", err)
	}

	sub.Unlink()
	parent.Set("count", 2)

	if probe.Count() != 1 {
		t.Errorf("binding of an unlinked subscriber delivered %d values, want 1", probe.Count())
	}
}

func TestBindToUnlinkedSubscriber(t *testing.T) {
	sub := newNode()
	sub.Unlink()

	probe := loomtest.NewProbe()
	s, err := binding.BindTo(sub, "count", probe.Deliver)
	if err != nil {
		t.Fatalf("BindTo on a dead subscriber must not fail: %v", err)
	}
	s.Stop()
	if probe.Count() != 0 {
		t.Error("dead subscriber must receive nothing")
	}
}

func TestDeliverPanicIsContained(t *testing.T) {
	handler := &captureHandler{}
	parent := newNode()
	parent.SetErrorHandler(handler)
	parent.Set("count", 1)
	sub := newNode()
	parent.Attach(sub)

	binding.Must("count").Bind(sub, func(v any) {
		panic("renderer failure")
	})

	// The write must complete despite the panicking callback.
	parent.Set("count", 2)

	if len(handler.panics) != 2 {
		t.Errorf("got %d reported panics, want 2 (initial delivery and the write)", len(handler.panics))
	}
	if v, _ := parent.Get("count"); v != 2 {
		t.Errorf("count = %v, want 2", v)
	}
}

func TestSharedBindingIndependentSubscriptions(t *testing.T) {
	shared := binding.Must("count")

	p1 := newNode()
	p1.Set("count", 1)
	p2 := newNode()
	p2.Set("count", 10)
	sub1 := newNode()
	sub2 := newNode()
	p1.Attach(sub1)
	p2.Attach(sub2)

	probe1 := loomtest.NewProbe()
	probe2 := loomtest.NewProbe()
	shared.Bind(sub1, probe1.Deliver)
	shared.Bind(sub2, probe2.Deliver)

	p1.Set("count", 2)

	if probe1.Last() != 2 {
		t.Errorf("sub1 value = %v, want 2", probe1.Last())
	}
	if probe2.Last() != 10 {
		t.Errorf("sub2 value = %v, want 10 (subscriptions must not share state)", probe2.Last())
	}
}

type captureHandler struct {
	errs      []*errors.LoomError
	panics    []*errors.PanicError
	listeners []*errors.ListenerError
}

func (h *captureHandler) HandleError(err *errors.LoomError) {
	h.errs = append(h.errs, err)
}

func (h *captureHandler) HandlePanic(err *errors.PanicError) {
	h.panics = append(h.panics, err)
}

func (h *captureHandler) HandleListenerError(err *errors.ListenerError) {
	h.listeners = append(h.listeners, err)
}
