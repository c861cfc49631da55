// Package main provides a console demonstration of the Loom observable
// core. It builds a small task-list view model, binds labels to it, and
// renders observer notifications to stdout while mutating the model.
package main

import (
	"fmt"

	"github.com/go-loom/loom/pkg/binding"
	"github.com/go-loom/loom/pkg/managed"
	"github.com/go-loom/loom/pkg/observable"
	"github.com/go-loom/loom/pkg/observer"
)

// screen is the demo's root view object.
type screen struct {
	observable.Base
}

func newScreen() *screen {
	s := &screen{}
	s.Extend(s)
	return s
}

// consoleRenderer prints observer notifications, standing in for a real
// rendering backend.
type consoleRenderer struct{}

func (consoleRenderer) ObjectObserved(obj observable.Object) {
	fmt.Printf("observe  %T\n", obj)
}

func (consoleRenderer) EventEmitted(obj observable.Object, ev observable.Event) {
	if ev.Inner() != nil {
		return
	}
	fmt.Printf("event    %T %s\n", obj, ev.Name())
}

func (consoleRenderer) PropertyChanged(obj observable.Object, tag string) {
	fmt.Printf("change   %T %s\n", obj, tag)
}

func (consoleRenderer) ObjectUnlinked(obj observable.Object) {
	fmt.Printf("unlink   %T\n", obj)
}

func main() {
	root := newScreen()
	root.MarkBindingRoot("app")
	root.Set("title", "Tasks")

	tasks := managed.NewList(managed.RestrictTo((*managed.Record)(nil)))
	root.Attach(tasks)

	stop := observer.Observe(root, consoleRenderer{})
	defer stop()

	// A label bound into the model tree: the status line recomputes
	// whenever the list length or the root title changes.
	status := newScreen()
	tasks.Attach(status)
	binding.Strf("{}: {} open", binding.Must("#app.title"), binding.Must("length")).
		Bind(status, func(v any) {
			fmt.Printf("status   %v\n", v)
		})

	if err := tasks.Add(
		managed.NewRecord(map[string]any{"name": "write docs", "done": false}),
		managed.NewRecord(map[string]any{"name": "cut release", "done": false}),
	); err != nil {
		fmt.Println("add:", err)
		return
	}

	first := tasks.At(0).(*managed.Record)
	first.Set("done", true)
	tasks.Remove(first)

	root.Set("title", "Today")
	root.Unlink()
}
