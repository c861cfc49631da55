// Package testing provides the harness renderer for testing observable
// trees and bindings without a platform renderer.
//
// # Quick Start
//
// Create a harness over a root object, mutate, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    app := NewApp()
//	    harness := loomtest.NewHarnessWithT(t, app)
//
//	    app.Counter().Set("count", 5)
//
//	    if !harness.Find(loomtest.ByProp("count", 5)).Exists() {
//	        t.Error("expected a counter at 5")
//	    }
//	}
//
// The harness implements the observer registration contract the same
// way a platform renderer does: it observes the root, follows
// attachments made later, and records events, property changes, and
// unlinks with stable per-type labels ("Counter#1").
//
// # Snapshots
//
// CaptureSnapshot serializes the observed tree — labels, types, current
// observed properties, children in attachment order — and MatchesFile
// compares it against a YAML golden file. Run tests with
// LOOM_UPDATE_SNAPSHOTS=1 to (re)write goldens.
//
// # Probes
//
// Probe records binding deliveries, for asserting that a binding fired
// exactly once (or not at all) for a given mutation.
package testing
