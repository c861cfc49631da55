package testing

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-loom/loom/pkg/observable"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is a serializable capture of the observed attachment tree:
// per object its harness label, type, current observed properties, and
// children in attachment order.
type Snapshot struct {
	Tree *SnapshotNode `yaml:"tree"`
}

// SnapshotNode is one object in a serialized snapshot.
type SnapshotNode struct {
	ID       string          `yaml:"id"`
	Type     string          `yaml:"type"`
	Props    map[string]any  `yaml:"props,omitempty"`
	Children []*SnapshotNode `yaml:"children,omitempty"`
}

// CaptureSnapshot captures the current state of the observed tree.
// Properties are read live through PropertyHost/PropertyLister, so the
// snapshot reflects everything delivered up to this point.
func (h *Harness) CaptureSnapshot() *Snapshot {
	return &Snapshot{Tree: h.captureNode(h.root)}
}

func (h *Harness) captureNode(obj observable.Object) *SnapshotNode {
	if obj == nil || obj.Core().IsUnlinked() {
		return nil
	}
	node := &SnapshotNode{
		ID:   h.ID(obj),
		Type: typeName(obj),
	}
	if lister, ok := obj.(observable.PropertyLister); ok {
		if host, ok := obj.(observable.PropertyHost); ok {
			for _, name := range lister.ObservedNames() {
				if v, ok := host.ObservedValue(name); ok {
					if node.Props == nil {
						node.Props = map[string]any{}
					}
					node.Props[name] = snapshotValue(v)
				}
			}
		}
	}
	obj.Core().VisitAttached(func(child observable.Object) bool {
		if captured := h.captureNode(child); captured != nil {
			node.Children = append(node.Children, captured)
		}
		return true
	})
	return node
}

// snapshotValue renders nested observable objects as their type name so
// snapshots stay flat; the nested object appears as a child node anyway
// if it is attached.
func snapshotValue(v any) any {
	if obj, ok := v.(observable.Object); ok {
		return "<" + typeName(obj) + ">"
	}
	return v
}

// YAML serializes the snapshot.
func (s *Snapshot) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// MatchesFile compares the snapshot against a golden YAML file. Set
// LOOM_UPDATE_SNAPSHOTS=1 to (re)write the golden file instead of
// comparing.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()
	data, err := s.YAML()
	if err != nil {
		t.Fatalf("serializing snapshot: %v", err)
		return
	}
	if os.Getenv("LOOM_UPDATE_SNAPSHOTS") == "1" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating snapshot dir: %v", err)
			return
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("writing snapshot %s: %v", path, err)
		}
		return
	}
	golden, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot %s (run with LOOM_UPDATE_SNAPSHOTS=1 to create): %v", path, err)
		return
	}
	if !bytes.Equal(bytes.TrimSpace(golden), bytes.TrimSpace(data)) {
		t.Errorf("snapshot mismatch for %s\n--- golden ---\n%s\n--- actual ---\n%s", path, golden, data)
	}
}
