package binding_test

import (
	"strings"
	"testing"

	"github.com/go-loom/loom/pkg/binding"
	"github.com/go-loom/loom/pkg/errors"
)

func TestParsePathSimple(t *testing.T) {
	p, err := binding.ParsePath("count")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if len(p.Segments()) != 1 || p.Segments()[0] != "count" {
		t.Errorf("segments = %v, want [count]", p.Segments())
	}
	if p.ContextRooted() {
		t.Error("plain path should not be context rooted")
	}
}

func TestParsePathNested(t *testing.T) {
	p, err := binding.ParsePath("item.author.name")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	want := []string{"item", "author", "name"}
	got := p.Segments()
	if len(got) != len(want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePathContextRooted(t *testing.T) {
	p, err := binding.ParsePath("#activity.user.name")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if !p.ContextRooted() || p.ContextName() != "activity" {
		t.Errorf("context = (%v, %q), want (true, activity)", p.ContextRooted(), p.ContextName())
	}
	if len(p.Segments()) != 2 {
		t.Errorf("segments = %v, want [user name]", p.Segments())
	}
}

func TestParsePathAnonymousContext(t *testing.T) {
	p, err := binding.ParsePath("#.busy")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if !p.ContextRooted() || p.ContextName() != "" {
		t.Errorf("context = (%v, %q), want (true, \"\")", p.ContextRooted(), p.ContextName())
	}
}

func TestParsePathErrors(t *testing.T) {
	tests := []string{
		"",
		".",
		"a.",
		".a",
		"a..b",
		"a.1b",
		"9count",
		"a-b",
		"a b",
		"#",
		"#name",
		"#na me.x",
	}
	for _, expr := range tests {
		_, err := binding.ParsePath(expr)
		if err == nil {
			t.Errorf("ParsePath(%q) should fail", expr)
			continue
		}
		var lerr *errors.LoomError
		if !asLoomError(err, &lerr) {
			t.Errorf("ParsePath(%q) error type = %T, want *errors.LoomError", expr, err)
			continue
		}
		if lerr.Kind != errors.KindStructural {
			t.Errorf("ParsePath(%q) kind = %v, want structural", expr, lerr.Kind)
		}
		if !strings.Contains(err.Error(), "invalid path expression") {
			t.Errorf("ParsePath(%q) error %q should describe the failure", expr, err)
		}
	}
}

func TestMustPanicsOnBadPath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must should panic on a malformed expression")
		}
	}()
	binding.Must("not a path")
}

func asLoomError(err error, target **errors.LoomError) bool {
	le, ok := err.(*errors.LoomError)
	if ok {
		*target = le
	}
	return ok
}
