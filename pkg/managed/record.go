package managed

import "github.com/go-loom/loom/pkg/observable"

// Record is an observable bag of named values, the standard data carrier
// for list elements and view-model state. Every write through Set emits
// a change event tagged with the property name, so bindings on record
// fields stay current. Records nest: a value that is itself an
// observable object can be traversed by multi-segment binding paths.
type Record struct {
	observable.Base
}

// NewRecord creates a record, optionally populated from values.
func NewRecord(values map[string]any) *Record {
	r := &Record{}
	r.Extend(r)
	for name, value := range values {
		r.Set(name, value)
	}
	return r
}

// String returns the named value as a string, or "" when unset or not a
// string.
func (r *Record) String(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Int returns the named value as an int, coercing the common numeric
// types; 0 when unset or non-numeric.
func (r *Record) Int(name string) int {
	v, _ := r.Get(name)
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	}
	return 0
}

// Float64 returns the named value as a float64, coercing the common
// numeric types; 0 when unset or non-numeric.
func (r *Record) Float64(name string) float64 {
	v, _ := r.Get(name)
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	}
	return 0
}

// Bool returns the named value as a bool; false when unset or not a bool.
func (r *Record) Bool(name string) bool {
	v, _ := r.Get(name)
	b, _ := v.(bool)
	return b
}

// ToMap copies the record's current values into a plain map.
func (r *Record) ToMap() map[string]any {
	names := r.ObservedNames()
	if len(names) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, _ := r.Get(name)
		out[name] = v
	}
	return out
}
