package binding

import "reflect"

// Transform is a pure function applied to a resolved value before
// delivery. Transforms must not retain or mutate their input.
type Transform func(any) any

// Map returns a copy of the binding with an extra transform appended.
// The receiver is unchanged, so a binding can be declared once and
// specialized per use.
func (b *PathBinding) Map(t Transform) *PathBinding {
	next := &PathBinding{path: b.path}
	next.transforms = append(next.transforms, b.transforms...)
	next.transforms = append(next.transforms, t)
	return next
}

// Not returns a copy delivering the negated truthiness of the value.
func (b *PathBinding) Not() *PathBinding {
	return b.Map(func(v any) any { return !Truthy(v) })
}

// AsBool returns a copy delivering the truthiness of the value.
func (b *PathBinding) AsBool() *PathBinding {
	return b.Map(func(v any) any { return Truthy(v) })
}

// Else returns a copy substituting def when the resolved value is
// undefined (nil).
func (b *PathBinding) Else(def any) *PathBinding {
	return b.Map(func(v any) any {
		if v == nil {
			return def
		}
		return v
	})
}

// Format returns a binding delivering the value interpolated into the
// template; see Strf for the template syntax.
func (b *PathBinding) Format(template string) Binding {
	return Strf(template, b)
}

// Truthy reports whether a bound value counts as true in boolean
// composition: false for nil, false, numeric zero, and the empty string;
// true for everything else, including empty slices and maps.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
