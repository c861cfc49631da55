// Package binding compiles path expressions into live subscriptions that
// push derived values into UI properties.
//
// A binding names a property by a dotted path. When bound, the engine
// walks from the subscriber up the attachment chain to find the object
// owning the first segment, follows nested observable objects for the
// remaining segments, and watches every object along the way for change
// events. Whenever a relevant change fires, the full path is re-read
// from the root and the callback is invoked with the new value — but
// only if it differs from the last delivered one, so no-op updates never
// cause downstream work.
//
//	counter.Set("count", 0)
//	sub, _ := binding.BindTo(label, "count", func(v any) {
//	    label.Set("text", v)
//	})
//
// The root source is re-resolved whenever the subscriber's position in
// the attachment tree changes: a subscriber moved under a different
// parent picks up that parent's value without re-declaring the binding.
//
// Bindings compose: transforms (Not, Else, Map) post-process a single
// path, and Strf/And/Or/Combine join several paths into one derived
// value re-evaluated when any constituent changes.
//
// A malformed path expression fails fast at construction. A path that
// never resolves is not an error: the bound value stays undefined and
// the UI renders its default state.
package binding
