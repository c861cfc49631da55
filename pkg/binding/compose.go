package binding

import (
	"strings"

	"github.com/go-loom/loom/pkg/observable"
)

// Combine joins several bindings into one derived value. The combine
// function receives the parts' current values in declaration order and
// runs whenever any part delivers — but only after every part has
// resolved at least once, so it never sees a partial set.
func Combine(combine func(values []any) any, parts ...Binding) Binding {
	return &compositeBinding{parts: parts, combine: combine}
}

// Strf interpolates several bound values into a template. Each "{}"
// placeholder consumes the next binding in order; values are rendered
// with the configured locale (see SetLanguage), and undefined values
// render as the empty string:
//
//	binding.Strf("Count: {}", binding.Must("count"))
//	binding.Strf("{} of {}", doneBinding, totalBinding)
//
// The composed string is recomputed when any constituent path changes,
// and all constituent values are resolved before formatting.
func Strf(template string, parts ...Binding) Binding {
	return Combine(func(values []any) any {
		return expandTemplate(template, values)
	}, parts...)
}

// And delivers true while every part is truthy.
func And(parts ...Binding) Binding {
	return Combine(func(values []any) any {
		for _, v := range values {
			if !Truthy(v) {
				return false
			}
		}
		return true
	}, parts...)
}

// Or delivers true while at least one part is truthy.
func Or(parts ...Binding) Binding {
	return Combine(func(values []any) any {
		for _, v := range values {
			if Truthy(v) {
				return true
			}
		}
		return false
	}, parts...)
}

// Not delivers the negated truthiness of another binding.
func Not(part Binding) Binding {
	return Combine(func(values []any) any {
		return !Truthy(values[0])
	}, part)
}

type compositeBinding struct {
	parts   []Binding
	combine func([]any) any
}

// Bind implements Binding.
func (b *compositeBinding) Bind(subscriber observable.Object, deliver func(any)) Subscription {
	s := &compositeSubscription{
		deliver: deliver,
		combine: b.combine,
		values:  make([]any, len(b.parts)),
		have:    make([]bool, len(b.parts)),
	}
	for i, part := range b.parts {
		index := i
		s.subs = append(s.subs, part.Bind(subscriber, func(v any) {
			s.values[index] = v
			s.have[index] = true
			if s.ready {
				s.recompute()
			}
		}))
	}
	s.ready = true
	s.recompute()
	return s
}

type compositeSubscription struct {
	subs    []Subscription
	values  []any
	have    []bool
	combine func([]any) any
	deliver func(any)

	last    any
	hasLast bool
	ready   bool
	stopped bool
}

// Stop implements Subscription.
func (s *compositeSubscription) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	for _, sub := range s.subs {
		sub.Stop()
	}
}

func (s *compositeSubscription) recompute() {
	if s.stopped {
		return
	}
	for _, ok := range s.have {
		if !ok {
			return
		}
	}
	snapshot := make([]any, len(s.values))
	copy(snapshot, s.values)
	value := s.combine(snapshot)
	if s.hasLast && observable.ValueEqual(s.last, value) {
		return
	}
	s.last = value
	s.hasLast = true
	s.deliver(value)
}

func expandTemplate(template string, values []any) string {
	var sb strings.Builder
	next := 0
	for {
		i := strings.Index(template, "{}")
		if i < 0 {
			sb.WriteString(template)
			break
		}
		sb.WriteString(template[:i])
		if next < len(values) {
			sb.WriteString(formatValue(values[next]))
			next++
		}
		template = template[i+2:]
	}
	return sb.String()
}
