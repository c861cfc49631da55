package testing

// Probe records values delivered by a binding, for asserting on delivery
// counts and ordering:
//
//	probe := loomtest.NewProbe()
//	sub, _ := binding.BindTo(label, "count", probe.Deliver)
//	// mutate, then assert on probe.Values()
type Probe struct {
	values []any
}

// NewProbe creates an empty probe.
func NewProbe() *Probe { return &Probe{} }

// Deliver records a value. Pass it as the binding callback.
func (p *Probe) Deliver(v any) {
	p.values = append(p.values, v)
}

// Values returns everything delivered so far, in order.
func (p *Probe) Values() []any { return append([]any(nil), p.values...) }

// Last returns the most recently delivered value, or nil.
func (p *Probe) Last() any {
	if len(p.values) == 0 {
		return nil
	}
	return p.values[len(p.values)-1]
}

// Count returns the number of deliveries.
func (p *Probe) Count() int { return len(p.values) }

// Reset clears the recorded values.
func (p *Probe) Reset() { p.values = nil }
