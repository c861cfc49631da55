package observable

// ChangeEventName is the name used for property-change events.
const ChangeEventName = "Change"

// changeTagKey is the data key naming the changed aspect of a change event.
const changeTagKey = "change"

// emptyData is returned by Event.Data when an event carries no payload,
// so callers never observe a nil map.
var emptyData = map[string]any{}

// Event is an immutable record describing something that happened on an
// observable object. The same type carries both property-change
// notifications and user-originated events such as "Click".
//
// Events are values: once constructed they are never modified. The data
// payload is copied at construction time so later mutation of the caller's
// map cannot alter an event in flight.
type Event struct {
	name          string
	source        Object
	data          map[string]any
	inner         *Event
	noPropagation bool
}

// NewEvent creates an event with the given name and payload.
// The payload map is copied; nil is treated as an empty payload.
//
// By convention event names are capitalized verbs or nouns, e.g. "Click".
func NewEvent(name string, data map[string]any) Event {
	return Event{name: name, data: copyData(data)}
}

// NewChangeEvent creates a property-change event. The tag names the
// property that changed; an empty tag means "assume anything changed",
// which conservatively re-evaluates every binding observing the source.
// Extra payload entries may be supplied for structural changes (e.g. the
// index affected by a list mutation).
func NewChangeEvent(tag string, data map[string]any) Event {
	merged := copyData(data)
	if tag != "" {
		if merged == nil {
			merged = map[string]any{}
		}
		merged[changeTagKey] = tag
	}
	return Event{name: ChangeEventName, data: merged}
}

// WithoutPropagation returns a copy of the event that will not bubble to
// the attachment parent when emitted.
func (e Event) WithoutPropagation() Event {
	e.noPropagation = true
	return e
}

// Name returns the event name.
func (e Event) Name() string { return e.name }

// Source returns the object the event was emitted on. For a propagated
// event this is the parent re-emitting it; the original emitter is
// reachable through Inner.
func (e Event) Source() Object { return e.source }

// Data returns the event payload. The returned map must not be modified.
// It is never nil.
func (e Event) Data() map[string]any {
	if e.data == nil {
		return emptyData
	}
	return e.data
}

// Get returns a single payload value, or nil if the key is absent.
func (e Event) Get(key string) any {
	if e.data == nil {
		return nil
	}
	return e.data[key]
}

// Inner returns the wrapped event for a propagated event, or nil.
func (e Event) Inner() *Event { return e.inner }

// NoPropagation reports whether bubbling to the attachment parent is
// suppressed for this event.
func (e Event) NoPropagation() bool { return e.noPropagation }

// IsChange reports whether this is a property-change event.
func (e Event) IsChange() bool { return e.name == ChangeEventName }

// ChangeTag returns the name of the changed property for a change event,
// or "" for a generic (anything may have changed) change or a non-change
// event.
func (e Event) ChangeTag() string {
	if !e.IsChange() || e.data == nil {
		return ""
	}
	tag, _ := e.data[changeTagKey].(string)
	return tag
}

// propagated returns the wrapping event delivered to an attachment parent:
// same name and payload, source rewritten to the parent, the received
// event preserved as Inner. The wrapping event's own propagation flag is
// independent of the original's.
func (e Event) propagated(parent Object) Event {
	inner := e
	return Event{
		name:   e.name,
		source: parent,
		data:   e.data,
		inner:  &inner,
	}
}

func copyData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return copied
}
