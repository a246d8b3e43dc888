// Package trace provides types for recording bridge execution events: one
// per syscall serviced, so a recorded run can be replayed and annotated
// syscall by syscall.
package trace

import "time"

// Tag represents a trace event category.
// Tags are stored without # prefix; the prefix is added on rendering.
type Tag string

// Standard tags for trace events, one per syscall plus frame lifecycle
// markers.
const (
	Sload   Tag = "sload"
	Sstore  Tag = "sstore"
	Call    Tag = "call"
	Revert  Tag = "revert"
	Return  Tag = "return"
	Caller  Tag = "caller"
	Keccak  Tag = "keccak256"
	Frame   Tag = "frame"
	Unknown Tag = "unknown"
)

// Tags is a collection of tags with helper methods.
type Tags []Tag

// Has returns true if the tag collection contains the given tag.
func (t Tags) Has(tag Tag) bool {
	for _, x := range t {
		if x == tag {
			return true
		}
	}
	return false
}

// Add adds a tag if not already present.
func (t *Tags) Add(tag Tag) {
	if !t.Has(tag) {
		*t = append(*t, tag)
	}
}

// Strings returns tags as strings with # prefix for display.
func (t Tags) Strings() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = "#" + string(tag)
	}
	return out
}

// Raw returns tags as strings without # prefix.
func (t Tags) Raw() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = string(tag)
	}
	return out
}

// Primary returns the first tag or empty string if none.
func (t Tags) Primary() Tag {
	if len(t) > 0 {
		return t[0]
	}
	return ""
}

// Annotations holds key-value metadata for trace events.
type Annotations map[string]string

// Set adds or updates an annotation.
func (a Annotations) Set(k, v string) {
	a[k] = v
}

// Get retrieves an annotation value.
func (a Annotations) Get(k string) string {
	return a[k]
}

// Has returns true if the annotation exists.
func (a Annotations) Has(k string) bool {
	_, ok := a[k]
	return ok
}

// Event represents one serviced syscall.
type Event struct {
	PC          uint64      // guest PC of the ecall instruction
	Depth       int         // frame depth, 0 for the outermost call
	Tags        Tags        // multiple hashtags, first is primary
	Name        string      // syscall name, e.g. "sload"
	Detail      string      // short human summary, e.g. "key=0x01 value=0x2a"
	Annotations Annotations
	Timestamp   time.Time
}

// NewEvent creates a new trace event with the given parameters.
func NewEvent(pc uint64, depth int, category, detail string) *Event {
	return &Event{
		PC:          pc,
		Depth:       depth,
		Tags:        Tags{Tag(category)},
		Name:        category,
		Detail:      detail,
		Annotations: make(Annotations),
		Timestamp:   time.Now(),
	}
}

// AddTag adds a tag to the event.
func (e *Event) AddTag(tag Tag) {
	e.Tags.Add(tag)
}

// Annotate sets an annotation on the event.
func (e *Event) Annotate(k, v string) {
	if e.Annotations == nil {
		e.Annotations = make(Annotations)
	}
	e.Annotations.Set(k, v)
}

// PrimaryTag returns the primary (first) tag with # prefix.
func (e *Event) PrimaryTag() string {
	if len(e.Tags) > 0 {
		return "#" + string(e.Tags[0])
	}
	return ""
}

// Enricher enriches trace events based on category.
type Enricher func(e *Event)

// DefaultEnricher tags any Call event as a frame boundary, so a trace
// viewer can fold output on frame depth changes.
func DefaultEnricher(e *Event) {
	if len(e.Tags) == 0 {
		return
	}
	if e.Tags[0] == Call {
		e.AddTag(Frame)
	}
}
