package telemetry

import (
	"sync"
	"time"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

// Extension is the common surface of all telemetry extensions.
type Extension interface {
	// ID returns the fixed identity of the extension type.
	ID() ident.TmExtension

	// Info returns the short label of the extension type.
	Info() string

	// Updated returns the time of the last update.
	Updated() time.Time

	// Changed returns the time of the last update that changed the value.
	Changed() time.Time

	// Touch records an update that carried no new value.
	Touch(t time.Time)

	// AddHandler registers fn for every update, or for changes only.
	AddHandler(fn func(), onChangeOnly bool) Subscription
}

// Cloner is implemented by values that hold pointers or slices. Simple
// stores and hands out clones of such values so callers never share the
// stored state.
type Cloner[V any] interface {
	Clone() V
}

// Simple holds one optional value of type V and reports every update to a
// shared Revision, flagging whether the value changed under equal.
type Simple[V any] struct {
	id    ident.TmExtension
	info  string
	rev   *Revision
	equal func(a, b V) bool

	mu       sync.Mutex
	value    V
	set      bool
	updated  time.Time
	changed  time.Time
	handlers []handlerEntry
}

type handlerEntry struct {
	id           HandlerID
	fn           func()
	onChangeOnly bool
}

// NewSimple creates an unset extension. A nil rev gets a private Revision.
func NewSimple[V any](id ident.TmExtension, info string, rev *Revision, equal func(a, b V) bool) *Simple[V] {
	if rev == nil {
		rev = NewRevision()
	}
	return &Simple[V]{id: id, info: info, rev: rev, equal: equal}
}

// ID implements Extension.
func (s *Simple[V]) ID() ident.TmExtension { return s.id }

// Info implements Extension.
func (s *Simple[V]) Info() string { return s.info }

// Revision returns the shared counter.
func (s *Simple[V]) Revision() *Revision { return s.rev }

// Value returns a copy of the current value, or false when unset.
func (s *Simple[V]) Value() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copy(s.value), s.set
}

func (s *Simple[V]) copy(v V) V {
	if c, ok := any(v).(Cloner[V]); ok {
		return c.Clone()
	}
	return v
}

// Updated implements Extension.
func (s *Simple[V]) Updated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Changed implements Extension.
func (s *Simple[V]) Changed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Update stores v (nil unsets the value) and reports whether it changed.
// Unset and set are always different; two set values compare with equal.
func (s *Simple[V]) Update(t time.Time, v *V) bool {
	return s.UpdateFunc(t, func(V, bool) (V, bool) {
		if v == nil {
			var zero V
			return zero, false
		}
		return *v, true
	})
}

// UpdateFunc derives the next value from the current one under the
// extension lock, for extensions whose setters touch part of the value.
// fn receives a copy of the current value and the result is copied again
// before it is stored.
func (s *Simple[V]) UpdateFunc(t time.Time, fn func(prev V, ok bool) (V, bool)) bool {
	s.mu.Lock()
	next, nextSet := fn(s.copy(s.value), s.set)
	if !nextSet {
		var zero V
		next = zero
	}
	changed := nextSet != s.set || (nextSet && !s.equal(s.value, next))
	s.value = s.copy(next)
	s.set = nextSet
	handlers := s.commitLocked(t, changed)
	var value any
	if nextSet {
		value = s.copy(next)
	}
	s.mu.Unlock()

	s.dispatch(t, changed, value, handlers)
	return changed
}

// Touch implements Extension.
func (s *Simple[V]) Touch(t time.Time) {
	s.mu.Lock()
	handlers := s.commitLocked(t, false)
	var value any
	if s.set {
		value = s.copy(s.value)
	}
	s.mu.Unlock()

	s.dispatch(t, false, value, handlers)
}

func (s *Simple[V]) commitLocked(t time.Time, changed bool) []handlerEntry {
	s.updated = t
	if changed {
		s.changed = t
	}
	out := make([]handlerEntry, 0, len(s.handlers))
	for _, h := range s.handlers {
		if h.onChangeOnly && !changed {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (s *Simple[V]) dispatch(t time.Time, changed bool, value any, handlers []handlerEntry) {
	for _, h := range handlers {
		h.fn()
	}
	s.rev.ObserveUpdate(Update{
		Extension: s.id,
		Info:      s.info,
		Time:      t,
		Changed:   changed,
		Value:     value,
	})
}

// AddHandler implements Extension. Handler ids come from the shared Revision.
func (s *Simple[V]) AddHandler(fn func(), onChangeOnly bool) Subscription {
	id := s.rev.Next()
	s.mu.Lock()
	s.handlers = append(s.handlers, handlerEntry{id: id, fn: fn, onChangeOnly: onChangeOnly})
	s.mu.Unlock()
	return Subscription{id: id, remove: s.RemoveHandler}
}

// RemoveHandler removes a handler. Unknown ids are ignored.
func (s *Simple[V]) RemoveHandler(id HandlerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.handlers {
		if h.id == id {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return
		}
	}
}

// RemoveAllHandlers removes every handler.
func (s *Simple[V]) RemoveAllHandlers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = nil
}

var _ Extension = (*Simple[int])(nil)
