package telemetry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

// HandlerID identifies a registered handler. IDs are unique per Revision.
type HandlerID uint64

// Update describes one extension update as seen by a Revision.
type Update struct {
	Extension ident.TmExtension
	Info      string
	Time      time.Time
	Changed   bool

	// Revision is the counter value after this update.
	Revision uint64

	// Value is the extension's value after the update, nil when unset.
	Value any
}

// Revision is the per-device counter every extension of one telemetry view
// reports to. It separates "a value was refreshed" (every update) from "a
// value changed" so observers can subscribe to either.
//
// Only the owning device's update path calls ObserveUpdate.
type Revision struct {
	ids     atomic.Uint64
	updates atomic.Uint64
	changes atomic.Uint64

	mu         sync.Mutex
	lastUpdate time.Time
	lastChange time.Time
	observers  []observer
}

type observer struct {
	id           HandlerID
	fn           func(Update)
	onChangeOnly bool
}

// NewRevision creates a revision counter.
func NewRevision() *Revision {
	return &Revision{}
}

// Next returns a fresh handler id.
func (r *Revision) Next() HandlerID {
	return HandlerID(r.ids.Add(1))
}

// ObserveUpdate records an update and notifies observers. Observers
// registered with onChangeOnly only see updates with Changed set.
//
// Revision numbers are assigned under the lock, so they follow the order in
// which updates are recorded. Observers are called outside the lock; a
// device's extensions are updated by its owning handler, so observers see
// revisions in increasing order.
func (r *Revision) ObserveUpdate(u Update) uint64 {
	r.mu.Lock()
	rev := r.updates.Add(1)
	if u.Changed {
		r.changes.Add(1)
	}
	u.Revision = rev
	if u.Time.After(r.lastUpdate) {
		r.lastUpdate = u.Time
	}
	if u.Changed && u.Time.After(r.lastChange) {
		r.lastChange = u.Time
	}
	obs := make([]observer, len(r.observers))
	copy(obs, r.observers)
	r.mu.Unlock()

	for _, o := range obs {
		if o.onChangeOnly && !u.Changed {
			continue
		}
		o.fn(u)
	}
	return rev
}

// Updates returns the number of updates observed.
func (r *Revision) Updates() uint64 { return r.updates.Load() }

// Changes returns the number of updates that changed a value.
func (r *Revision) Changes() uint64 { return r.changes.Load() }

// LastUpdate returns the latest update time.
func (r *Revision) LastUpdate() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUpdate
}

// LastChange returns the latest time a value changed.
func (r *Revision) LastChange() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastChange
}

// Subscribe registers fn for every update, or for changes only.
func (r *Revision) Subscribe(fn func(Update), onChangeOnly bool) Subscription {
	id := r.Next()
	r.mu.Lock()
	r.observers = append(r.observers, observer{id: id, fn: fn, onChangeOnly: onChangeOnly})
	r.mu.Unlock()
	return Subscription{id: id, remove: r.Unsubscribe}
}

// Unsubscribe removes an observer. Unknown ids are ignored.
func (r *Revision) Unsubscribe(id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.observers {
		if o.id == id {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Subscription is a handle to a registered handler.
type Subscription struct {
	id     HandlerID
	remove func(HandlerID)
}

// ID returns the handler id.
func (s Subscription) ID() HandlerID { return s.id }

// Close removes the handler. The zero Subscription is a no-op.
func (s Subscription) Close() {
	if s.remove != nil {
		s.remove(s.id)
	}
}
