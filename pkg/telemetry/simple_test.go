package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

var testExt = ident.MustTmExtension("11111111-2222-3333-4444-555555555555")

func intEqual(a, b int) bool { return a == b }

func ptr[V any](v V) *V { return &v }

func TestSimpleChangedFlag(t *testing.T) {
	t0 := time.Unix(100, 0)
	t1 := t0.Add(time.Second)
	t2 := t1.Add(time.Second)

	tests := []struct {
		name        string
		first, next *int
		wantChanged bool
	}{
		{"different values", ptr(1), ptr(2), true},
		{"same value", ptr(1), ptr(1), false},
		{"unset to set", nil, ptr(0), true},
		{"set to unset", ptr(0), nil, true},
		{"unset to unset", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimple(testExt, "test", nil, intEqual)
			s.Update(t1, tt.first)
			got := s.Update(t2, tt.next)
			assert.Equal(t, tt.wantChanged, got)
			assert.Equal(t, t2, s.Updated())
		})
	}
}

func TestSimpleInitiallyUnset(t *testing.T) {
	s := NewSimple(testExt, "test", nil, intEqual)
	_, ok := s.Value()
	assert.False(t, ok)
	assert.True(t, s.Updated().IsZero())
	assert.Equal(t, testExt, s.ID())
	assert.Equal(t, "test", s.Info())

	assert.True(t, s.Update(time.Unix(1, 0), ptr(0)), "first value differs from unset")
	v, ok := s.Value()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestSimpleChangedTimestamp(t *testing.T) {
	s := NewSimple(testExt, "test", nil, intEqual)
	t1 := time.Unix(10, 0)
	t2 := time.Unix(20, 0)
	s.Update(t1, ptr(5))
	s.Update(t2, ptr(5))

	assert.Equal(t, t2, s.Updated())
	assert.Equal(t, t1, s.Changed())
}

func TestSimpleHandlers(t *testing.T) {
	s := NewSimple(testExt, "test", nil, intEqual)
	var updates, changes int
	us := s.AddHandler(func() { updates++ }, false)
	cs := s.AddHandler(func() { changes++ }, true)
	assert.NotEqual(t, us.ID(), cs.ID())

	now := time.Unix(1, 0)
	s.Update(now, ptr(1))
	s.Update(now, ptr(1))
	s.Touch(now)
	s.Update(now, ptr(2))

	assert.Equal(t, 4, updates)
	assert.Equal(t, 2, changes)

	cs.Close()
	s.Update(now, ptr(3))
	assert.Equal(t, 2, changes)
	assert.Equal(t, 5, updates)

	s.RemoveAllHandlers()
	s.Update(now, ptr(4))
	assert.Equal(t, 5, updates)

	// Removing twice is harmless.
	us.Close()
	Subscription{}.Close()
}

func TestSimpleReportsToRevision(t *testing.T) {
	rev := NewRevision()
	s := NewSimple(testExt, "test", rev, intEqual)

	var seen []Update
	rev.Subscribe(func(u Update) { seen = append(seen, u) }, false)

	t1 := time.Unix(1, 0)
	s.Update(t1, ptr(7))
	s.Update(t1.Add(time.Second), ptr(7))
	s.Update(t1.Add(2*time.Second), nil)

	require.Len(t, seen, 3)
	assert.True(t, seen[0].Changed)
	assert.Equal(t, 7, seen[0].Value)
	assert.Equal(t, testExt, seen[0].Extension)
	assert.Equal(t, uint64(1), seen[0].Revision)
	assert.False(t, seen[1].Changed)
	assert.True(t, seen[2].Changed)
	assert.Nil(t, seen[2].Value)

	assert.Equal(t, uint64(3), rev.Updates())
	assert.Equal(t, uint64(2), rev.Changes())
}

func TestSimpleUpdateFunc(t *testing.T) {
	s := NewSimple(testExt, "test", nil, intEqual)
	inc := func(prev int, ok bool) (int, bool) { return prev + 1, true }

	assert.True(t, s.UpdateFunc(time.Unix(1, 0), inc))
	assert.True(t, s.UpdateFunc(time.Unix(2, 0), inc))
	v, _ := s.Value()
	assert.Equal(t, 2, v)

	same := func(prev int, ok bool) (int, bool) { return prev, ok }
	assert.False(t, s.UpdateFunc(time.Unix(3, 0), same))
}
