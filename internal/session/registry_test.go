package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterUnregister(t *testing.T) {
	r := NewRegistry()

	a := r.Register("alice")
	b := r.Register("bob")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "alice", a.User)
	assert.Equal(t, 2, r.Count())
	assert.Len(t, r.Sessions(), 2)

	r.Unregister(a.ID)
	assert.Equal(t, 1, r.Count())

	r.Unregister(a.ID)
	assert.Equal(t, 1, r.Count(), "unregistering twice is harmless")
}

func TestRegistry_ShutdownNotifiesSessions(t *testing.T) {
	r := NewRegistry()
	h := r.Register("alice")

	select {
	case <-h.Shutdown():
		t.Fatal("shutdown signalled early")
	default:
	}

	go func() {
		<-h.Shutdown()
		r.Unregister(h.ID)
	}()

	assert.True(t, r.Shutdown(5*time.Second))
	assert.Zero(t, r.Count())
}

func TestRegistry_ShutdownTimesOut(t *testing.T) {
	r := NewRegistry()
	r.Register("stuck")

	start := time.Now()
	assert.False(t, r.Shutdown(50*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRegistry_ShutdownEmptyReturnsImmediately(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Shutdown(time.Hour))
}

func TestRegistry_RegisterAfterShutdown(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Shutdown(time.Second))
	assert.NotPanics(t, func() { r.Shutdown(time.Second) })

	h := r.Register("late")
	select {
	case <-h.Shutdown():
	default:
		t.Fatal("late session not told about shutdown")
	}
}
