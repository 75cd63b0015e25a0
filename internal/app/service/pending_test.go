package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingAddIsCheckAndSet(t *testing.T) {
	p := NewPendingRequests()
	assert.True(t, p.Add("m1", time.Hour, func() {}))
	assert.False(t, p.Add("m1", time.Hour, func() {}))
	assert.True(t, p.Contains("m1"))
	assert.Equal(t, 1, p.Len())
}

func TestPendingRemoveTolerant(t *testing.T) {
	p := NewPendingRequests()
	require.True(t, p.Add("m1", time.Hour, func() {}))
	assert.True(t, p.Remove("m1"))
	// segunda vez es no-op
	assert.False(t, p.Remove("m1"))
	assert.False(t, p.Remove("nunca-existió"))
}

func TestPendingExpiryFires(t *testing.T) {
	p := NewPendingRequests()
	fired := make(chan struct{})
	require.True(t, p.Add("m1", 10*time.Millisecond, func() { close(fired) }))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry nunca corrió")
	}
	assert.False(t, p.Contains("m1"))
}

func TestPendingResolutionBeatsExpiry(t *testing.T) {
	p := NewPendingRequests()
	var mu sync.Mutex
	expired := false
	require.True(t, p.Add("m1", 50*time.Millisecond, func() {
		mu.Lock()
		expired = true
		mu.Unlock()
	}))
	require.True(t, p.Remove("m1"))

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, expired, "la expiry no debe correr si la resolución ganó")
}

func TestPendingClear(t *testing.T) {
	p := NewPendingRequests()
	p.Add("m1", time.Hour, func() {})
	p.Add("m2", time.Hour, func() {})
	p.Clear()
	assert.Zero(t, p.Len())
}
