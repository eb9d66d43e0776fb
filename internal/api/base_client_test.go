package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewBaseClient_DefaultLimit tests that a non-positive limit falls back to the default.
func TestNewBaseClient_DefaultLimit(t *testing.T) {
	client := NewBaseClient("https://api.github.com", nil, 0)

	assert.Equal(t, MaxConcurrentRequests, cap(client.Semaphore))
}

// TestDoLimited_BoundsConcurrency tests that no more than the configured number of operations run at once.
func TestDoLimited_BoundsConcurrency(t *testing.T) {
	// Arrange
	client := NewBaseClient("", nil, 2)
	var inFlight, peak int32
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = client.DoLimited(context.Background(), func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	// Assert
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

// TestDoLimited_ContextCancelled tests that waiting for a slot honours cancellation.
func TestDoLimited_ContextCancelled(t *testing.T) {
	// Arrange
	client := NewBaseClient("", nil, 1)
	client.Semaphore <- struct{}{} // occupy the only slot
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	// Act
	err := client.DoLimited(ctx, func() error {
		called = true
		return nil
	})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}

// TestDoLimited_ReturnsOperationError tests that the operation's error is passed through.
func TestDoLimited_ReturnsOperationError(t *testing.T) {
	client := NewBaseClient("", nil, 1)
	want := errors.New("boom")

	err := client.DoLimited(context.Background(), func() error { return want })

	assert.Same(t, want, err)
	assert.Len(t, client.Semaphore, 0)
}
