package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsJobsAndDrainsOnShutdown(t *testing.T) {
	d := New(2, 16)
	d.Start()

	var ran int32
	for i := 0; i < 10; i++ {
		require.True(t, d.Submit(Job{Name: "count", Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestDispatcherSurvivesFailingAndPanickingJobs(t *testing.T) {
	d := New(1, 4)
	d.Start()

	var ran int32
	d.Submit(Job{Name: "fails", Run: func(ctx context.Context) error { return errors.New("smtp down") }})
	d.Submit(Job{Name: "panics", Run: func(ctx context.Context) error { panic("boom") }})
	d.Submit(Job{Name: "ok", Run: func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}})

	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	d := New(1, 1)
	noop := Job{Name: "noop", Run: func(ctx context.Context) error { return nil }}

	assert.True(t, d.Submit(noop))
	assert.False(t, d.Submit(noop))
}

func TestDispatcherRejectsAfterShutdown(t *testing.T) {
	d := New(1, 1)
	d.Start()
	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.False(t, d.Submit(Job{Name: "late", Run: func(ctx context.Context) error { return nil }}))
}
