package recur

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_WorkersBelowOneClampsToOne(t *testing.T) {
	ctx := NewContext(0)
	assert.Equal(t, 0, ctx.Depth())
	h := Spawn(ctx, func(c *Context) (int, error) { return c.Depth(), nil })
	d, err := h.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestChild_IncrementsDepthSharesSemaphore(t *testing.T) {
	ctx := NewContext(4)
	child := ctx.Child()
	assert.Equal(t, ctx.Depth()+1, child.Depth())
	grandchild := child.Child()
	assert.Equal(t, ctx.Depth()+2, grandchild.Depth())
}

func TestSpawn_ParallelHandleRunsAndFetches(t *testing.T) {
	ctx := NewContext(8)
	var ran atomic.Bool
	h := Spawn(ctx, func(c *Context) (int, error) {
		ran.Store(true)
		return 42, nil
	})
	v, err := h.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, ran.Load())
}

func TestSpawn_PropagatesError(t *testing.T) {
	ctx := NewContext(8)
	wantErr := errors.New("boom")
	h := Spawn(ctx, func(c *Context) (int, error) { return 0, wantErr })
	_, err := h.Fetch()
	assert.ErrorIs(t, err, wantErr)
}

func TestSpawn_DeferredPastMaxSplitDepthRunsOnFetchingGoroutine(t *testing.T) {
	ctx := NewContext(1) // maxSplitDepth collapses to 1; depth starts at 0
	// Walk deep enough that every subsequent Spawn is past the budget.
	for i := 0; i < 5; i++ {
		ctx = ctx.Child()
	}
	ran := false
	h := Spawn(ctx, func(c *Context) (int, error) {
		ran = true
		return c.Depth(), nil
	})
	assert.False(t, ran, "deferred work must not run before Fetch/Wait is called")
	_, err := h.Fetch()
	require.NoError(t, err)
	assert.True(t, ran)
}

// TestSpawn_FallsBackToDeferredWhenSemaphoreIsFull checks that an
// unavailable worker slot never blocks the caller, even though depth is
// still under maxSplitDepth: with every slot held by goroutines parked
// waiting on the release channel, a blocking acquire here would deadlock,
// since no deeper, depth-limited spawn would ever be reached to unblock
// them.
func TestSpawn_FallsBackToDeferredWhenSemaphoreIsFull(t *testing.T) {
	ctx := NewContext(1) // one worker slot, maxSplitDepth = 1
	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the only slot with a parallel spawn that blocks until told to
	// finish, so the slot stays held while the next Spawn call runs.
	holder := Spawn(ctx, func(c *Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	})
	<-started

	ran := false
	h := Spawn(ctx, func(c *Context) (int, error) {
		ran = true
		return 1, nil
	})
	assert.False(t, ran, "fallback spawn must be deferred, not run eagerly")

	v, err := h.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, ran)

	close(release)
	_, err = holder.Fetch()
	require.NoError(t, err)
}

func TestWait_DiscardsValuePropagatesError(t *testing.T) {
	ctx := NewContext(4)
	wantErr := errors.New("wait boom")
	h := Spawn(ctx, func(c *Context) (string, error) { return "ignored", wantErr })
	assert.ErrorIs(t, h.Wait(), wantErr)
}

func TestDefaultWorkers_AtLeastOne(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}
