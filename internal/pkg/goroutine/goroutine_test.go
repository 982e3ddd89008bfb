package goroutine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrors(t *testing.T) {
	m := NewManager(0)
	boom := errors.New("boom")

	assert.True(t, m.Go(context.Background(), "ok", func(context.Context) error { return nil }))
	assert.True(t, m.Go(context.Background(), "fails", func(context.Context) error { return boom }))
	assert.True(t, m.Go(context.Background(), "panics", func(context.Context) error { panic("kaboom") }))

	err := m.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrPanicked)
	assert.Contains(t, err.Error(), "fails: boom")
}

func TestManager_ClosedAfterWait(t *testing.T) {
	m := NewManager(1)
	require.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))
}

func TestManager_Limit(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	assert.True(t, m.Go(context.Background(), "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.False(t, m.Go(context.Background(), "rejected", func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_StopsWithContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())

	assert.True(t, m.Go(ctx, "loop", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))

	cancel()
	assert.NoError(t, m.Wait())
}
