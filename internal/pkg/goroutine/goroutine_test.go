package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrors(t *testing.T) {
	m := NewManager(4)
	want := errors.New("consumer stopped")

	var ran atomic.Int32
	require.True(t, m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return nil
	}))
	require.True(t, m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return want
	}))

	err := m.Wait()
	assert.ErrorIs(t, err, want)
	assert.Equal(t, int32(2), ran.Load())
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	m.Go(context.Background(), func(context.Context) error {
		panic("boom")
	})

	err := m.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestManager_LimitAndClosed(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	require.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_StopsOnContextCancel(t *testing.T) {
	m := NewManager(0)
	ctx, cancel := context.WithCancel(context.Background())

	m.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	cancel()

	done := make(chan error, 1)
	go func() { done <- m.Wait() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("manager did not stop after cancel")
	}
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
